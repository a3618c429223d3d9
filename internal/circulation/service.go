// internal/circulation/service.go
package circulation

import (
	"context"
	"errors"

	"libralend/internal/catalog"
	"libralend/internal/membership"
)

var (
	// ErrBookUnavailable is the "no loan created" result of a borrow.
	ErrBookUnavailable = errors.New("book is not available")
	ErrNilLoan         = errors.New("loan is nil")
	ErrNilBook         = errors.New("book is nil")
	ErrNilUser         = errors.New("user is nil")
)

// Service defines the interface for lending and returning books.
type Service interface {
	Borrow(ctx context.Context, book *catalog.Book, user *membership.User) (*Loan, error)
	Return(ctx context.Context, loan *Loan) (Receipt, error)
	Loans() []*Loan
}
