// internal/catalog/service.go
package catalog

import (
	"context"
	"errors"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateISBN = errors.New("isbn already in catalog")
)

// Service defines the interface for the catalog.
type Service interface {
	AddBook(ctx context.Context, title, author, isbn string) (*Book, error)
	GetBook(ctx context.Context, isbn string) (*Book, error)
	Search(ctx context.Context, query string) ([]*Book, error)
	ListAvailable(ctx context.Context) ([]*Book, error)
}
