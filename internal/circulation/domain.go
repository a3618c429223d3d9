// internal/circulation/domain.go
package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"libralend/internal/catalog"
	"libralend/internal/membership"
	"libralend/pkg/eventstore"
)

// LoanPeriodDays is how long a book may be kept before it is overdue.
const LoanPeriodDays = 14

const aggregateType = "loan"

// Journal event types.
const (
	EventLoanOpened = "LoanOpened"
	EventLoanClosed = "LoanClosed"
)

// Metadata keys stamped on every journaled event.
const (
	MetadataManagerID = "manager_id"
	MetadataTariff    = "tariff"
)

// Loan associates one book with one user from BorrowedAt until it is returned.
// DueDate may be overridden by callers that need to simulate lateness.
type Loan struct {
	ID         uuid.UUID        `json:"id"`
	Book       *catalog.Book    `json:"book"`
	User       *membership.User `json:"user"`
	BorrowedAt time.Time        `json:"borrowed_at"`
	DueDate    time.Time        `json:"due_date"`
	Returned   bool             `json:"returned"`
	ReturnedAt time.Time        `json:"returned_at,omitempty"`
	IssuedBy   uuid.UUID        `json:"issued_by"`

	// journal of the issuing manager; the close event lands next to the open event.
	journal *eventstore.EventStore
}

// ReturnStatus is the outcome of a return.
type ReturnStatus string

const (
	StatusOnTime          ReturnStatus = "on_time"
	StatusLate            ReturnStatus = "late"
	StatusAlreadyReturned ReturnStatus = "already_returned"
)

// Receipt summarizes a return. Fine is zero unless Status is StatusLate.
type Receipt struct {
	LoanID   uuid.UUID       `json:"loan_id"`
	Status   ReturnStatus    `json:"status"`
	DaysLate int             `json:"days_late"`
	Fine     decimal.Decimal `json:"fine"`
}

// DaysLate counts whole days elapsed past due at the given instant, never negative.
func DaysLate(due, at time.Time) int {
	overdue := at.Sub(due)
	if overdue <= 0 {
		return 0
	}
	return int(overdue / (24 * time.Hour))
}

// LoanOpenedEvent is journaled when a book is lent.
type LoanOpenedEvent struct {
	LoanID     uuid.UUID `json:"loan_id"`
	ISBN       string    `json:"isbn"`
	UserID     string    `json:"user_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
	DueDate    time.Time `json:"due_date"`
}

// LoanClosedEvent is journaled when a loan is returned.
type LoanClosedEvent struct {
	LoanID     uuid.UUID       `json:"loan_id"`
	ISBN       string          `json:"isbn"`
	UserID     string          `json:"user_id"`
	ReturnedAt time.Time       `json:"returned_at"`
	DaysLate   int             `json:"days_late"`
	Fine       decimal.Decimal `json:"fine"`
}
