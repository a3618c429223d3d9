// internal/circulation/implementation.go
package circulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"libralend/internal/catalog"
	"libralend/internal/fines"
	"libralend/internal/membership"
	"libralend/internal/notify"
	"libralend/pkg/eventstore"
)

// Manager lends and takes back books using one fine calculator and one notifier.
// It owns the loans it created; books and users are shared references.
type Manager struct {
	id         uuid.UUID
	notifier   notify.Notifier
	calculator fines.Calculator
	loans      []*Loan

	journal *eventstore.EventStore
	now     func() time.Time
	logger  *slog.Logger
	tracer  trace.Tracer
	meter   metric.Meter

	loansOpened  metric.Int64Counter
	loansClosed  metric.Int64Counter
	finesCharged metric.Float64Counter
}

var _ Service = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, e.g. to simulate elapsed days.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithJournal shares a journal between managers. Each manager gets its own otherwise;
// a loan's events always go to the journal of the manager that issued it.
func WithJournal(journal *eventstore.EventStore) Option {
	return func(m *Manager) {
		m.journal = journal
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		m.tracer = tracer
	}
}

func WithMeter(meter metric.Meter) Option {
	return func(m *Manager) {
		m.meter = meter
	}
}

// NewManager creates a loan manager bound to a notification channel and a fine tariff.
func NewManager(notifier notify.Notifier, calculator fines.Calculator, opts ...Option) *Manager {
	m := &Manager{
		id:         uuid.New(),
		notifier:   notifier,
		calculator: calculator,
		now:        time.Now,
		logger:     slog.Default(),
		tracer:     otel.Tracer("libralend/circulation"),
		meter:      otel.Meter("libralend/circulation"),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.journal == nil {
		m.journal = eventstore.NewEventStore()
	}
	m.initMetrics()

	m.logger.Debug("loan manager created",
		"manager_id", m.id,
		"channel", notifier.Channel(),
		"tariff", calculator.Tariff(),
	)

	return m
}

func (m *Manager) initMetrics() {
	var err error

	m.loansOpened, err = m.meter.Int64Counter("circulation.loans.opened",
		metric.WithDescription("Loans created by successful borrows"))
	if err != nil {
		m.logger.Warn("failed to create counter", "name", "circulation.loans.opened", "error", err)
		m.loansOpened = noop.Int64Counter{}
	}

	m.loansClosed, err = m.meter.Int64Counter("circulation.loans.closed",
		metric.WithDescription("Loans returned, by outcome"))
	if err != nil {
		m.logger.Warn("failed to create counter", "name", "circulation.loans.closed", "error", err)
		m.loansClosed = noop.Int64Counter{}
	}

	m.finesCharged, err = m.meter.Float64Counter("circulation.fines.charged",
		metric.WithDescription("Sum of overdue fines charged"))
	if err != nil {
		m.logger.Warn("failed to create counter", "name", "circulation.fines.charged", "error", err)
		m.finesCharged = noop.Float64Counter{}
	}
}

// ID identifies the manager as the issuer of its loans.
func (m *Manager) ID() uuid.UUID {
	return m.id
}

// Borrow lends an available book to a user. When the book is on loan the user is told so
// and ErrBookUnavailable is returned in place of a loan.
func (m *Manager) Borrow(ctx context.Context, book *catalog.Book, user *membership.User) (*Loan, error) {
	if book == nil {
		return nil, ErrNilBook
	}
	if user == nil {
		return nil, ErrNilUser
	}

	ctx, span := m.tracer.Start(ctx, "circulation.borrow",
		trace.WithAttributes(
			attribute.String("manager.id", m.id.String()),
			attribute.String("book.isbn", book.ISBN),
			attribute.String("user.id", user.ID),
		),
	)
	defer span.End()

	if !book.Available {
		span.SetAttributes(attribute.Bool("book.available", false))
		m.logger.DebugContext(ctx, "borrow refused, book on loan", "isbn", book.ISBN, "user_id", user.ID)
		m.send(ctx, span, fmt.Sprintf("The book '%s' is not available for loan.", book.Title), user.ID)
		return nil, fmt.Errorf("book %q: %w", book.Title, ErrBookUnavailable)
	}

	borrowedAt := m.now()
	loan := &Loan{
		ID:         uuid.New(),
		Book:       book,
		User:       user,
		BorrowedAt: borrowedAt,
		DueDate:    borrowedAt.AddDate(0, 0, LoanPeriodDays),
		IssuedBy:   m.id,
		journal:    m.journal,
	}
	book.Available = false
	m.loans = append(m.loans, loan)

	m.record(ctx, m.journal, loan.ID, EventLoanOpened, LoanOpenedEvent{
		LoanID:     loan.ID,
		ISBN:       book.ISBN,
		UserID:     user.ID,
		BorrowedAt: loan.BorrowedAt,
		DueDate:    loan.DueDate,
	})
	m.loansOpened.Add(ctx, 1, metric.WithAttributes(attribute.String("tariff", string(m.calculator.Tariff()))))

	span.SetAttributes(attribute.String("loan.id", loan.ID.String()))
	m.logger.DebugContext(ctx, "loan opened",
		"loan_id", loan.ID,
		"isbn", book.ISBN,
		"user_id", user.ID,
		"due_date", loan.DueDate,
	)

	m.send(ctx, span, fmt.Sprintf("The book '%s' has been lent to %s.", book.Title, user.Name), user.ID)
	return loan, nil
}

// Return closes a loan, frees its book and charges a fine for every whole day past due.
// Returning a loan twice changes nothing and reports StatusAlreadyReturned.
func (m *Manager) Return(ctx context.Context, loan *Loan) (Receipt, error) {
	if loan == nil {
		return Receipt{}, ErrNilLoan
	}

	ctx, span := m.tracer.Start(ctx, "circulation.return",
		trace.WithAttributes(
			attribute.String("manager.id", m.id.String()),
			attribute.String("loan.id", loan.ID.String()),
			attribute.String("book.isbn", loan.Book.ISBN),
			attribute.String("user.id", loan.User.ID),
		),
	)
	defer span.End()

	receipt := Receipt{LoanID: loan.ID}

	if loan.Returned {
		receipt.Status = StatusAlreadyReturned
		span.SetAttributes(attribute.String("return.status", string(receipt.Status)))
		m.send(ctx, span, fmt.Sprintf("The book '%s' has already been returned.", loan.Book.Title), loan.User.ID)
		return receipt, nil
	}

	if loan.IssuedBy != m.id {
		m.logger.WarnContext(ctx, "returning a loan issued by another manager",
			"loan_id", loan.ID,
			"issued_by", loan.IssuedBy,
			"manager_id", m.id,
		)
	}

	returnedAt := m.now()
	loan.Returned = true
	loan.ReturnedAt = returnedAt
	loan.Book.Available = true

	var message string
	receipt.DaysLate = DaysLate(loan.DueDate, returnedAt)
	if receipt.DaysLate > 0 {
		receipt.Status = StatusLate
		receipt.Fine = m.calculator.Calculate(receipt.DaysLate)
		m.finesCharged.Add(ctx, receipt.Fine.InexactFloat64(),
			metric.WithAttributes(attribute.String("tariff", string(m.calculator.Tariff()))))
		message = fmt.Sprintf("The book '%s' was returned %d days late. Fine: $%s.",
			loan.Book.Title, receipt.DaysLate, receipt.Fine.StringFixed(2))
	} else {
		receipt.Status = StatusOnTime
		message = fmt.Sprintf("The book '%s' was returned on time. Thank you, %s!", loan.Book.Title, loan.User.Name)
	}

	journal := loan.journal
	if journal == nil {
		journal = m.journal
	}
	m.record(ctx, journal, loan.ID, EventLoanClosed, LoanClosedEvent{
		LoanID:     loan.ID,
		ISBN:       loan.Book.ISBN,
		UserID:     loan.User.ID,
		ReturnedAt: returnedAt,
		DaysLate:   receipt.DaysLate,
		Fine:       receipt.Fine,
	})
	m.loansClosed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(receipt.Status))))

	span.SetAttributes(
		attribute.String("return.status", string(receipt.Status)),
		attribute.Int("return.days_late", receipt.DaysLate),
	)
	m.logger.DebugContext(ctx, "loan closed",
		"loan_id", loan.ID,
		"status", receipt.Status,
		"days_late", receipt.DaysLate,
		"fine", receipt.Fine.StringFixed(2),
	)

	m.send(ctx, span, message, loan.User.ID)
	return receipt, nil
}

// Loans returns the loans this manager created, oldest first.
func (m *Manager) Loans() []*Loan {
	loans := make([]*Loan, len(m.loans))
	copy(loans, m.loans)
	return loans
}

// Outstanding returns the loans this manager created that are not yet returned.
func (m *Manager) Outstanding() []*Loan {
	var open []*Loan
	for _, loan := range m.loans {
		if !loan.Returned {
			open = append(open, loan)
		}
	}
	return open
}

// History loads the journaled lifecycle events of a loan.
func (m *Manager) History(ctx context.Context, loanID uuid.UUID) ([]eventstore.Event, error) {
	events, err := m.journal.LoadEvents(ctx, loanID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history of loan %s: %w", loanID, err)
	}
	return events, nil
}

// send delivers exactly one notification. Delivery failures are logged, the
// state transition that triggered them stands.
func (m *Manager) send(ctx context.Context, span trace.Span, message, recipient string) {
	span.SetAttributes(attribute.String("notify.channel", string(m.notifier.Channel())))

	if err := m.notifier.Notify(ctx, message, recipient); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "notification failed")
		m.logger.ErrorContext(ctx, "failed to deliver notification",
			"channel", m.notifier.Channel(),
			"recipient", recipient,
			"error", err,
		)
	}
}

// record journals a lifecycle event, stamped with the recording manager and its tariff.
// The journal is an audit trail, so a failed append is logged rather than returned.
func (m *Manager) record(ctx context.Context, journal *eventstore.EventStore, loanID uuid.UUID, eventType string, data any) {
	event, err := eventstore.NewEvent(eventType, data)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to marshal event data", "event_type", eventType, "error", err)
		return
	}
	event.Metadata = map[string]string{
		MetadataManagerID: m.id.String(),
		MetadataTariff:    string(m.calculator.Tariff()),
	}

	version, err := journal.GetCurrentVersion(ctx, loanID)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to read journal version", "loan_id", loanID, "error", err)
		return
	}

	if err := journal.AppendEvents(ctx, loanID, aggregateType, version, []eventstore.Event{event}); err != nil {
		m.logger.ErrorContext(ctx, "failed to append event", "loan_id", loanID, "event_type", eventType, "error", err)
	}
}
