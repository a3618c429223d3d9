// cmd/circulation/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"libralend/internal/catalog"
	"libralend/internal/circulation"
	"libralend/internal/config"
	"libralend/internal/fines"
	"libralend/internal/membership"
	"libralend/internal/notify"
	"libralend/internal/telemetry"
	"libralend/pkg/eventstore"
)

func main() {
	cfg, err := config.Load()
	logger := telemetry.NewLogger(cfg, os.Stderr)
	if err != nil {
		logger.Warn("using defaults for invalid settings", "error", err)
	}

	ctx := context.Background()

	shutdown, err := telemetry.InitTracing(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	meters, err := telemetry.InitMetrics(ctx, cfg, nil)
	if err != nil {
		logger.Error("failed to initialise metrics", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := meters.Shutdown(ctx); err != nil {
			logger.Warn("failed to flush metrics", "error", err)
		}
	}()

	if err := run(ctx, os.Stdout, logger); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

// run plays the fixed lending demonstration, writing notifications to out.
func run(ctx context.Context, out io.Writer, logger *slog.Logger) error {
	fmt.Fprintln(out, "LIBRARY SYSTEM - SOLID PRINCIPLES")
	fmt.Fprintln(out, strings.Repeat("=", 50))

	books := catalog.NewService()
	orwell, err := books.AddBook(ctx, "1984", "George Orwell", "1234567890")
	if err != nil {
		return err
	}
	marquez, err := books.AddBook(ctx, "Cien Años de Soledad", "Gabriel García Márquez", "0987654321")
	if err != nil {
		return err
	}

	members := membership.NewService()
	alice, err := members.RegisterUser(ctx, "Alice", "U001", membership.TierBasic)
	if err != nil {
		return err
	}
	bob, err := members.RegisterUser(ctx, "Bob", "U002", membership.TierStudent)
	if err != nil {
		return err
	}

	journal := eventstore.NewEventStore()
	opts := []circulation.Option{circulation.WithLogger(logger), circulation.WithJournal(journal)}

	regularFines, err := fines.ForTier(alice.Tier)
	if err != nil {
		return err
	}
	studentFines, err := fines.ForTier(bob.Tier)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "MANAGER FOR REGULAR USERS:")
	regular := circulation.NewManager(notify.NewEmail(out), regularFines, opts...)
	fmt.Fprintln(out, "MANAGER FOR STUDENTS:")
	student := circulation.NewManager(notify.NewSMS(out), studentFines, opts...)
	fmt.Fprintln(out, "MANAGER FOR PREMIUM MEMBERS:")
	premium := circulation.NewManager(notify.NewEmail(out), fines.Premium(), opts...)

	fmt.Fprintln(out, "LENDING BOOKS:")
	aliceLoan, err := regular.Borrow(ctx, orwell, alice)
	if err != nil {
		return fmt.Errorf("failed to lend %s: %w", orwell.Title, err)
	}
	bobLoan, err := student.Borrow(ctx, marquez, bob)
	if err != nil {
		return fmt.Errorf("failed to lend %s: %w", marquez.Title, err)
	}

	fmt.Fprintln(out, "SIMULATING LATE RETURN:")
	aliceLoan.DueDate = time.Now().AddDate(0, 0, -5)
	if _, err := regular.Return(ctx, aliceLoan); err != nil {
		return err
	}

	fmt.Fprintln(out, "ON-TIME RETURN:")
	if _, err := premium.Return(ctx, bobLoan); err != nil {
		return err
	}

	fmt.Fprintln(out, "CATALOG STATUS:")
	available, err := books.ListAvailable(ctx)
	if err != nil {
		return err
	}
	for _, book := range available {
		fmt.Fprintln(out, book)
	}

	events, err := journal.StreamEvents(ctx, 0, 100)
	if err != nil {
		return err
	}
	logger.Info("demo finished", "journaled_events", len(events))

	if len(available) != 2 {
		return errors.New("books still on loan after demo")
	}
	return nil
}
