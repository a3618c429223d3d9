// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"strings"
)

// service implements the Service interface over an in-memory shelf.
type service struct {
	books  []*Book
	byISBN map[string]*Book
}

// NewService creates a new, empty catalog.
func NewService() Service {
	return &service{
		byISBN: make(map[string]*Book),
	}
}

// AddBook places a new available book on the shelf.
func (s *service) AddBook(_ context.Context, title, author, isbn string) (*Book, error) {
	if _, exists := s.byISBN[isbn]; exists {
		return nil, fmt.Errorf("failed to add %q: %w", isbn, ErrDuplicateISBN)
	}

	book := NewBook(title, author, isbn)
	s.books = append(s.books, book)
	s.byISBN[isbn] = book

	return book, nil
}

// GetBook returns the shared book record for an ISBN.
func (s *service) GetBook(_ context.Context, isbn string) (*Book, error) {
	book, ok := s.byISBN[isbn]
	if !ok {
		return nil, fmt.Errorf("book with ISBN %s: %w", isbn, ErrBookNotFound)
	}
	return book, nil
}

// Search finds books whose title or author contains the query, case-insensitively.
func (s *service) Search(_ context.Context, query string) ([]*Book, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, fmt.Errorf("missing search query")
	}

	var books []*Book
	for _, book := range s.books {
		if strings.Contains(strings.ToLower(book.Title), needle) ||
			strings.Contains(strings.ToLower(book.Author), needle) {
			books = append(books, book)
		}
	}
	return books, nil
}

// ListAvailable returns the books not currently on loan, in shelf order.
func (s *service) ListAvailable(_ context.Context) ([]*Book, error) {
	var books []*Book
	for _, book := range s.books {
		if book.Available {
			books = append(books, book)
		}
	}
	return books, nil
}
