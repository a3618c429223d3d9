// internal/catalog/domain.go
package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// Book represents a single lendable copy in the catalog.
type Book struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Available bool      `json:"available"`
}

// NewBook creates a book that is available for lending.
func NewBook(title, author, isbn string) *Book {
	return &Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Available: true,
	}
}

func (b *Book) String() string {
	status := "available"
	if !b.Available {
		status = "on loan"
	}
	return fmt.Sprintf("'%s' by %s (ISBN %s) [%s]", b.Title, b.Author, b.ISBN, status)
}
