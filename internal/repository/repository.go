package repository

import (
	"context"
	"strings"
	"unicode"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
)

// SortField names an item attribute a listing may be ordered by.
type SortField string

const (
	SortCreatedAt    SortField = "createdAt"
	SortUpdatedAt    SortField = "updatedAt"
	SortDateOccurred SortField = "dateOccurred"
	SortTitle        SortField = "title"
	SortLocation     SortField = "location"
	SortCategory     SortField = "category"
)

// ParseSortField returns the sort field named by s if it is sortable.
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(s); f {
	case SortCreatedAt, SortUpdatedAt, SortDateOccurred, SortTitle, SortLocation, SortCategory:
		return f, true
	default:
		return "", false
	}
}

// ItemFilter defines filter criteria for listing items. Zero values do not
// filter.
type ItemFilter struct {
	// PublicOnly restricts to active, approved items.
	PublicOnly bool
	OwnerID    string
	Kind       domain.Kind
	Category   string
	// Location matches as a case-insensitive literal substring.
	Location string
	// Search matches items whose title, description or location contain any
	// of the search terms.
	Search string
}

// Sort is a single-key ordering.
type Sort struct {
	Field     SortField
	Ascending bool
}

// ListOptions is a compiled listing request. A zero Limit returns every
// matching item.
type ListOptions struct {
	Filter ItemFilter
	Sort   Sort
	Skip   int
	Limit  int
}

// ItemRepository defines the interface for item persistence operations.
// Items returned by reads carry the joined owner record.
type ItemRepository interface {
	// Create inserts a new item and records item.Owner for later joins.
	// CreatedAt and UpdatedAt are set by the store.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Item, error)

	// List returns one page of matching items and the total match count.
	List(ctx context.Context, opts ListOptions) ([]domain.Item, int, error)

	// Update persists the owner-editable fields of item and refreshes
	// UpdatedAt.
	Update(ctx context.Context, item *domain.Item) error

	// Delete removes an item by its identifier.
	Delete(ctx context.Context, id string) error
}

// SearchTerms splits a free-text search into lowercase letter/digit words,
// without duplicates.
func SearchTerms(search string) []string {
	words := strings.FieldsFunc(strings.ToLower(search), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(words))
	terms := words[:0]
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			terms = append(terms, w)
		}
	}
	return terms
}
