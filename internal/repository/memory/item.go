package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository"
	apperrors "github.com/saikat7890/Lost-and-Found-System/pkg/errors"
)

type record struct {
	item domain.Item
	seq  int64
}

// ItemRepository implements repository.ItemRepository with in-process maps.
// It backs local development and tests.
type ItemRepository struct {
	mu     sync.RWMutex
	items  map[string]*record
	owners map[string]domain.Owner
	seq    int64
	now    func() time.Time
}

var _ repository.ItemRepository = (*ItemRepository)(nil)

// New creates an empty in-memory item repository.
func New() *ItemRepository {
	return NewWithClock(func() time.Time { return time.Now().UTC() })
}

// NewWithClock creates a repository that stamps records using now.
func NewWithClock(now func() time.Time) *ItemRepository {
	return &ItemRepository{
		items:  make(map[string]*record),
		owners: make(map[string]domain.Owner),
		now:    now,
	}
}

// Create stores a copy of item.
func (r *ItemRepository) Create(_ context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return apperrors.Persistence(errDuplicate(item.ID))
	}

	ts := r.now()
	item.CreatedAt = ts
	item.UpdatedAt = ts

	if item.Owner != nil {
		owner := *item.Owner
		owner.ID = item.OwnerID
		if prev, ok := r.owners[owner.ID]; ok && owner.CreatedAt == nil {
			owner.CreatedAt = prev.CreatedAt
		}
		r.owners[owner.ID] = owner
	}

	r.seq++
	stored := *item
	stored.Owner = nil
	stored.Images = slices.Clone(item.Images)
	r.items[item.ID] = &record{item: stored, seq: r.seq}
	return nil
}

// GetByID returns a copy of the stored item joined with its owner.
func (r *ItemRepository) GetByID(_ context.Context, id string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	item := r.joined(rec)
	return &item, nil
}

// List filters, sorts and pages the stored items.
func (r *ItemRepository) List(_ context.Context, opts repository.ListOptions) ([]domain.Item, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	terms := repository.SearchTerms(opts.Filter.Search)

	matched := make([]*record, 0, len(r.items))
	for _, rec := range r.items {
		if matches(&rec.item, opts.Filter, terms) {
			matched = append(matched, rec)
		}
	}

	slices.SortFunc(matched, func(a, b *record) int {
		c := compareBy(&a.item, &b.item, opts.Sort.Field)
		if c == 0 {
			c = cmp.Compare(a.seq, b.seq)
		}
		if !opts.Sort.Ascending {
			c = -c
		}
		return c
	})

	total := len(matched)
	start := min(max(opts.Skip, 0), total)
	end := total
	if opts.Limit > 0 {
		end = min(start+opts.Limit, total)
	}

	items := make([]domain.Item, 0, end-start)
	for _, rec := range matched[start:end] {
		items = append(items, r.joined(rec))
	}
	return items, total, nil
}

// Update overwrites the owner-editable fields of the stored item.
func (r *ItemRepository) Update(_ context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[item.ID]
	if !ok {
		return apperrors.ErrNotFound
	}

	rec.item.Title = item.Title
	rec.item.Description = item.Description
	rec.item.Location = item.Location
	rec.item.Status = item.Status
	rec.item.ContactInfo = item.ContactInfo
	rec.item.UpdatedAt = r.now()

	item.UpdatedAt = rec.item.UpdatedAt
	return nil
}

// Delete removes an item.
func (r *ItemRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ItemRepository) joined(rec *record) domain.Item {
	item := rec.item
	item.Images = slices.Clone(rec.item.Images)
	if item.Images == nil {
		item.Images = []domain.Image{}
	}
	owner, ok := r.owners[item.OwnerID]
	if !ok {
		owner = domain.Owner{ID: item.OwnerID}
	}
	item.Owner = &owner
	return item
}

func matches(item *domain.Item, f repository.ItemFilter, terms []string) bool {
	if f.PublicOnly && (item.Status != domain.StatusActive || !item.IsApproved) {
		return false
	}
	if f.OwnerID != "" && item.OwnerID != f.OwnerID {
		return false
	}
	if f.Kind != "" && item.Kind != f.Kind {
		return false
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(item.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.Search != "" && !containsAnyTerm(item, terms) {
		return false
	}
	return true
}

func containsAnyTerm(item *domain.Item, terms []string) bool {
	words := make(map[string]bool)
	for _, field := range []string{item.Title, item.Description, item.Location} {
		for _, w := range repository.SearchTerms(field) {
			words[w] = true
		}
	}
	for _, t := range terms {
		if words[t] {
			return true
		}
	}
	return false
}

func compareBy(a, b *domain.Item, field repository.SortField) int {
	switch field {
	case repository.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case repository.SortDateOccurred:
		return a.DateOccurred.Compare(b.DateOccurred)
	case repository.SortTitle:
		return cmp.Compare(a.Title, b.Title)
	case repository.SortLocation:
		return cmp.Compare(a.Location, b.Location)
	case repository.SortCategory:
		return cmp.Compare(a.Category, b.Category)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

type errDuplicate string

func (e errDuplicate) Error() string {
	return "item " + string(e) + " already exists"
}
