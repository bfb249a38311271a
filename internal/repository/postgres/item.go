package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository"
	"github.com/saikat7890/Lost-and-Found-System/pkg/database"
	apperrors "github.com/saikat7890/Lost-and-Found-System/pkg/errors"
)

// ItemRepository implements repository.ItemRepository using PostgreSQL.
type ItemRepository struct {
	db database.DBTX
}

// NewItemRepository creates a new PostgreSQL-backed item repository.
func NewItemRepository(db database.DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

var _ repository.ItemRepository = (*ItemRepository)(nil)

const itemColumns = `i.id, i.title, i.description, i.category, i.type, i.location, i.date_occurred,
		i.contact_phone, i.contact_email, i.images, i.status, i.owner_id, i.is_approved,
		i.created_at, i.updated_at, COALESCE(o.name, ''), COALESCE(o.email, ''), o.created_at`

const itemFrom = `FROM items i LEFT JOIN owners o ON o.id = i.owner_id`

var sortColumns = map[repository.SortField]string{
	repository.SortCreatedAt:    "i.created_at",
	repository.SortUpdatedAt:    "i.updated_at",
	repository.SortDateOccurred: "i.date_occurred",
	repository.SortTitle:        "i.title",
	repository.SortLocation:     "i.location",
	repository.SortCategory:     "i.category",
}

// Create upserts the owner record and inserts the item in one statement.
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (err error) {
	imagesJSON, err := marshalImages(item.Images)
	if err != nil {
		return apperrors.Persistence(err)
	}

	owner := item.Owner
	if owner == nil {
		owner = &domain.Owner{ID: item.OwnerID}
	}

	query := `
		WITH owner AS (
			INSERT INTO owners (id, name, email, created_at)
			VALUES ($12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
				email = EXCLUDED.email,
				created_at = COALESCE(EXCLUDED.created_at, owners.created_at),
				synced_at = NOW()
		)
		INSERT INTO items (id, title, description, category, type, location, date_occurred,
			contact_phone, contact_email, images, status, owner_id, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $16)
		RETURNING created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateItem", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.Category,
		string(item.Kind),
		item.Location,
		item.DateOccurred,
		item.ContactInfo.Phone,
		item.ContactInfo.Email,
		imagesJSON,
		string(item.Status),
		item.OwnerID,
		owner.Name,
		owner.Email,
		owner.CreatedAt,
		item.IsApproved,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("insert item: %w", err))
	}

	return nil
}

// GetByID retrieves an item and its owner by id.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (_ *domain.Item, err error) {
	query := `SELECT ` + itemColumns + `
		` + itemFrom + `
		WHERE i.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetItem", query)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Persistence(fmt.Errorf("get item: %w", err))
	}

	return item, nil
}

// List counts the matches and then fetches the requested page.
func (r *ItemRepository) List(ctx context.Context, opts repository.ListOptions) (_ []domain.Item, _ int, err error) {
	where, args := buildWhere(opts.Filter)

	countQuery := `SELECT count(*) FROM items i ` + where

	ctx, end := database.TraceQuery(ctx, "ListItems", countQuery)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Persistence(fmt.Errorf("count items: %w", err))
	}

	query := `SELECT ` + itemColumns + `
		` + itemFrom + `
		` + where + `
		` + orderBy(opts.Sort)

	if opts.Limit > 0 {
		query += fmt.Sprintf("\n\t\tLIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, opts.Limit, opts.Skip)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Persistence(fmt.Errorf("list items: %w", err))
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			err = scanErr
			return nil, 0, apperrors.Persistence(fmt.Errorf("scan item row: %w", err))
		}
		items = append(items, *item)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, apperrors.Persistence(fmt.Errorf("iterate item rows: %w", err))
	}

	return items, total, nil
}

// Update writes the owner-editable columns only.
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) (err error) {
	query := `
		UPDATE items
		SET title = $1, description = $2, location = $3, status = $4,
			contact_phone = $5, contact_email = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	ctx, end := database.TraceQuery(ctx, "UpdateItem", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.Location,
		string(item.Status),
		item.ContactInfo.Phone,
		item.ContactInfo.Email,
		item.ID,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.Persistence(fmt.Errorf("update item: %w", err))
	}

	return nil
}

// Delete removes an item record by id.
func (r *ItemRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM items WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteItem", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("delete item: %w", err))
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// buildWhere renders the filter as a WHERE clause over alias i with
// positional arguments starting at $1.
func buildWhere(f repository.ItemFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.PublicOnly {
		add("i.status = $%d", string(domain.StatusActive))
		conditions = append(conditions, "i.is_approved = TRUE")
	}
	if f.OwnerID != "" {
		add("i.owner_id = $%d", f.OwnerID)
	}
	if f.Kind != "" {
		add("i.type = $%d", string(f.Kind))
	}
	if f.Category != "" {
		add("i.category = $%d", f.Category)
	}
	if f.Location != "" {
		add("i.location ILIKE $%d", "%"+escapeLike(f.Location)+"%")
	}
	if f.Search != "" {
		terms := repository.SearchTerms(f.Search)
		if len(terms) == 0 {
			conditions = append(conditions, "FALSE")
		} else {
			add("i.search_vector @@ to_tsquery('english', $%d)", tsQuery(terms))
		}
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// orderBy renders a single-key ORDER BY with id as a stable tiebreaker.
func orderBy(s repository.Sort) string {
	col, ok := sortColumns[s.Field]
	if !ok {
		col = sortColumns[repository.SortCreatedAt]
	}
	dir := "DESC"
	if s.Ascending {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, i.id %s", col, dir, dir)
}

// tsQuery ORs the terms with each one quoted as a tsquery lexeme.
func tsQuery(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = "'" + t + "'"
	}
	return strings.Join(quoted, " | ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func marshalImages(images []domain.Image) ([]byte, error) {
	if images == nil {
		images = []domain.Image{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	return b, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		item           domain.Item
		kind, status   string
		imagesJSON     []byte
		owner          domain.Owner
		ownerCreatedAt *time.Time
	)

	if err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Category,
		&kind,
		&item.Location,
		&item.DateOccurred,
		&item.ContactInfo.Phone,
		&item.ContactInfo.Email,
		&imagesJSON,
		&status,
		&item.OwnerID,
		&item.IsApproved,
		&item.CreatedAt,
		&item.UpdatedAt,
		&owner.Name,
		&owner.Email,
		&ownerCreatedAt,
	); err != nil {
		return nil, err
	}

	item.Kind = domain.Kind(kind)
	item.Status = domain.Status(status)

	item.Images = []domain.Image{}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &item.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
	}

	owner.ID = item.OwnerID
	owner.CreatedAt = ownerCreatedAt
	item.Owner = &owner

	return &item, nil
}
