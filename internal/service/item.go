package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/imaging"
	"github.com/saikat7890/Lost-and-Found-System/internal/media"
	"github.com/saikat7890/Lost-and-Found-System/internal/query"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository"
	apperrors "github.com/saikat7890/Lost-and-Found-System/pkg/errors"
	"github.com/saikat7890/Lost-and-Found-System/pkg/pagination"
)

// Response messages.
const (
	MsgCreated      = "Item posted successfully"
	MsgUpdated      = "Item updated successfully"
	MsgDeleted      = "Item deleted successfully"
	MsgNotFound     = "Item not found"
	MsgUpdateDenied = "Not authorized to update this item"
	MsgDeleteDenied = "Not authorized to delete this item"
)

// MediaLifecycle stores the images of new items and removes the images of
// deleted ones.
type MediaLifecycle interface {
	OnCreate(ctx context.Context, files []media.Upload) ([]domain.Image, error)
	OnDelete(ctx context.Context, images []domain.Image) media.DeleteReport
}

// EventPublisher announces item changes to downstream consumers.
type EventPublisher interface {
	PublishItemCreated(ctx context.Context, item *domain.Item) error
	PublishItemUpdated(ctx context.Context, item *domain.Item) error
	PublishItemDeleted(ctx context.Context, item *domain.Item, orphaned int) error
}

// ItemService implements the business logic for item operations.
type ItemService struct {
	repo   repository.ItemRepository
	media  MediaLifecycle
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an ItemService.
type Option func(*ItemService)

// WithEvents publishes item events through p.
func WithEvents(p EventPublisher) Option {
	return func(s *ItemService) { s.events = p }
}

// WithClock overrides the time source used for date validation.
func WithClock(now func() time.Time) Option {
	return func(s *ItemService) { s.now = now }
}

// NewItemService creates a new item service.
func NewItemService(
	repo repository.ItemRepository,
	mediaLifecycle MediaLifecycle,
	logger *slog.Logger,
	opts ...Option,
) *ItemService {
	s := &ItemService{
		repo:   repo,
		media:  mediaLifecycle,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateItemInput holds the raw fields of a new posting as submitted.
type CreateItemInput struct {
	Title        string
	Description  string
	Category     string
	Type         string
	Location     string
	DateOccurred string
	ContactPhone string
	ContactEmail string
}

// ListResult is one page of the public catalog.
type ListResult struct {
	Items      []domain.Item
	Pagination *pagination.Meta
}

// DeleteResult describes a completed deletion. Message carries a warning
// when some images could not be removed from the object store.
type DeleteResult struct {
	Message string
	Media   media.DeleteReport
}

// Create validates the input and files, uploads the files, and persists the
// item owned by caller. Nothing is uploaded when validation fails and nothing
// is persisted when an upload fails.
func (s *ItemService) Create(ctx context.Context, caller domain.Caller, input CreateItemInput, files []media.Upload) (*domain.Item, error) {
	item := &domain.Item{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Kind:        domain.Kind(strings.TrimSpace(input.Type)),
		Location:    input.Location,
		ContactInfo: domain.ContactInfo{
			Phone: input.ContactPhone,
			Email: input.ContactEmail,
		},
		Images:  []domain.Image{},
		Status:  domain.StatusActive,
		OwnerID: caller.ID,
	}
	item.Normalize()
	if item.ContactInfo.Email == "" {
		item.ContactInfo.Email = caller.Email
	}

	rawDate := strings.TrimSpace(input.DateOccurred)
	if d, ok := domain.ParseDate(rawDate); ok {
		item.DateOccurred = d
	}

	violations := item.Violations(s.now())
	if rawDate != "" && item.DateOccurred.IsZero() {
		for i, v := range violations {
			if v == domain.MsgDateRequired {
				violations[i] = domain.MsgDateInvalid
			}
		}
	}
	violations = append(violations, fileViolations(files)...)
	if len(violations) > 0 {
		return nil, apperrors.Validation(violations)
	}

	images := []domain.Image{}
	if len(files) > 0 {
		stored, err := s.media.OnCreate(ctx, files)
		if err != nil {
			return nil, err
		}
		images = stored
	}

	item.ID = uuid.New().String()
	item.Images = images
	item.IsApproved = true
	item.Owner = caller.Owner()

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist item",
			slog.String("item_id", item.ID),
			slog.String("error", err.Error()),
		)
		if len(images) > 0 {
			report := s.media.OnDelete(ctx, images)
			if !report.OK() {
				s.logger.ErrorContext(ctx, "failed to clean up images after persist error",
					slog.String("item_id", item.ID),
					slog.Int("orphaned", len(report.Failed)),
				)
			}
		}
		return nil, persistence(err)
	}

	s.logger.InfoContext(ctx, "item created",
		slog.String("item_id", item.ID),
		slog.String("owner_id", item.OwnerID),
		slog.Int("images", len(item.Images)),
	)

	if s.events != nil {
		if err := s.events.PublishItemCreated(ctx, item); err != nil {
			s.logger.WarnContext(ctx, "failed to publish item.created event",
				slog.String("item_id", item.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	out := item.WithOwner(domain.ProjectContact)
	return &out, nil
}

// List returns one page of the public catalog. Owners are reduced to their
// name.
func (s *ItemService) List(ctx context.Context, params query.Params) (*ListResult, error) {
	compiled := query.Compile(params)

	items, total, err := s.repo.List(ctx, compiled.Options)
	if err != nil {
		return nil, persistence(err)
	}

	return &ListResult{
		Items:      project(items, domain.ProjectName),
		Pagination: pagination.NewMeta(compiled.Page, total),
	}, nil
}

// ListMine returns every item caller owns, newest first, regardless of
// status or approval.
func (s *ItemService) ListMine(ctx context.Context, caller domain.Caller) ([]domain.Item, error) {
	items, _, err := s.repo.List(ctx, query.CompileMine(caller.ID))
	if err != nil {
		return nil, persistence(err)
	}
	return project(items, domain.ProjectContact), nil
}

// Get returns an item by id with its owner's name, email and account
// creation time. Any item is visible regardless of status.
func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := item.WithOwner(domain.ProjectFull)
	return &out, nil
}

// Update applies patch to the item when caller owns it. Images, category,
// kind and date are never changed.
func (s *ItemService) Update(ctx context.Context, caller domain.Caller, id string, patch domain.ItemPatch) (*domain.Item, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(caller.ID, item) {
		return nil, apperrors.Forbidden(MsgUpdateDenied)
	}

	patch.Apply(item)
	if err := item.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, persistence(err)
	}

	s.logger.InfoContext(ctx, "item updated",
		slog.String("item_id", item.ID),
		slog.String("status", string(item.Status)),
	)

	if s.events != nil {
		if err := s.events.PublishItemUpdated(ctx, item); err != nil {
			s.logger.WarnContext(ctx, "failed to publish item.updated event",
				slog.String("item_id", item.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	out := item.WithOwner(domain.ProjectContact)
	return &out, nil
}

// Delete removes the item's images and then the item when caller owns it.
// Image removal failures do not prevent the deletion.
func (s *ItemService) Delete(ctx context.Context, caller domain.Caller, id string) (*DeleteResult, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(caller.ID, item) {
		return nil, apperrors.Forbidden(MsgDeleteDenied)
	}

	report := s.media.OnDelete(ctx, item.Images)

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return nil, persistence(err)
	}

	s.logger.InfoContext(ctx, "item deleted",
		slog.String("item_id", item.ID),
		slog.Int("images", report.Attempted),
		slog.Int("images_failed", len(report.Failed)),
	)

	if s.events != nil {
		if err := s.events.PublishItemDeleted(ctx, item, len(report.Failed)); err != nil {
			s.logger.WarnContext(ctx, "failed to publish item.deleted event",
				slog.String("item_id", item.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	result := &DeleteResult{Message: MsgDeleted, Media: report}
	if !report.OK() {
		result.Message = fmt.Sprintf("%s, but %d of %d images could not be removed from storage",
			MsgDeleted, len(report.Failed), report.Attempted)
	}
	return result, nil
}

func (s *ItemService) find(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	return item, nil
}

// fileViolations checks the upload count, size, content type and
// decodability of files.
func fileViolations(files []media.Upload) []string {
	var out []string
	if len(files) > domain.MaxImages {
		out = append(out, fmt.Sprintf("You can upload at most %d images", domain.MaxImages))
	}
	for _, f := range files {
		if len(f.Data) > imaging.MaxFileSize {
			out = append(out, fmt.Sprintf("image %s exceeds the 5 MB limit", f.Name))
			continue
		}
		if _, ok := imaging.Sniff(f.Data); !ok {
			out = append(out, fmt.Sprintf("image %s is not a supported image type", f.Name))
			continue
		}
		if err := imaging.Check(f.Data); err != nil {
			out = append(out, fmt.Sprintf("image %s could not be decoded", f.Name))
		}
	}
	return out
}

// persistence classifies a repository error. A missing item becomes the
// item not-found error; anything unclassified becomes a persistence error.
func persistence(err error) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return apperrors.NotFoundMessage(MsgNotFound)
	case apperrors.KindUnexpected:
		return apperrors.Persistence(err)
	default:
		return err
	}
}

func project(items []domain.Item, p domain.Projection) []domain.Item {
	out := make([]domain.Item, len(items))
	for i, item := range items {
		out[i] = item.WithOwner(p)
	}
	return out
}
