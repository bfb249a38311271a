package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/imaging"
	"github.com/saikat7890/Lost-and-Found-System/internal/media"
	"github.com/saikat7890/Lost-and-Found-System/internal/query"
	"github.com/saikat7890/Lost-and-Found-System/internal/service"
	"github.com/saikat7890/Lost-and-Found-System/pkg/httputil"
	"github.com/saikat7890/Lost-and-Found-System/pkg/middleware"
	"github.com/saikat7890/Lost-and-Found-System/pkg/validator"
)

// Upload limits enforced while reading the multipart body.
const (
	imagesField     = "images"
	maxFormMemory   = 32 << 20
	maxFormOverhead = 1 << 20
	maxUploadBody   = domain.MaxImages*imaging.MaxFileSize + maxFormOverhead
)

// Transport-level rejection messages.
const (
	msgFileTooLarge  = "File size too large. Maximum size is 5MB."
	msgTooManyFiles  = "Too many files. Maximum is 5 images."
	msgBadForm       = "Invalid multipart form"
	msgBadJSON       = "Invalid JSON body"
	msgNoCaller      = "No token, authorization denied"
	msgMissingItemID = "item id is required"
)

// ItemHandler handles HTTP requests for item endpoints.
type ItemHandler struct {
	service *service.ItemService
	logger  *slog.Logger
}

// NewItemHandler creates a new item HTTP handler.
func NewItemHandler(svc *service.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateItem handles POST /api/items (multipart/form-data).
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, msgNoCaller)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteMessage(w, http.StatusBadRequest, msgFileTooLarge)
			return
		}
		httputil.WriteMessage(w, http.StatusBadRequest, msgBadForm)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[imagesField]
	if len(headers) > domain.MaxImages {
		httputil.WriteMessage(w, http.StatusBadRequest, msgTooManyFiles)
		return
	}

	files := make([]media.Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > imaging.MaxFileSize {
			httputil.WriteMessage(w, http.StatusBadRequest, msgFileTooLarge)
			return
		}
		data, err := readPart(fh)
		if err != nil {
			h.logger.WarnContext(r.Context(), "failed to read uploaded file",
				slog.String("file", fh.Filename),
				slog.String("error", err.Error()),
			)
			httputil.WriteMessage(w, http.StatusBadRequest, msgBadForm)
			return
		}
		files = append(files, media.Upload{Name: fh.Filename, Data: data})
	}

	input := service.CreateItemInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Category:     r.FormValue("category"),
		Type:         r.FormValue("type"),
		Location:     r.FormValue("location"),
		DateOccurred: r.FormValue("dateOccurred"),
		ContactPhone: r.FormValue("contactPhone"),
		ContactEmail: r.FormValue("contactEmail"),
	}

	item, err := h.service.Create(r.Context(), caller, input, files)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, httputil.Envelope{
		Message: service.MsgCreated,
		Item:    item,
	})
}

// ListItems handles GET /api/items.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), query.FromValues(r.URL.Query()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, httputil.Envelope{
		Items:      nonNil(res.Items),
		Pagination: res.Pagination,
	})
}

// ListMyItems handles GET /api/items/my-items.
func (h *ItemHandler) ListMyItems(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, msgNoCaller)
		return
	}

	items, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, httputil.Envelope{Items: nonNil(items)})
}

// GetItem handles GET /api/items/{id}.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteMessage(w, http.StatusBadRequest, msgMissingItemID)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, httputil.Envelope{Item: item})
}

// UpdateItem handles PUT /api/items/{id}. Fields outside the patch are
// ignored.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, msgNoCaller)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteMessage(w, http.StatusBadRequest, msgMissingItemID)
		return
	}

	var patch domain.ItemPatch
	if err := validator.Decode(r, &patch); err != nil {
		httputil.WriteMessage(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	item, err := h.service.Update(r.Context(), caller, id, patch)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, httputil.Envelope{
		Message: service.MsgUpdated,
		Item:    item,
	})
}

// DeleteItem handles DELETE /api/items/{id}.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, msgNoCaller)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteMessage(w, http.StatusBadRequest, msgMissingItemID)
		return
	}

	res, err := h.service.Delete(r.Context(), caller, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, httputil.Envelope{Message: res.Message})
}

// callerFrom builds the caller from the claims stored by the auth
// middleware.
func callerFrom(r *http.Request) (domain.Caller, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return domain.Caller{}, false
	}
	return domain.Caller{
		ID:        claims.UserID,
		Name:      claims.Name,
		Email:     claims.Email,
		CreatedAt: claims.AccountCreatedAt,
	}, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open part: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imaging.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read part: %w", err)
	}
	return data, nil
}

// nonNil keeps empty listings encoded as [] instead of being dropped.
func nonNil(items []domain.Item) []domain.Item {
	if items == nil {
		return []domain.Item{}
	}
	return items
}
