package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/shop-service/internal/blob"
	"github.com/md-rashed-zaman/barberbook/services/shop-service/internal/shop"
)

const ShopIDHeader = "X-Shop-Id"

// Store is the persistence the admin console needs.
type Store interface {
	GetShop(ctx context.Context, shopID string) (shop.Profile, error)
	UpdateProfile(ctx context.Context, shopID string, in shop.ProfileInput) error
	SetOpen(ctx context.Context, shopID string, open bool) error
	SetHours(ctx context.Context, shopID string, hours map[string]shop.DayHours) error
	SetNotes(ctx context.Context, shopID, notes string) error
	SetLogo(ctx context.Context, shopID, logo string) error
	ListServices(ctx context.Context, shopID string) ([]shop.Service, error)
	CreateService(ctx context.Context, shopID string, d shop.ServiceDraft) (shop.Service, error)
	UpdateService(ctx context.Context, shopID, serviceID string, d shop.ServiceDraft) (shop.Service, error)
	DeleteService(ctx context.Context, shopID, serviceID string) error
}

type Handler struct {
	repo   Store
	blobs  blob.Store
	logger *slog.Logger
	newID  func() string
}

func New(repo Store, blobs blob.Store, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, blobs: blobs, logger: logger, newID: uuid.NewString}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/shop/profile", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetProfile(w, r)
		case http.MethodPut:
			h.UpdateProfile(w, r)
		default:
			httpx.MethodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	})
	mux.HandleFunc("/api/v1/shop/open", h.setOpen(true))
	mux.HandleFunc("/api/v1/shop/close", h.setOpen(false))
	mux.HandleFunc("/api/v1/shop/hours", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetHours(w, r)
		case http.MethodPut:
			h.UpdateHours(w, r)
		default:
			httpx.MethodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	})
	mux.HandleFunc("/api/v1/shop/notes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetNotes(w, r)
		case http.MethodPut:
			h.UpdateNotes(w, r)
		default:
			httpx.MethodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	})
	mux.HandleFunc("/api/v1/shop/logo", h.UploadLogo)
	mux.HandleFunc("/api/v1/shop/services", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListServices(w, r)
		case http.MethodPost:
			h.CreateService(w, r)
		case http.MethodPut:
			h.UpdateService(w, r)
		case http.MethodDelete:
			h.DeleteService(w, r)
		default:
			httpx.MethodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
		}
	})
}

func shopIDFromHeader(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(ShopIDHeader))
	if id == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "missing shop context")
		return "", false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *shop.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteFieldErrors(w, "Verifique os campos do formulário.", verr.Fields)
	case errors.Is(err, shop.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	default:
		h.logger.Error(op+" failed",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service unavailable, try again")
	}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	p, err := h.repo.GetShop(r.Context(), shopID)
	if err != nil {
		h.fail(w, r, "load profile", err)
		return
	}
	if p.OpeningHours == nil {
		p.OpeningHours = map[string]shop.DayHours{}
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// UpdateProfile overwrites name, address and phone as submitted.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	var req shop.ProfileInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	in, verr := req.Normalize()
	if verr != nil {
		h.fail(w, r, "update profile", verr)
		return
	}
	if err := h.repo.UpdateProfile(r.Context(), shopID, in); err != nil {
		h.fail(w, r, "update profile", err)
		return
	}
	h.GetProfile(w, r)
}

func (h *Handler) setOpen(open bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpx.MethodNotAllowed(w, http.MethodPost)
			return
		}
		shopID, ok := shopIDFromHeader(w, r)
		if !ok {
			return
		}
		if err := h.repo.SetOpen(r.Context(), shopID, open); err != nil {
			h.fail(w, r, "set open", err)
			return
		}
		h.logger.Info("shop status changed",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"shop_id", shopID,
			"is_open", open,
		)
		httpx.WriteJSON(w, http.StatusOK, map[string]bool{"isOpen": open})
	}
}

func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	p, err := h.repo.GetShop(r.Context(), shopID)
	if err != nil {
		h.fail(w, r, "load hours", err)
		return
	}
	if p.OpeningHours == nil {
		p.OpeningHours = map[string]shop.DayHours{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"openingHours": p.OpeningHours})
}

func (h *Handler) UpdateHours(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	var req struct {
		OpeningHours map[string]shop.DayHours `json:"openingHours"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	hours, verr := shop.ValidateHours(req.OpeningHours)
	if verr != nil {
		h.fail(w, r, "update hours", verr)
		return
	}
	if err := h.repo.SetHours(r.Context(), shopID, hours); err != nil {
		h.fail(w, r, "update hours", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"openingHours": hours})
}

func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	p, err := h.repo.GetShop(r.Context(), shopID)
	if err != nil {
		h.fail(w, r, "load notes", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"notes": p.Notes})
}

func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.repo.SetNotes(r.Context(), shopID, req.Notes); err != nil {
		h.fail(w, r, "update notes", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"notes": req.Notes})
}

// UploadLogo stores the file, resolves its address, then saves it on the
// shop. A failure after the upload leaves the blob orphaned.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, shop.MaxLogoBytes+(1<<20))
	file, _, err := r.FormFile("logo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "A imagem deve ter menos de 2MB")
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, "logo file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, shop.MaxLogoBytes+1))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "failed to read logo")
		return
	}
	if len(data) > shop.MaxLogoBytes {
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, "A imagem deve ter menos de 2MB")
		return
	}
	contentType := http.DetectContentType(data)
	ext, ok := shop.LogoExtension(contentType)
	if !ok {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, "Por favor, selecione uma imagem (JPEG, PNG, WebP ou GIF)")
		return
	}

	ctx := r.Context()
	key := shop.LogoKey(shopID, h.newID(), ext)
	if err := h.blobs.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		h.fail(w, r, "upload logo", err)
		return
	}
	url, err := h.blobs.URL(ctx, key)
	if err != nil {
		h.logger.Warn("logo orphaned", "shop_id", shopID, "key", key)
		h.fail(w, r, "resolve logo url", err)
		return
	}
	if err := h.repo.SetLogo(ctx, shopID, url); err != nil {
		h.logger.Warn("logo orphaned", "shop_id", shopID, "key", key)
		h.fail(w, r, "save logo", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"logo": url})
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	list, err := h.repo.ListServices(r.Context(), shopID)
	if err != nil {
		h.fail(w, r, "list services", err)
		return
	}
	if list == nil {
		list = []shop.Service{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"services": list})
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	var req shop.ServiceInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	draft, verr := req.Validate()
	if verr != nil {
		h.fail(w, r, "create service", verr)
		return
	}
	svc, err := h.repo.CreateService(r.Context(), shopID, draft)
	if err != nil {
		h.fail(w, r, "create service", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, svc)
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}
	var req shop.ServiceInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	draft, verr := req.Validate()
	if verr != nil {
		h.fail(w, r, "update service", verr)
		return
	}
	svc, err := h.repo.UpdateService(r.Context(), shopID, id, draft)
	if err != nil {
		h.fail(w, r, "update service", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, svc)
}

// DeleteService is irreversible and needs confirm=true.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopIDFromHeader(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}
	if q.Get("confirm") != "true" {
		httpx.WriteError(w, http.StatusPreconditionRequired, "deletion requires confirm=true")
		return
	}
	if err := h.repo.DeleteService(r.Context(), shopID, id); err != nil {
		h.fail(w, r, "delete service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
