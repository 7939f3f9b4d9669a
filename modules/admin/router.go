// Package admin exposes the platform-admin tenant surface: list, fetch,
// create, delete, and status administration. It is mounted behind the
// platform operator authentication layer and always runs in the primary
// database context.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/storekit/storekit/core"
	"github.com/storekit/storekit/svc/tenant"
)

// Service is the slice of the tenant lifecycle service this surface consumes.
type Service interface {
	Provision(ctx context.Context, params tenant.NewTenantParams) (*tenant.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	List(ctx context.Context) ([]tenant.Tenant, error)
	SetStatus(ctx context.Context, id uuid.UUID, status tenant.Status) error
	Deprovision(ctx context.Context, id uuid.UUID) error
}

type handlers struct {
	svc Service
	log *slog.Logger
}

// NewRouter mounts the platform-admin tenant API.
func NewRouter(svc Service, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{svc: svc, log: log}

	r := chi.NewRouter()
	r.Get("/tenants", h.list)
	r.Post("/tenants", h.create)
	r.Get("/tenants/{id}", h.get)
	r.Delete("/tenants/{id}", h.delete)
	r.Patch("/tenants/{id}/status", h.setStatus)
	return r
}

type createTenantRequest struct {
	Name          string    `json:"name"`
	Subdomain     string    `json:"subdomain"`
	CustomerID    uuid.UUID `json:"customer_id"`
	OwnerEmail    string    `json:"owner_email"`
	OwnerPassword string    `json:"owner_password"`
}

type setStatusRequest struct {
	Status tenant.Status `json:"status"`
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.svc.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, tenants)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.JSONError(w, core.ErrNotFound)
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, t)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	if req.Name == "" || req.Subdomain == "" || req.OwnerEmail == "" || req.OwnerPassword == "" {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	t, err := h.svc.Provision(r.Context(), tenant.NewTenantParams{
		Name:          req.Name,
		Subdomain:     req.Subdomain,
		CustomerID:    req.CustomerID,
		OwnerEmail:    req.OwnerEmail,
		OwnerPassword: req.OwnerPassword,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusCreated, t)
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.JSONError(w, core.ErrNotFound)
		return
	}

	if err := h.svc.Deprovision(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *handlers) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.JSONError(w, core.ErrNotFound)
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	// Admin status administration moves tenants between active and suspended;
	// cancellation goes through billing, deletion through Deprovision.
	if req.Status != tenant.StatusActive && req.Status != tenant.StatusSuspended {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	if err := h.svc.SetStatus(r.Context(), id, req.Status); err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

func (h *handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrInvalidSubdomain), errors.Is(err, tenant.ErrInvalidStatus):
		core.JSONError(w, core.ErrBadRequest)
	case errors.Is(err, tenant.ErrSubdomainTaken):
		core.JSONError(w, core.ErrConflict)
	case errors.Is(err, tenant.ErrTenantNotFound):
		core.JSONError(w, core.ErrNotFound)
	default:
		h.log.ErrorContext(r.Context(), "admin tenant operation failed", "error", err)
		core.JSONError(w, core.ErrInternalServerError)
	}
}
