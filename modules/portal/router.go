// Package portal exposes the owning-customer tenant surface: list owned
// tenants, self-provision, and impersonation-token issuance. Everything is
// scoped to whichever database context the request arrived in, so a reseller
// operating inside its own database sees only its sub-tenants.
package portal

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
	ListOwned(ctx context.Context, customerID uuid.UUID) ([]tenant.Tenant, error)
	GenerateImpersonationToken(tenantID uuid.UUID) (string, error)
}

type handlers struct {
	svc Service
	log *slog.Logger
}

// NewRouter mounts the owning-customer tenant API. Requests must carry an
// authenticated customer identity (see WithCustomer); everything else is
// refused up front.
func NewRouter(svc Service, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(requireCustomer)
	r.Get("/tenants", h.list)
	r.Post("/tenants", h.create)
	r.Post("/tenants/{id}/impersonate", h.impersonate)
	return r
}

type createTenantRequest struct {
	Name          string `json:"name"`
	Subdomain     string `json:"subdomain"`
	OwnerEmail    string `json:"owner_email"`
	OwnerPassword string `json:"owner_password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	customerID, _ := CustomerFromContext(r.Context())

	tenants, err := h.svc.ListOwned(r.Context(), customerID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, tenants)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	customerID, _ := CustomerFromContext(r.Context())

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
		CustomerID:    customerID,
		OwnerEmail:    req.OwnerEmail,
		OwnerPassword: req.OwnerPassword,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusCreated, t)
}

// impersonate mints a short-lived bootstrap token for a tenant the caller
// owns. Ownership is re-validated here, on token issuance, and must be
// re-validated again by the consuming endpoint: the token itself carries no
// access-control decision.
func (h *handlers) impersonate(w http.ResponseWriter, r *http.Request) {
	customerID, _ := CustomerFromContext(r.Context())

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
	if t.CustomerID != customerID {
		core.JSONError(w, core.ErrForbidden)
		return
	}

	token, err := h.svc.GenerateImpersonationToken(t.ID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrInvalidSubdomain):
		core.JSONError(w, core.ErrBadRequest)
	case errors.Is(err, tenant.ErrSubdomainTaken):
		core.JSONError(w, core.ErrConflict)
	case errors.Is(err, tenant.ErrTenantNotFound):
		core.JSONError(w, core.ErrNotFound)
	default:
		h.log.ErrorContext(r.Context(), "portal tenant operation failed", "error", err)
		core.JSONError(w, core.ErrInternalServerError)
	}
}
