package admin_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/storekit/modules/admin"
	"github.com/storekit/storekit/svc/tenant"
)

type fakeService struct {
	tenants map[uuid.UUID]*tenant.Tenant

	provisionErr error
	lastParams   tenant.NewTenantParams
	deprovisions []uuid.UUID
	statuses     map[uuid.UUID]tenant.Status
}

func newFakeService() *fakeService {
	return &fakeService{
		tenants:  make(map[uuid.UUID]*tenant.Tenant),
		statuses: make(map[uuid.UUID]tenant.Status),
	}
}

func (f *fakeService) add(t *tenant.Tenant) *tenant.Tenant {
	f.tenants[t.ID] = t
	return t
}

func (f *fakeService) Provision(ctx context.Context, params tenant.NewTenantParams) (*tenant.Tenant, error) {
	f.lastParams = params
	if f.provisionErr != nil {
		return nil, f.provisionErr
	}
	t := &tenant.Tenant{
		ID:           uuid.New(),
		Name:         params.Name,
		Subdomain:    params.Subdomain,
		DatabaseName: tenant.DatabaseName("tenant_", params.Subdomain),
		CustomerID:   params.CustomerID,
		Status:       tenant.StatusActive,
	}
	f.tenants[t.ID] = t
	return t, nil
}

func (f *fakeService) Get(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

func (f *fakeService) List(ctx context.Context) ([]tenant.Tenant, error) {
	out := make([]tenant.Tenant, 0, len(f.tenants))
	for _, t := range f.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeService) SetStatus(ctx context.Context, id uuid.UUID, status tenant.Status) error {
	if _, ok := f.tenants[id]; !ok {
		return tenant.ErrTenantNotFound
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeService) Deprovision(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.tenants[id]; !ok {
		return tenant.ErrTenantNotFound
	}
	f.deprovisions = append(f.deprovisions, id)
	delete(f.tenants, id)
	return nil
}

func newTestRouter(svc *fakeService) http.Handler {
	return admin.NewRouter(svc, slog.New(slog.DiscardHandler))
}

func TestListTenants(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.add(&tenant.Tenant{ID: uuid.New(), Name: "Acme", Subdomain: "acme", Status: tenant.StatusActive})
	svc.add(&tenant.Tenant{ID: uuid.New(), Name: "Globex", Subdomain: "globex", Status: tenant.StatusSuspended})

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []tenant.Tenant `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestGetTenant(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	want := svc.add(&tenant.Tenant{ID: uuid.New(), Name: "Acme", Subdomain: "acme", Status: tenant.StatusActive})

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants/"+want.ID.String(), nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data tenant.Tenant `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, want.ID, resp.Data.ID)
		assert.Equal(t, "acme", resp.Data.Subdomain)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants/"+uuid.NewString(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants/not-a-uuid", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateTenant(t *testing.T) {
	t.Parallel()

	body := func(fields map[string]any) *strings.Reader {
		raw, _ := json.Marshal(fields)
		return strings.NewReader(string(raw))
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc := newFakeService()
		customerID := uuid.New()

		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tenants", body(map[string]any{
			"name":           "Acme Store",
			"subdomain":      "acme",
			"customer_id":    customerID,
			"owner_email":    "owner@acme.test",
			"owner_password": "s3cret-pass",
		})))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "acme", svc.lastParams.Subdomain)
		assert.Equal(t, customerID, svc.lastParams.CustomerID)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		svc := newFakeService()

		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tenants", body(map[string]any{
			"name": "Acme Store",
		})))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()

		svc := newFakeService()

		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("subdomain taken", func(t *testing.T) {
		t.Parallel()

		svc := newFakeService()
		svc.provisionErr = tenant.ErrSubdomainTaken

		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tenants", body(map[string]any{
			"name":           "Acme Store",
			"subdomain":      "acme",
			"owner_email":    "owner@acme.test",
			"owner_password": "s3cret-pass",
		})))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid subdomain", func(t *testing.T) {
		t.Parallel()

		svc := newFakeService()
		svc.provisionErr = tenant.ErrInvalidSubdomain

		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tenants", body(map[string]any{
			"name":           "Acme Store",
			"subdomain":      "-acme-",
			"owner_email":    "owner@acme.test",
			"owner_password": "s3cret-pass",
		})))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteTenant(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	existing := svc.add(&tenant.Tenant{ID: uuid.New(), Name: "Acme", Subdomain: "acme", Status: tenant.StatusActive})

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/tenants/"+existing.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.deprovisions, 1)
	assert.Equal(t, existing.ID, svc.deprovisions[0])

	rec = httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/tenants/"+existing.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetTenantStatus(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	existing := svc.add(&tenant.Tenant{ID: uuid.New(), Name: "Acme", Subdomain: "acme", Status: tenant.StatusActive})

	patch := func(id, status string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(
			http.MethodPatch,
			"/tenants/"+id+"/status",
			strings.NewReader(`{"status":"`+status+`"}`),
		))
		return rec
	}

	t.Run("suspend", func(t *testing.T) {
		rec := patch(existing.ID.String(), "suspended")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tenant.StatusSuspended, svc.statuses[existing.ID])
	})

	t.Run("cancelled is rejected", func(t *testing.T) {
		rec := patch(existing.ID.String(), "cancelled")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := patch(existing.ID.String(), "frozen")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		rec := patch(uuid.NewString(), "active")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
