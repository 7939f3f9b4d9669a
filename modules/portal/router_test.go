package portal_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/storekit/modules/portal"
	"github.com/storekit/storekit/svc/tenant"
)

type fakeService struct {
	tenants map[uuid.UUID]*tenant.Tenant

	provisionErr error
	lastParams   tenant.NewTenantParams
	tokenErr     error
	tokenFor     uuid.UUID
}

func newFakeService() *fakeService {
	return &fakeService{tenants: make(map[uuid.UUID]*tenant.Tenant)}
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
		ID:         uuid.New(),
		Name:       params.Name,
		Subdomain:  params.Subdomain,
		CustomerID: params.CustomerID,
		Status:     tenant.StatusActive,
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

func (f *fakeService) ListOwned(ctx context.Context, customerID uuid.UUID) ([]tenant.Tenant, error) {
	var out []tenant.Tenant
	for _, t := range f.tenants {
		if t.CustomerID == customerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeService) GenerateImpersonationToken(tenantID uuid.UUID) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	f.tokenFor = tenantID
	return "tok-" + tenantID.String(), nil
}

func newTestRouter(svc *fakeService) http.Handler {
	return portal.NewRouter(svc, slog.New(slog.DiscardHandler))
}

// asCustomer attaches the authenticated customer identity the way the outer
// session layer does in production.
func asCustomer(r *http.Request, customerID uuid.UUID) *http.Request {
	return r.WithContext(portal.WithCustomer(r.Context(), customerID))
}

func TestRequireCustomer(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter(newFakeService()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListOwnedTenants(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	svc := newFakeService()
	svc.add(&tenant.Tenant{ID: uuid.New(), Subdomain: "acme", CustomerID: customerID, Status: tenant.StatusActive})
	svc.add(&tenant.Tenant{ID: uuid.New(), Subdomain: "globex", CustomerID: uuid.New(), Status: tenant.StatusActive})

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/tenants", nil), customerID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []tenant.Tenant `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "acme", resp.Data[0].Subdomain)
}

func TestCreateOwnedTenant(t *testing.T) {
	t.Parallel()

	t.Run("customer identity overrides body", func(t *testing.T) {
		t.Parallel()

		customerID := uuid.New()
		svc := newFakeService()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(
			`{"name":"Acme Store","subdomain":"acme","owner_email":"owner@acme.test","owner_password":"s3cret-pass"}`,
		))
		newTestRouter(svc).ServeHTTP(rec, asCustomer(req, customerID))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, customerID, svc.lastParams.CustomerID)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(`{"name":"Acme Store"}`))
		newTestRouter(newFakeService()).ServeHTTP(rec, asCustomer(req, uuid.New()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("subdomain taken", func(t *testing.T) {
		t.Parallel()

		svc := newFakeService()
		svc.provisionErr = tenant.ErrSubdomainTaken

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(
			`{"name":"Acme Store","subdomain":"acme","owner_email":"owner@acme.test","owner_password":"s3cret-pass"}`,
		))
		newTestRouter(svc).ServeHTTP(rec, asCustomer(req, uuid.New()))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestImpersonate(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	svc := newFakeService()
	owned := svc.add(&tenant.Tenant{ID: uuid.New(), Subdomain: "acme", CustomerID: customerID, Status: tenant.StatusActive})
	foreign := svc.add(&tenant.Tenant{ID: uuid.New(), Subdomain: "globex", CustomerID: uuid.New(), Status: tenant.StatusActive})

	impersonate := func(id string, as uuid.UUID) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tenants/"+id+"/impersonate", nil)
		newTestRouter(svc).ServeHTTP(rec, asCustomer(req, as))
		return rec
	}

	t.Run("owned tenant", func(t *testing.T) {
		rec := impersonate(owned.ID.String(), customerID)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data struct {
				Token string `json:"token"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "tok-"+owned.ID.String(), resp.Data.Token)
		assert.Equal(t, owned.ID, svc.tokenFor)
	})

	t.Run("foreign tenant", func(t *testing.T) {
		rec := impersonate(foreign.ID.String(), customerID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		rec := impersonate(uuid.NewString(), customerID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("token generation failure", func(t *testing.T) {
		svc.tokenErr = errors.New("signer unavailable")
		t.Cleanup(func() { svc.tokenErr = nil })

		rec := impersonate(owned.ID.String(), customerID)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCustomerContext(t *testing.T) {
	t.Parallel()

	_, ok := portal.CustomerFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := portal.CustomerFromContext(portal.WithCustomer(context.Background(), id))
	require.True(t, ok)
	assert.Equal(t, id, got)
}
