package handler

import (
	apperrors "clubhouse/pkg/errors"
	httputil "clubhouse/pkg/http"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/middleware"
	"clubhouse/pkg/model"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

type mockResourceService struct {
	createFunc  func(ctx context.Context, res *model.Resource) error
	getByIDFunc func(ctx context.Context, id string) (*model.Resource, error)
	getAllFunc  func(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int64, error)
	updateFunc  func(ctx context.Context, id string, updates *model.ResourceUpdate) (*model.Resource, error)
}

func (m *mockResourceService) Create(ctx context.Context, res *model.Resource) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, res)
	}
	return nil
}

func (m *mockResourceService) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Resource", id)
}

func (m *mockResourceService) GetAll(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, filter)
	}
	return []*model.Resource{}, 0, nil
}

func (m *mockResourceService) Update(ctx context.Context, id string, updates *model.ResourceUpdate) (*model.Resource, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return &model.Resource{ID: id}, nil
}

func newRouter(svc *mockResourceService, auth *middleware.Authenticator) *httprouter.Router {
	router := httprouter.New()
	NewResourceHandler(svc, logger.Discard(), auth, []string{"staff"}).RegisterRoutes(router)
	return router
}

func TestCreate_ReturnsCreatedResource(t *testing.T) {
	svc := &mockResourceService{
		createFunc: func(ctx context.Context, res *model.Resource) error {
			res.ID = "507f1f77bcf86cd799439011"
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resources", strings.NewReader(`{"name":"North Field","type":"field"}`))
	rec := httptest.NewRecorder()
	newRouter(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got model.Resource
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "507f1f77bcf86cd799439011" || got.Name != "North Field" {
		t.Errorf("unexpected body %+v", got)
	}
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resources", strings.NewReader(`{"name":"x","colour":"red"}`))
	rec := httptest.NewRecorder()
	newRouter(&mockResourceService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCreate_ValidationErrorIs422(t *testing.T) {
	svc := &mockResourceService{
		createFunc: func(ctx context.Context, res *model.Resource) error {
			return apperrors.Validation("name is required", nil)
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resources", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	newRouter(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var body httputil.ErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body.Error != "name is required" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestGetAll_PassesFiltersAndTotal(t *testing.T) {
	var seen model.ResourceFilter
	svc := &mockResourceService{
		getAllFunc: func(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int64, error) {
			seen = filter
			return []*model.Resource{{ID: "a"}}, 12, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources?type=gym&status=active&search=hall&limit=5&offset=5", nil)
	rec := httptest.NewRecorder()
	newRouter(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(httputil.HeaderTotalCount) != "12" {
		t.Errorf("total header = %q", rec.Header().Get(httputil.HeaderTotalCount))
	}
	if seen.Type != model.ResourceGym || seen.Status != model.ResourceActive || seen.Search != "hall" || seen.Offset != 5 {
		t.Errorf("unexpected filter %+v", seen)
	}
}

func TestGetAll_InvalidLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources?limit=abc", nil)
	rec := httptest.NewRecorder()
	newRouter(&mockResourceService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources/507f1f77bcf86cd799439011", nil)
	rec := httptest.NewRecorder()
	newRouter(&mockResourceService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestWritesRequireStaffRole(t *testing.T) {
	auth := middleware.NewAuthenticator("secret", logger.Discard())
	router := newRouter(&mockResourceService{}, auth)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/resources/507f1f77bcf86cd799439011", strings.NewReader(`{"status":"inactive"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rec.Code)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Roles:            []string{"staff"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "coach-1"},
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/resources/507f1f77bcf86cd799439011", strings.NewReader(`{"status":"inactive"}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("staff token: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/resources", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("reads stay open: status = %d", rec.Code)
	}
}
