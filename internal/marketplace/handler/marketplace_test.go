package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "clubhouse/pkg/errors"
	httputil "clubhouse/pkg/http"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/middleware"
	"clubhouse/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMarketplaceService struct {
	listFunc         func(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int64, error)
	changeStatusFunc func(ctx context.Context, id string, change *model.StatusChange) (*model.MarketplaceItem, error)
	resolveFlagFunc  func(ctx context.Context, id string, resolution *model.FlagResolution) (*model.MarketplaceItem, error)
	bulkFunc         func(ctx context.Context, req *model.BulkStatusChange) (*model.BulkResult, error)
	bulkDeleteFunc   func(ctx context.Context, req *model.BulkDelete) (*model.BulkDeleteResult, error)
	deleteFunc       func(ctx context.Context, id string) error
}

func (m *mockMarketplaceService) Submit(_ context.Context, item *model.MarketplaceItem) (*model.MarketplaceItem, error) {
	item.ID = "new"
	item.Status = model.ItemPending
	return item, nil
}

func (m *mockMarketplaceService) GetByID(_ context.Context, id string) (*model.MarketplaceItem, error) {
	return &model.MarketplaceItem{ID: id}, nil
}

func (m *mockMarketplaceService) Flag(_ context.Context, _ string, report *model.FlagReport) (*model.Flag, error) {
	return &model.Flag{ID: "flag-1", Reason: report.Reason}, nil
}

func (m *mockMarketplaceService) List(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*model.MarketplaceItem{}, 0, nil
}

func (m *mockMarketplaceService) ChangeStatus(ctx context.Context, id string, change *model.StatusChange) (*model.MarketplaceItem, error) {
	if m.changeStatusFunc != nil {
		return m.changeStatusFunc(ctx, id, change)
	}
	return &model.MarketplaceItem{ID: id, Status: change.Status}, nil
}

func (m *mockMarketplaceService) ResolveFlag(ctx context.Context, id string, resolution *model.FlagResolution) (*model.MarketplaceItem, error) {
	if m.resolveFlagFunc != nil {
		return m.resolveFlagFunc(ctx, id, resolution)
	}
	return &model.MarketplaceItem{ID: id}, nil
}

func (m *mockMarketplaceService) Restore(_ context.Context, id string) (*model.MarketplaceItem, error) {
	return &model.MarketplaceItem{ID: id, Status: model.ItemPending}, nil
}

func (m *mockMarketplaceService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockMarketplaceService) BulkTransition(ctx context.Context, req *model.BulkStatusChange) (*model.BulkResult, error) {
	if m.bulkFunc != nil {
		return m.bulkFunc(ctx, req)
	}
	return &model.BulkResult{Succeeded: req.ItemIDs, Failed: []model.BulkFailure{}}, nil
}

func (m *mockMarketplaceService) BulkDelete(ctx context.Context, req *model.BulkDelete) (*model.BulkDeleteResult, error) {
	if m.bulkDeleteFunc != nil {
		return m.bulkDeleteFunc(ctx, req)
	}
	return &model.BulkDeleteResult{DeletedCount: int64(len(req.ItemIDs))}, nil
}

func (m *mockMarketplaceService) Statistics(context.Context) (*model.MarketplaceStatistics, error) {
	return &model.MarketplaceStatistics{Total: 3, ByStatus: map[model.ItemStatus]int64{model.ItemPending: 3}}, nil
}

func serve(t *testing.T, svc *mockMarketplaceService, auth *middleware.Authenticator, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	router := httprouter.New()
	NewMarketplaceHandler(svc, logger.Discard(), auth, []string{"super_admin"}).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func request(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	return httptest.NewRequest(method, target, strings.NewReader(body))
}

func TestView_PassesFilterAndPaginates(t *testing.T) {
	var seen model.ItemFilter
	svc := &mockMarketplaceService{
		listFunc: func(_ context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int64, error) {
			seen = filter
			return []*model.MarketplaceItem{{ID: "a"}}, 12, nil
		},
	}

	rec := serve(t, svc, nil, request(http.MethodGet,
		"/api/v1/marketplace/admin/views/flagged?search=boots&category=footwear&min_price=5&max_price=40&sort=price&desc=true&limit=10&offset=10", ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, model.ViewFlagged, seen.View)
	assert.Equal(t, "boots", seen.Search)
	assert.Equal(t, model.CategoryFootwear, seen.Category)
	require.NotNil(t, seen.MinPrice)
	assert.Equal(t, 5.0, *seen.MinPrice)
	assert.Equal(t, "price", seen.SortBy)
	assert.True(t, seen.SortDesc)
	assert.Equal(t, int64(10), seen.Offset)

	var page model.ItemPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(12), page.Pagination.Total)
	assert.Equal(t, "12", rec.Header().Get(httputil.HeaderTotalCount))
}

func TestView_BadQuery(t *testing.T) {
	rec := serve(t, &mockMarketplaceService{}, nil, request(http.MethodGet, "/api/v1/marketplace/admin/views/all?min_price=cheap", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeStatus_MissingReasonIs422(t *testing.T) {
	svc := &mockMarketplaceService{
		changeStatusFunc: func(context.Context, string, *model.StatusChange) (*model.MarketplaceItem, error) {
			return nil, apperrors.Validation("reason is required when status is rejected", nil)
		},
	}

	rec := serve(t, svc, nil, request(http.MethodPut, "/api/v1/marketplace/admin/items/abc/status", `{"status":"rejected"}`))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeValidation, body.Code)
	assert.Equal(t, "reason is required when status is rejected", body.Error)
}

func TestResolveFlag_AlreadyResolvedIs409(t *testing.T) {
	var got *model.FlagResolution
	svc := &mockMarketplaceService{
		resolveFlagFunc: func(_ context.Context, _ string, resolution *model.FlagResolution) (*model.MarketplaceItem, error) {
			got = resolution
			return nil, apperrors.Conflict("Flag has already been resolved")
		},
	}

	rec := serve(t, svc, nil, request(http.MethodPut, "/api/v1/marketplace/admin/items/abc/resolve-flag",
		`{"flag_id":"f1","action":"action","reject_item":true}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "f1", got.FlagID)
	assert.True(t, got.RejectItem)
}

func TestBulkStatus_ReportsPartialFailure(t *testing.T) {
	svc := &mockMarketplaceService{
		bulkFunc: func(_ context.Context, req *model.BulkStatusChange) (*model.BulkResult, error) {
			return &model.BulkResult{
				Succeeded: req.ItemIDs[1:],
				Failed:    []model.BulkFailure{{ID: req.ItemIDs[0], Error: "Invalid marketplace item ID format"}},
			}, nil
		},
	}

	rec := serve(t, svc, nil, request(http.MethodPut, "/api/v1/marketplace/admin/bulk-status",
		`{"item_ids":["x","a","b"],"status":"approved"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.BulkResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, []string{"a", "b"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "x", result.Failed[0].ID)
}

func TestDeleteRoutes(t *testing.T) {
	rec := serve(t, &mockMarketplaceService{}, nil, request(http.MethodDelete, "/api/v1/marketplace/admin/items/abc", ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, &mockMarketplaceService{}, nil, request(http.MethodDelete, "/api/v1/marketplace/admin/bulk-delete", `{"item_ids":["a","b"]}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var result model.BulkDeleteResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, int64(2), result.DeletedCount)

	svc := &mockMarketplaceService{
		deleteFunc: func(_ context.Context, id string) error {
			return apperrors.NotFoundWithID("Marketplace item", id)
		},
	}
	rec = serve(t, svc, nil, request(http.MethodDelete, "/api/v1/marketplace/admin/items/abc", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicRoutes(t *testing.T) {
	rec := serve(t, &mockMarketplaceService{}, nil, request(http.MethodPost, "/api/v1/marketplace/items",
		`{"title":"Shin guards","category":"equipment","condition":"good","seller_ref":"p1","price":4}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, &mockMarketplaceService{}, nil, request(http.MethodPost, "/api/v1/marketplace/items/abc/flags", `{"reason":"spam"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, &mockMarketplaceService{}, nil, request(http.MethodPost, "/api/v1/marketplace/items/abc/flags", `{"reason":"spam","resolved":true}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "reporters cannot set resolution fields")
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	auth := middleware.NewAuthenticator("secret", logger.Discard())
	sign := func(roles ...string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
			Roles:            roles,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "someone"},
		})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)
		return signed
	}

	rec := serve(t, &mockMarketplaceService{}, auth, request(http.MethodGet, "/api/v1/marketplace/admin/statistics", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := request(http.MethodGet, "/api/v1/marketplace/admin/statistics", "")
	req.Header.Set("Authorization", "Bearer "+sign("coach"))
	rec = serve(t, &mockMarketplaceService{}, auth, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = request(http.MethodGet, "/api/v1/marketplace/admin/statistics", "")
	req.Header.Set("Authorization", "Bearer "+sign("super_admin"))
	rec = serve(t, &mockMarketplaceService{}, auth, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, &mockMarketplaceService{}, auth, request(http.MethodGet, "/api/v1/marketplace/items/abc", ""))
	assert.Equal(t, http.StatusOK, rec.Code, "item reads stay public")
}
