package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"clubhouse/internal/marketplace/service"
	httputil "clubhouse/pkg/http"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/middleware"
	"clubhouse/pkg/model"
)

const adminPrefix = "/api/v1/marketplace/admin"

type MarketplaceHandler struct {
	service    service.MarketplaceService
	log        *logger.Logger
	auth       *middleware.Authenticator
	adminRoles []string
}

func NewMarketplaceHandler(service service.MarketplaceService, log *logger.Logger, auth *middleware.Authenticator, adminRoles []string) *MarketplaceHandler {
	return &MarketplaceHandler{
		service:    service,
		log:        log,
		auth:       auth,
		adminRoles: adminRoles,
	}
}

func (h *MarketplaceHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var item model.MarketplaceItem
	if err := httputil.DecodeJSON(r, &item); err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.Submit(r.Context(), &item)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *MarketplaceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	item, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) Flag(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var report model.FlagReport
	if err := httputil.DecodeJSON(r, &report); err != nil {
		httputil.WriteError(w, err)
		return
	}

	flag, err := h.service.Flag(r.Context(), ps.ByName("id"), &report)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, flag); err != nil {
		h.log.Error("failed to write created response", "handler", "Flag", "operation", "WriteCreated", "error", err)
	}
}

// View serves one moderation queue as {items, pagination}.
func (h *MarketplaceHandler) View(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	minPrice, err := httputil.QueryFloat(r, "min_price")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	maxPrice, err := httputil.QueryFloat(r, "max_price")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	desc, err := httputil.QueryBool(r, "desc")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	filter := model.ItemFilter{
		View:      model.ModerationView(ps.ByName("view")),
		Search:    query.Get("search"),
		Category:  model.ItemCategory(query.Get("category")),
		Condition: model.ItemCondition(query.Get("condition")),
		Status:    model.ItemStatus(query.Get("status")),
		SellerRef: query.Get("seller_ref"),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		SortBy:    query.Get("sort"),
		SortDesc:  desc,
		Limit:     limit,
		Offset:    offset,
	}

	items, totalCount, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page := model.ItemPage{
		Items:      items,
		Pagination: model.Pagination{Total: totalCount, Limit: limit, Offset: offset},
	}
	w.Header().Set(httputil.HeaderTotalCount, strconv.FormatInt(totalCount, 10))
	if err := httputil.WriteSuccess(w, page); err != nil {
		h.log.Error("failed to write success response", "handler", "View", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) Statistics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Statistics", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) ChangeStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var change model.StatusChange
	if err := httputil.DecodeJSON(r, &change); err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.service.ChangeStatus(r.Context(), ps.ByName("id"), &change)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "ChangeStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) ResolveFlag(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var resolution model.FlagResolution
	if err := httputil.DecodeJSON(r, &resolution); err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.service.ResolveFlag(r.Context(), ps.ByName("id"), &resolution)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "ResolveFlag", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) Restore(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	item, err := h.service.Restore(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "Restore", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"id": id}); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) BulkStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BulkStatusChange
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.BulkTransition(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "BulkStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) BulkDelete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BulkDelete
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.BulkDelete(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "BulkDelete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MarketplaceHandler) RegisterRoutes(router *httprouter.Router) {
	admin := h.auth.Require(h.adminRoles...)

	router.POST("/api/v1/marketplace/items", h.Submit)
	router.GET("/api/v1/marketplace/items/:id", h.GetByID)
	router.POST("/api/v1/marketplace/items/:id/flags", h.Flag)

	router.GET(adminPrefix+"/views/:view", admin(h.View))
	router.GET(adminPrefix+"/statistics", admin(h.Statistics))
	router.PUT(adminPrefix+"/items/:id/status", admin(h.ChangeStatus))
	router.PUT(adminPrefix+"/items/:id/resolve-flag", admin(h.ResolveFlag))
	router.PUT(adminPrefix+"/items/:id/restore", admin(h.Restore))
	router.DELETE(adminPrefix+"/items/:id", admin(h.Delete))
	router.PUT(adminPrefix+"/bulk-status", admin(h.BulkStatus))
	router.DELETE(adminPrefix+"/bulk-delete", admin(h.BulkDelete))
}
