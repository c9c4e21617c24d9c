package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"clubhouse/internal/resources/service"
	httputil "clubhouse/pkg/http"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/middleware"
	"clubhouse/pkg/model"
)

type ResourceHandler struct {
	service    service.ResourceService
	log        *logger.Logger
	auth       *middleware.Authenticator
	writeRoles []string
}

func NewResourceHandler(service service.ResourceService, log *logger.Logger, auth *middleware.Authenticator, writeRoles []string) *ResourceHandler {
	return &ResourceHandler{
		service:    service,
		log:        log,
		auth:       auth,
		writeRoles: writeRoles,
	}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var res model.Resource
	if err := httputil.DecodeJSON(r, &res); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Create(r.Context(), &res); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, res); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ResourceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, res); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResourceHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	filter := model.ResourceFilter{
		Type:   model.ResourceType(query.Get("type")),
		Status: model.ResourceStatus(query.Get("status")),
		Search: query.Get("search"),
		Limit:  limit,
		Offset: offset,
	}

	resources, totalCount, err := h.service.GetAll(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteList(w, resources, totalCount); err != nil {
		h.log.Error("failed to write list response", "handler", "GetAll", "operation", "WriteList", "error", err)
	}
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ResourceUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, res); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResourceHandler) RegisterRoutes(router *httprouter.Router) {
	write := h.auth.Require(h.writeRoles...)

	router.POST("/api/v1/resources", write(h.Create))
	router.GET("/api/v1/resources", h.GetAll)
	router.GET("/api/v1/resources/:id", h.GetByID)
	router.PATCH("/api/v1/resources/:id", write(h.Update))
}
