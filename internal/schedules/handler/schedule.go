package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"clubhouse/internal/schedules/service"
	httputil "clubhouse/pkg/http"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/middleware"
	"clubhouse/pkg/model"
)

type ScheduleHandler struct {
	service    service.ScheduleService
	log        *logger.Logger
	auth       *middleware.Authenticator
	writeRoles []string
}

func NewScheduleHandler(service service.ScheduleService, log *logger.Logger, auth *middleware.Authenticator, writeRoles []string) *ScheduleHandler {
	return &ScheduleHandler{
		service:    service,
		log:        log,
		auth:       auth,
		writeRoles: writeRoles,
	}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var entry model.ScheduleEntry
	if err := httputil.DecodeJSON(r, &entry); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Schedule(r.Context(), &entry)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ScheduleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entry, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, entry); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	filter := model.ScheduleFilter{
		Date:       query.Get("date"),
		From:       query.Get("from"),
		To:         query.Get("to"),
		Team:       query.Get("team"),
		ResourceID: query.Get("resource_id"),
		Type:       model.ActivityType(query.Get("type")),
		Status:     model.ScheduleStatus(query.Get("status")),
		Limit:      limit,
		Offset:     offset,
	}

	entries, totalCount, err := h.service.GetAll(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteList(w, entries, totalCount); err != nil {
		h.log.Error("failed to write list response", "handler", "GetAll", "operation", "WriteList", "error", err)
	}
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ScheduleEntryUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Reschedule(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ScheduleHandler) PreviewConflicts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var candidate model.ScheduleEntry
	if err := httputil.DecodeJSON(r, &candidate); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.PreviewConflicts(r.Context(), &candidate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "PreviewConflicts", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Conflicts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.ConflictsFor(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Conflicts", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	write := h.auth.Require(h.writeRoles...)

	router.POST("/api/v1/schedules", write(h.Create))
	router.GET("/api/v1/schedules", h.GetAll)
	router.POST("/api/v1/schedules/conflicts", h.PreviewConflicts)
	router.GET("/api/v1/schedules/:id", h.GetByID)
	router.PUT("/api/v1/schedules/:id", write(h.Update))
	router.DELETE("/api/v1/schedules/:id", write(h.Delete))
	router.GET("/api/v1/schedules/:id/conflicts", h.Conflicts)
}
