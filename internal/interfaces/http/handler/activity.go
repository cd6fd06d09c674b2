package handler

import (
	"github.com/gin-gonic/gin"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
)

// ActivityHandler exposes the account's audit trail. Entries are read-only.
type ActivityHandler struct {
	BaseHandler
	activityService *activityapp.Service
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *activityapp.Service) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List godoc
// @Summary      List activity
// @Description  Newest first
// @Tags         activity
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Param        search      query string false "Search by entity label or actor"
// @Param        entity_type query string false "Entity type, e.g. invoice"
// @Param        entity_id   query string false "Entity ID" format(uuid)
// @Param        actor_id    query string false "Acting user" format(uuid)
// @Param        action      query string false "Action, e.g. CONFIRM"
// @Param        date_from   query string false "On or after (YYYY-MM-DD)"
// @Param        date_to     query string false "On or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]activityapp.ActivityLogResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /activity-logs [get]
func (h *ActivityHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter activityapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.EntityID, ok = h.queryUUID(c, "entity_id"); !ok {
		return
	}
	if filter.ActorID, ok = h.queryUUID(c, "actor_id"); !ok {
		return
	}

	entries, total, err := h.activityService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Get an activity entry
// @Tags         activity
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=activityapp.ActivityLogResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /activity-logs/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "activity")
	if !ok {
		return
	}

	entry, err := h.activityService.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
