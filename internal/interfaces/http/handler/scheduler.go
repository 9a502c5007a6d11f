package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/villahub/backend/internal/infrastructure/scheduler"
)

// SchedulerHandler exposes the auto-billing scheduler's status and a
// manual trigger for operators
type SchedulerHandler struct {
	BaseHandler
	autoBilling *scheduler.AutoBillingScheduler
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(autoBilling *scheduler.AutoBillingScheduler) *SchedulerHandler {
	return &SchedulerHandler{
		autoBilling: autoBilling,
	}
}

// TriggerRunResponse acknowledges a manual scheduler run
type TriggerRunResponse struct {
	Message string `json:"message" example:"Auto-billing run started"`
}

// GetStatus godoc
// @ID           getSchedulerStatus
// @Summary      Get auto-billing scheduler status
// @Description  Returns whether the daily auto-billing loop is running and when it last and next fires
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[any]
// @Security     BearerAuth
// @Router       /system/scheduler/status [get]
func (h *SchedulerHandler) GetStatus(c *gin.Context) {
	h.Success(c, h.autoBilling.GetStatus())
}

// TriggerRun godoc
// @ID           triggerSchedulerRun
// @Summary      Trigger an auto-billing run
// @Description  Run the daily auto-billing pass immediately instead of waiting for the scheduled time
// @Tags         system
// @Produce      json
// @Success      202 {object} APIResponse[TriggerRunResponse]
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /system/scheduler/run [post]
func (h *SchedulerHandler) TriggerRun(c *gin.Context) {
	if err := h.autoBilling.TriggerManualRun(c.Request.Context()); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			h.Conflict(c, "Scheduler is not running")
			return
		}
		h.InternalError(c, err.Error())
		return
	}

	h.Success(c, TriggerRunResponse{Message: "Auto-billing run started"})
}
