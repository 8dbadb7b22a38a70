package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/pkg/httpcontext"
	streakUC "github.com/tasksnap/backend/usecase/streak"
)

type StreakHandler struct {
	baseHandler
	tracker *streakUC.Tracker
}

func NewStreakHandler(tracker *streakUC.Tracker, adapter *httpcontext.Adapter, logger *zap.Logger) *StreakHandler {
	return &StreakHandler{
		baseHandler: newBaseHandler(adapter, logger),
		tracker:     tracker,
	}
}

// GetStreak is the app-foreground check: reading the streak applies the
// calendar expiry rule before returning it.
//
// @Summary Current and longest completion streak
// @Tags streak
// @Router /api/v1/streak [get]
func (h *StreakHandler) GetStreak(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.tracker.Refresh(stdCtx, userID))
}
