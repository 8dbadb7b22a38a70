package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/pkg/httpcontext"
	achievementUC "github.com/tasksnap/backend/usecase/achievement"
	"github.com/tasksnap/backend/usecase/board"
	streakUC "github.com/tasksnap/backend/usecase/streak"
)

type AchievementHandler struct {
	baseHandler
	evaluator *achievementUC.Evaluator
	store     *board.Store
	tracker   *streakUC.Tracker
}

func NewAchievementHandler(
	evaluator *achievementUC.Evaluator,
	store *board.Store,
	tracker *streakUC.Tracker,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *AchievementHandler {
	return &AchievementHandler{
		baseHandler: newBaseHandler(adapter, logger),
		evaluator:   evaluator,
		store:       store,
		tracker:     tracker,
	}
}

// @Summary Badge sheet with progress and unlock timestamps
// @Tags achievements
// @Router /api/v1/achievements [get]
func (h *AchievementHandler) GetAchievements(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats := h.store.Stats(stdCtx, userID)
	streak := h.tracker.Current(stdCtx, userID)
	stats.CurrentStreak = streak.Current
	stats.LongestStreak = streak.Longest

	h.respondSuccess(ctx, http.StatusOK, h.evaluator.List(stdCtx, userID, stats))
}
