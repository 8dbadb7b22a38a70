package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/api/transport"
	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/pkg/httpcontext"
	spaceUC "github.com/tasksnap/backend/usecase/space"
)

type SpaceHandler struct {
	baseHandler
	uc *spaceUC.UseCase
}

func NewSpaceHandler(uc *spaceUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SpaceHandler {
	return &SpaceHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List the caller's shared spaces
// @Tags spaces
// @Router /api/v1/spaces [get]
func (h *SpaceHandler) GetSpaces(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	spaces, err := h.uc.ListSpaces(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, spaces)
}

// @Summary Create a shared space
// @Tags spaces
// @Router /api/v1/spaces [post]
func (h *SpaceHandler) CreateSpace(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.SpaceCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	space, err := h.uc.CreateSpace(stdCtx, userID, req.Name)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, space)
}

// @Summary Invite a user into a space
// @Tags spaces
// @Router /api/v1/spaces/{id}/members [post]
func (h *SpaceHandler) InviteMember(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	spaceID, _ := ctx.UserValue("id").(string)
	if spaceID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing space id", nil))
		return
	}

	var req transport.SpaceInviteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Invite(stdCtx, spaceID, userID, req.UserID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, nil)
}

// @Summary List members of a space
// @Tags spaces
// @Router /api/v1/spaces/{id}/members [get]
func (h *SpaceHandler) GetMembers(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	spaceID, _ := ctx.UserValue("id").(string)
	if spaceID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing space id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	members, err := h.uc.Members(stdCtx, spaceID, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, members)
}
