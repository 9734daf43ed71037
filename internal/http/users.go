package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/service"
)

func (h *Handler) register(ctx *gin.Context) {
	var req registerRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	user, err := h.users.Register(ctx.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
	})
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    newUserResponse(user),
	})
}

func (h *Handler) login(ctx *gin.Context) {
	var req loginRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	pair, err := h.auth.Login(ctx.Request.Context(), req.identifier(), req.Password)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, pair)
}

func (h *Handler) logout(ctx *gin.Context) {
	var req logoutRequest
	// The body is optional: a bare POST only revokes the access token.
	if ctx.Request.ContentLength != 0 {
		if err := bindJSON(ctx, &req); err != nil {
			h.writeError(ctx, err)
			return
		}
	}

	if err := h.auth.Logout(ctx.Request.Context(), callerFrom(ctx), req.Refresh); err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusResetContent)
}

func (h *Handler) me(ctx *gin.Context) {
	caller := callerFrom(ctx)
	user, err := h.users.GetByID(ctx.Request.Context(), caller.UserID)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) updateMe(ctx *gin.Context) {
	var req updateMeRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	user, err := h.users.UpdateEmail(ctx.Request.Context(), callerFrom(ctx), req.Email)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) changePassword(ctx *gin.Context) {
	var req changePasswordRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	err := h.users.ChangePassword(ctx.Request.Context(), callerFrom(ctx), req.OldPassword, req.NewPassword, req.NewPassword2)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) refreshToken(ctx *gin.Context) {
	var req refreshRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	access, err := h.auth.Refresh(ctx.Request.Context(), req.Refresh)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *Handler) verifyToken(ctx *gin.Context) {
	var req verifyRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	if err := h.auth.Verify(ctx.Request.Context(), req.Token); err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}
