package api

import (
	"errors"
	"net/http"
	"time"

	domainAuth "gamefilter/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

// TokenRequest carries the admin credentials
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse contains a signed admin token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken godoc
//
//	@Summary		Issue an admin token
//	@Description	Exchange the admin password for a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TokenRequest	true	"Admin credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/token [post]
func (h *Handler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	token, exp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domainAuth.ErrAuthDisabled):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authentication is not enabled"})
		case errors.Is(err, domainAuth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token, ExpiresAt: exp})
}
