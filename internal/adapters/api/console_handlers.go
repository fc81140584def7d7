package api

import (
	"errors"
	"net/http"

	"gamefilter/internal/adapters/api/middleware"
	"gamefilter/internal/application/console"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ConsoleRequest is one raw admin command line
type ConsoleRequest struct {
	Command string `json:"command" binding:"required"`
}

// ConsoleResponse carries the operator output of a command
type ConsoleResponse struct {
	Output []string `json:"output"`
}

// ExecConsole godoc
//
//	@Summary		Run an admin command
//	@Description	Executes one console line such as "addip 10.1 30" or "removeban 7656119..." and returns its output
//	@Tags			console
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ConsoleRequest	true	"Command line"
//	@Success		200		{object}	ConsoleResponse
//	@Failure		400		{object}	ConsoleResponse
//	@Router			/console [post]
func (h *Handler) ExecConsole(c *gin.Context) {
	var req ConsoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	subject := ""
	if p := middleware.GetPrincipalFromContext(c); p != nil {
		subject = p.Subject
	}
	log.Info().Str("subject", subject).Str("command", req.Command).Msg("console command via API")

	out, err := h.console.Exec(c.Request.Context(), req.Command)
	if out == nil {
		out = []string{}
	}
	if errors.Is(err, console.ErrUnknownCommand) || errors.Is(err, console.ErrUsage) {
		c.JSON(http.StatusBadRequest, ConsoleResponse{Output: out})
		return
	}
	c.JSON(http.StatusOK, ConsoleResponse{Output: out})
}
