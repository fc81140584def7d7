package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AddressCheckResponse answers whether a connecting address is refused
type AddressCheckResponse struct {
	Address string `json:"address"`
	Banned  bool   `json:"banned"`
}

// IdentityCheckResponse answers a ban or mute check for a player
type IdentityCheckResponse struct {
	ID       string `json:"id"`
	Filtered bool   `json:"filtered"`
}

// CheckAddress godoc
//
//	@Summary		Check an address
//	@Description	Reports whether a connection from addr would be refused. Always false while filterban is off
//	@Tags			admission
//	@Produce		json
//	@Security		BearerAuth
//	@Param			addr	query		string	true	"Peer address, optionally with :port"
//	@Success		200		{object}	AddressCheckResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/admission/address [get]
func (h *Handler) CheckAddress(c *gin.Context) {
	addr := c.Query("addr")
	if addr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "addr query parameter is required"})
		return
	}
	c.JSON(http.StatusOK, AddressCheckResponse{Address: addr, Banned: h.service.IsAddressBanned(addr)})
}

// CheckIdentity godoc
//
//	@Summary		Check a player identity
//	@Description	With ban=true live bans count; with mute=true live mutes whose shadow flag equals shadow count
//	@Tags			admission
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Player identity"
//	@Param			ban		query		bool	false	"Count bans"
//	@Param			mute	query		bool	false	"Count mutes"
//	@Param			shadow	query		bool	false	"Shadow flag mutes must have"
//	@Success		200		{object}	IdentityCheckResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/admission/identity/{id} [get]
func (h *Handler) CheckIdentity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "id must be an unsigned 64-bit integer"})
		return
	}
	wantBan, err1 := strconv.ParseBool(c.DefaultQuery("ban", "false"))
	wantMute, err2 := strconv.ParseBool(c.DefaultQuery("mute", "false"))
	wantShadow, err3 := strconv.ParseBool(c.DefaultQuery("shadow", "false"))
	if err1 != nil || err2 != nil || err3 != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ban, mute and shadow must be booleans"})
		return
	}
	c.JSON(http.StatusOK, IdentityCheckResponse{
		ID:       c.Param("id"),
		Filtered: h.service.IsIdentityFiltered(id, wantBan, wantMute, wantShadow),
	})
}
