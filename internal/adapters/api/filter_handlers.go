package api

import (
	"context"
	"net/http"
	"strconv"

	"gamefilter/internal/domain/filter"

	"github.com/gin-gonic/gin"
)

// EntryResponse is one live filter slot
type EntryResponse struct {
	Slot             int      `json:"slot"`
	Kind             string   `json:"kind"`
	Pattern          string   `json:"pattern,omitempty"`
	ID               string   `json:"id,omitempty"`
	Mute             bool     `json:"mute"`
	ShadowMute       bool     `json:"shadow_mute"`
	RemainingMinutes *float64 `json:"remaining_minutes,omitempty"`
}

// FilterListResponse is the listip view of the filter list
type FilterListResponse struct {
	FilterBan bool            `json:"filterban"`
	Capacity  int             `json:"capacity"`
	Entries   []EntryResponse `json:"entries"`
}

// AddIPRequest adds an address pattern
type AddIPRequest struct {
	Pattern string   `json:"pattern" binding:"required"`
	Minutes *float64 `json:"minutes"`
}

// BanRequest bans a player identity. IDs are decimal strings so 64-bit
// values survive JSON clients that use doubles.
type BanRequest struct {
	ID      string   `json:"id" binding:"required"`
	Minutes *float64 `json:"minutes"`
}

// MuteRequest mutes a player identity
type MuteRequest struct {
	ID      string   `json:"id" binding:"required"`
	Shadow  bool     `json:"shadow"`
	Minutes *float64 `json:"minutes"`
}

// FilterBanRequest toggles address filtering
type FilterBanRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// RemovedResponse reports how many entries a removal deleted
type RemovedResponse struct {
	Removed int `json:"removed"`
}

func toEntryResponse(l filter.Listing) EntryResponse {
	e := EntryResponse{
		Slot:             l.Slot,
		Kind:             l.Entry.Kind.String(),
		Mute:             l.Entry.Mute,
		ShadowMute:       l.Entry.ShadowMute,
		RemainingMinutes: l.Remaining,
	}
	switch l.Entry.Kind {
	case filter.KindAddress:
		e.Pattern = filter.FormatOctets(l.Entry.Compare)
	case filter.KindIdentity:
		e.ID = strconv.FormatUint(l.Entry.ID, 10)
	}
	return e
}

// parseIdentity reads a 64-bit identity from a request. Zero and
// unparsable values both yield ErrZeroIdentity.
func parseIdentity(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, filter.ErrZeroIdentity
	}
	return id, nil
}

// parseThreshold reads the optional ?threshold= minutes query parameter.
func parseThreshold(c *gin.Context) (*float64, bool) {
	raw, ok := c.GetQuery("threshold")
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || filter.CheckMinutes(v) != nil {
		return nil, false
	}
	return &v, true
}

// ListFilters godoc
//
//	@Summary		List filters
//	@Description	Live, non-expired entries with remaining minutes (listip)
//	@Tags			filters
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	FilterListResponse
//	@Router			/filters [get]
func (h *Handler) ListFilters(c *gin.Context) {
	listing := h.service.ListIP()
	resp := FilterListResponse{
		FilterBan: h.service.FilterBan(),
		Capacity:  filter.MaxEntries,
		Entries:   make([]EntryResponse, 0, len(listing)),
	}
	for _, l := range listing {
		resp.Entries = append(resp.Entries, toEntryResponse(l))
	}
	c.JSON(http.StatusOK, resp)
}

// WriteFilters godoc
//
//	@Summary		Write filters
//	@Description	Persist the current filter list (writeip)
//	@Tags			filters
//	@Produce		json
//	@Security		BearerAuth
//	@Success		204
//	@Failure		500	{object}	ErrorResponse
//	@Router			/filters/write [post]
func (h *Handler) WriteFilters(c *gin.Context) {
	if err := h.service.WriteIP(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetFilterBan godoc
//
//	@Summary		Toggle address filtering
//	@Description	Sets the filterban flag; while off no address is refused
//	@Tags			filters
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		FilterBanRequest	true	"New flag value"
//	@Success		200		{object}	map[string]bool
//	@Failure		400		{object}	ErrorResponse
//	@Router			/filters/filterban [put]
func (h *Handler) SetFilterBan(c *gin.Context) {
	var req FilterBanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.service.SetFilterBan(c.Request.Context(), *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filterban": *req.Enabled})
}

// AddIP godoc
//
//	@Summary		Add an address filter
//	@Description	Adds a dotted address pattern; zero or missing octets are wildcards (addip)
//	@Tags			filters
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body	AddIPRequest	true	"Pattern and optional minutes"
//	@Success		201
//	@Failure		400	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/filters/ip [post]
func (h *Handler) AddIP(c *gin.Context) {
	var req AddIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.service.AddIP(c.Request.Context(), req.Pattern, req.Minutes); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// RemoveIP godoc
//
//	@Summary		Remove an address filter
//	@Description	Removes the entry added with exactly this pattern (removeip)
//	@Tags			filters
//	@Security		BearerAuth
//	@Param			pattern	path	string	true	"Address pattern"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/filters/ip/{pattern} [delete]
func (h *Handler) RemoveIP(c *gin.Context) {
	if err := h.service.RemoveIP(c.Request.Context(), c.Param("pattern")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Ban godoc
//
//	@Summary		Ban a player
//	@Description	Bans a 64-bit player identity, optionally for a number of minutes
//	@Tags			identities
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	BanRequest	true	"Identity and optional minutes"
//	@Success		201
//	@Failure		400	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/bans [post]
func (h *Handler) Ban(c *gin.Context) {
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	id, err := parseIdentity(req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.service.Ban(c.Request.Context(), id, req.Minutes); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// Mute godoc
//
//	@Summary		Mute a player
//	@Description	Adds a visible or shadow mute for a 64-bit player identity
//	@Tags			identities
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	MuteRequest	true	"Identity, shadow flag and optional minutes"
//	@Success		201
//	@Failure		400	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/mutes [post]
func (h *Handler) Mute(c *gin.Context) {
	var req MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	id, err := parseIdentity(req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.service.Mute(c.Request.Context(), id, req.Shadow, req.Minutes); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// RemoveBan godoc
//
//	@Summary		Remove bans
//	@Description	Removes bans for an identity. With threshold, permanent bans and bans with more minutes left are kept
//	@Tags			identities
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Player identity"
//	@Param			threshold	query		number	false	"Only remove bans with at most this many minutes left"
//	@Success		200			{object}	RemovedResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/bans/{id} [delete]
func (h *Handler) RemoveBan(c *gin.Context) {
	h.removeIdentity(c, h.service.RemoveBan)
}

// RemoveMute godoc
//
//	@Summary		Remove mutes
//	@Description	Removes mutes for an identity, honoring threshold like ban removal
//	@Tags			identities
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Player identity"
//	@Param			threshold	query		number	false	"Only remove mutes with at most this many minutes left"
//	@Success		200			{object}	RemovedResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/mutes/{id} [delete]
func (h *Handler) RemoveMute(c *gin.Context) {
	h.removeIdentity(c, h.service.RemoveMute)
}

func (h *Handler) removeIdentity(c *gin.Context, remove func(ctx context.Context, id uint64, threshold *float64) (int, error)) {
	id, err := parseIdentity(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	threshold, ok := parseThreshold(c)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "threshold must be a number of minutes"})
		return
	}
	n, err := remove(c.Request.Context(), id, threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RemovedResponse{Removed: n})
}
