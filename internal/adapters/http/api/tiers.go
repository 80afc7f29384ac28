package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// TiersDependencies defines the interface for tier operations.
type TiersDependencies interface {
	Tiers(ctx context.Context) []Tier
	Tier(ctx context.Context, n int) (Tier, error)
}

// TiersHandler handles tier requests.
type TiersHandler struct {
	deps TiersDependencies
}

// NewTiersHandler creates a new tiers handler.
func NewTiersHandler(deps TiersDependencies) *TiersHandler {
	return &TiersHandler{deps: deps}
}

// HandleGetTiers handles GET /tiers requests.
func (h *TiersHandler) HandleGetTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Tiers(r.Context()))
}

// HandleGetTier handles GET /tiers/{tier} requests.
func (h *TiersHandler) HandleGetTier(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_tier"

	raw := pathParam(r, "tier")
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeErr(w, WrapKind(op, ErrBadRequest, fmt.Errorf("tier must be a number, got %q", raw)))
		return
	}
	tier, err := h.deps.Tier(r.Context(), n)
	if err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, tier)
}
