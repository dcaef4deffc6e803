package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hub-activity-api/internal/application/badge"
	"github.com/hub-activity-api/internal/application/poller"
	"github.com/hub-activity-api/internal/transport/http/middleware"
)

// sessionDropper releases per-(hub,user) feed session state.
type sessionDropper interface {
	Drop(hubID, userID string)
}

// BadgeHandler serves badge snapshots and manages poller sessions.
type BadgeHandler struct {
	svc    badge.Service
	poller *poller.Poller
	feed   sessionDropper
}

func NewBadgeHandler(svc badge.Service, p *poller.Poller, feed sessionDropper) *BadgeHandler {
	return &BadgeHandler{svc: svc, poller: p, feed: feed}
}

// Get returns the poller's latest snapshot when the caller has an active
// watch, falling back to an on-demand refresh.
func (h *BadgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	hubID := chi.URLParam(r, "hubID")

	if counts, ok := h.poller.Snapshot(hubID, claims.UserID); ok {
		writeJSON(w, http.StatusOK, counts)
		return
	}
	counts, err := h.svc.Refresh(r.Context(), hubID, claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *BadgeHandler) Watch(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.poller.Watch(chi.URLParam(r, "hubID"), claims.UserID)
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "watching"})
}

func (h *BadgeHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	hubID := chi.URLParam(r, "hubID")
	h.poller.Unwatch(hubID, claims.UserID)
	// Leaving the hub also ends the feed session: cursors and cached counts
	// must not leak into the next hub the user opens.
	h.feed.Drop(hubID, claims.UserID)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "stopped"})
}
