package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/application/favorites"
	"github.com/baechuer/esemenyrendezo/internal/infrastructure/ical"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/dto"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/middleware"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/response"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/validate"
)

type SavedHandler struct {
	catalog    *catalog.Service
	sessions   *favorites.Sessions
	reconciler *favorites.Reconciler
	clock      Clock
	loc        *time.Location
}

func NewSavedHandler(c *catalog.Service, s *favorites.Sessions, rec *favorites.Reconciler, clock Clock, loc *time.Location) *SavedHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SavedHandler{catalog: c, sessions: s, reconciler: rec, clock: clock, loc: loc}
}

// List renders the saved-events view and makes it the caller's active view.
func (h *SavedHandler) List(w http.ResponseWriter, r *http.Request) {
	v, err := h.sessions.OpenSaved(r.Context(), middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.FromView(v))
}

func (h *SavedHandler) Put(w http.ResponseWriter, r *http.Request) {
	id, err := validate.ID("event_id", chi.URLParam(r, "event_id"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	// saving requires the event to exist; unsaving does not
	if _, err := h.catalog.GetEvent(r.Context(), id); err != nil {
		response.Err(w, r, err)
		return
	}
	if err := h.sessions.Set(r.Context(), middleware.UserID(r), id, true); err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.SavedStateResp{EventID: id, IsSaved: true})
}

func (h *SavedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := validate.ID("event_id", chi.URLParam(r, "event_id"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if err := h.sessions.Set(r.Context(), middleware.UserID(r), id, false); err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.SavedStateResp{EventID: id, IsSaved: false})
}

func (h *SavedHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	month, err := favorites.ParseMonth(r.URL.Query().Get("month"), now, h.loc)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.reconciler.LoadSaved(r.Context(), middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	defer v.Close()

	response.Data(w, http.StatusOK, favorites.BuildMonth(month, v.SavedEvents(), now, h.loc))
}

func (h *SavedHandler) ICS(w http.ResponseWriter, r *http.Request) {
	v, err := h.reconciler.LoadSaved(r.Context(), middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	defer v.Close()

	body := ical.Export("Saved events", v.SavedEvents(), h.clock.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="saved-events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
