package handlers

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/application/favorites"
	"github.com/baechuer/esemenyrendezo/internal/domain"
	"github.com/baechuer/esemenyrendezo/internal/infrastructure/storage"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/dto"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/middleware"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/response"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/validate"
)

type Clock interface{ Now() time.Time }

type EventsHandler struct {
	catalog       *catalog.Service
	sessions      *favorites.Sessions
	loc           *time.Location
	maxImageBytes int64
}

func NewEventsHandler(c *catalog.Service, s *favorites.Sessions, loc *time.Location, maxImageBytes int64) *EventsHandler {
	if loc == nil {
		loc = time.UTC
	}
	if maxImageBytes <= 0 {
		maxImageBytes = 10 << 20
	}
	return &EventsHandler{catalog: c, sessions: s, loc: loc, maxImageBytes: maxImageBytes}
}

// List renders the catalog view. Signed-in callers get is_saved per row and
// the view becomes their active one.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := catalog.ParseListFilter(q.Get("date"), q.Get("time"), q.Get("location"), q.Get("name"), h.loc)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	v, err := h.sessions.Open(r.Context(), middleware.UserID(r), f)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.FromView(v))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validate.ID("event_id", chi.URLParam(r, "event_id"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	e, err := h.catalog.GetEvent(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.FromEvent(e))
}

// Create accepts JSON, or multipart/form-data with an optional "image" file.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		cmd catalog.CreateCmd
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		cmd, err = h.parseMultipart(w, r)
	} else {
		cmd, err = parseCreateJSON(r)
	}
	if err != nil {
		response.Err(w, r, err)
		return
	}
	cmd.ActorID = middleware.UserID(r)

	e, err := h.catalog.Create(r.Context(), cmd)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.FromEvent(e))
}

func parseCreateJSON(r *http.Request) (catalog.CreateCmd, error) {
	var req dto.CreateEventReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		return catalog.CreateCmd{}, err
	}
	if err := validate.Struct(&req); err != nil {
		return catalog.CreateCmd{}, err
	}
	return catalog.CreateCmd{
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		StartTime:   req.StartTime,
		ImageURL:    req.ImageURL,
	}, nil
}

func (h *EventsHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (catalog.CreateCmd, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxImageBytes + (1 << 20)); err != nil {
		return catalog.CreateCmd{}, domain.ErrValidation("invalid multipart body")
	}

	req := dto.CreateEventReq{
		Title:       r.FormValue("title"),
		Location:    r.FormValue("location"),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("start_time")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return catalog.CreateCmd{}, domain.ErrValidationMeta("invalid request", map[string]string{
				"start_time": "must be RFC3339 timestamp",
			})
		}
		req.StartTime = t
	}
	if err := validate.Struct(&req); err != nil {
		return catalog.CreateCmd{}, err
	}
	cmd := catalog.CreateCmd{
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		StartTime:   req.StartTime,
	}

	file, _, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return cmd, nil
	}
	if err != nil {
		return catalog.CreateCmd{}, domain.ErrValidation("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		return catalog.CreateCmd{}, domain.ErrValidation("invalid image upload")
	}
	img, err := storage.PrepareImage(data, h.maxImageBytes)
	if err != nil {
		return catalog.CreateCmd{}, err
	}
	cmd.Image = img
	return cmd, nil
}

// Favorite toggles the saved flag on the caller's active view. A rolled back
// toggle reports the store error; the view already shows the restored state.
func (h *EventsHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, err := validate.ID("event_id", chi.URLParam(r, "event_id"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	res, err := h.sessions.Toggle(r.Context(), middleware.UserID(r), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.FromToggle(res))
}
