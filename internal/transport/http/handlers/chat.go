package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/baechuer/esemenyrendezo/internal/application/chat"
	"github.com/baechuer/esemenyrendezo/internal/domain"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/dto"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/middleware"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/response"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/validate"
)

type ChatHandler struct {
	svc *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func (h *ChatHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Err(w, r, domain.ErrValidationMeta("invalid query param", map[string]string{
				"limit": "must be a non-negative integer",
			}))
			return
		}
		limit = n
	}
	msgs, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.FromChatMessages(msgs))
}

func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostChatReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.Err(w, r, domain.ErrValidation("invalid json body"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.Err(w, r, err)
		return
	}
	m, err := h.svc.Post(r.Context(), middleware.UserID(r), req.Text)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.FromChatMessage(m))
}
