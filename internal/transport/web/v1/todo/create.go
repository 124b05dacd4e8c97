package todo

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/logx"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/mw"
	v1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1"
)

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create godoc
// @Summary     Create task
// @Description Создаёт задачу; кеш списка владельца инвалидируется, уходит TODO_CREATED.
// @Tags        todos
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body createRequest true "title, description"
// @Success     201 {object} domain.APIEnvelope{response=domain.Todo}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/todos [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "todo.create"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		logx.Error(h.Log, reqID, op, "empty title", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	t, err := h.Service.Create(r.Context(), me.ID, req.Title, req.Description)
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "todo_id", t.ID)
	v1.WriteCreated(w, r, t)
}
