package todo

import (
	"encoding/json"
	"net/http"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/todo"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/logx"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/mw"
	v1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1"
)

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Update godoc
// @Summary     Update task
// @Description Частичное обновление. Переход pending→completed даёт TODO_COMPLETED, прочие правки — TODO_UPDATED.
// @Tags        todos
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "task id"
// @Param       request body updateRequest true "title, description, status — все опциональны"
// @Success     200 {object} domain.APIEnvelope{response=domain.Todo}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/todos/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "todo.update"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	p := todo.UpdateParams{Title: req.Title, Description: req.Description}
	if req.Status != nil {
		st := domain.TodoStatus(*req.Status)
		if st != domain.StatusPending && st != domain.StatusCompleted {
			logx.Error(h.Log, reqID, op, "bad status", domain.ErrBadParams, "status", *req.Status)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
		p.Status = &st
	}

	t, err := h.Service.Update(r.Context(), id, me.ID, p)
	if err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "todo_id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "todo_id", t.ID, "status", t.Status)
	v1.WriteOKResponse(w, r, t)
}
