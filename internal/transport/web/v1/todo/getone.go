package todo

import (
	"net/http"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/logx"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/mw"
	v1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1"
)

// GetOne godoc
// @Summary     Get task
// @Description Чужая задача неотличима от несуществующей: 404.
// @Tags        todos
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "task id"
// @Success     200 {object} domain.APIEnvelope{data=domain.Todo}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/todos/{id} [get]
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	const op = "todo.getone"
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

	t, err := h.Service.Get(r.Context(), id, me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "get failed", err, "todo_id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	v1.WriteOKData(w, r, t)
}
