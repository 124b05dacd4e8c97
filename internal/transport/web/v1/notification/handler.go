// Package notification — история уведомлений пользователя.
package notification

import (
	"log"
	"net/http"
	"strconv"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/logx"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/mw"
	v1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1"
)

type Handler struct {
	Log  *log.Logger
	Repo domain.NotificationsRepo
}

// List godoc
// @Summary     List notifications
// @Description Уведомления пользователя, новые сверху.
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=[]domain.Notification}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "notification.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	list, err := h.Repo.NotificationsByUser(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	v1.WriteOKData(w, r, list)
}

// MarkRead godoc
// @Summary     Mark notification as read
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "notification id"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/notifications/{id}/read [patch]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	const op = "notification.markread"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	if err := h.Repo.MarkNotificationRead(r.Context(), id, me.ID); err != nil {
		logx.Error(h.Log, reqID, op, "mark read failed", err, "notification_id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "notification_id", id)
	v1.WriteOKResponse(w, r, map[string]string{"message": "notification read"})
}
