package notification

import (
	"context"
	"log"
	"time"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

// Payload — то, что уходит в комнату пользователя событием "notification".
type Payload struct {
	TodoID    domain.TodoID           `json:"todoId"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Timestamp time.Time               `json:"timestamp"`
}

// Channel — единственная способность, нужная диспетчеру от транспорта:
// толкнуть payload в комнату пользователя. Реализация — realtime.Hub.
type Channel interface {
	IsOnline(user domain.UserID) bool
	EmitToUser(user domain.UserID, payload any) bool
}

// Dispatcher превращает доменное событие в запись лога уведомлений и
// best-effort пуш. Модель at-most-once: запись персистится всегда,
// живая доставка не гарантируется — офлайновый пользователь просто
// пропускает алерт, без очередей и догонки. Ошибки здесь никогда не
// доходят до вызывающего: мутация уже зафиксирована.
type Dispatcher struct {
	log     *log.Logger
	repo    domain.NotificationsRepo
	channel Channel
}

func NewDispatcher(logger *log.Logger, repo domain.NotificationsRepo, channel Channel) *Dispatcher {
	return &Dispatcher{log: logger, repo: repo, channel: channel}
}

var _ domain.Notifier = (*Dispatcher)(nil)

func (d *Dispatcher) Dispatch(ctx context.Context, e domain.TodoEvent) {
	// 1) персистим запись безусловно: лог уведомлений не зависит от доставки
	if _, err := d.repo.CreateNotification(ctx, domain.Notification{
		UserID:  e.UserID,
		TodoID:  e.TodoID,
		Type:    e.Type,
		Title:   e.Title,
		Message: e.Message,
	}); err != nil {
		d.log.Printf("persist notification failed user=%d type=%s: %v", e.UserID, e.Type, err)
	}

	// 2) пуш только если пользователь держит соединение
	if !d.channel.IsOnline(e.UserID) {
		d.log.Printf("user=%d offline, skipping push type=%s", e.UserID, e.Type)
		return
	}

	delivered := d.channel.EmitToUser(e.UserID, Payload{
		TodoID:    e.TodoID,
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		Timestamp: time.Now().UTC(),
	})
	if !delivered {
		d.log.Printf("push not delivered user=%d type=%s", e.UserID, e.Type)
		return
	}
	d.log.Printf("pushed user=%d type=%s todo=%d", e.UserID, e.Type, e.TodoID)
}
