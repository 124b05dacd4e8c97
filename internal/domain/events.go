package domain

import "context"

// Событие на шине между сервисом задач и диспетчером уведомлений.
type TodoEvent struct {
	UserID  UserID
	TodoID  TodoID
	Type    NotificationType
	Title   string
	Message string
}

// Notifier — единственная способность, которая нужна сервису задач:
// отдать событие диспетчеру. Доставка best-effort, ошибок наружу нет —
// мутация к этому моменту уже зафиксирована в базе.
type Notifier interface {
	Dispatch(ctx context.Context, e TodoEvent)
}
