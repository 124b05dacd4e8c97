package domain

import "context"

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	// Уникальность email — на уровне базы; дубликат → ErrConflict.
	CreateUser(ctx context.Context, email, name string, passHash []byte) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
}

// Владение проверяется предикатом запроса (id, user_id), а не пост-фактум:
// чужая задача неотличима от несуществующей → ErrNotFound.
type TodosRepo interface {
	// Список задач пользователя, по created_at DESC.
	TodosByUser(ctx context.Context, user UserID) ([]Todo, error)
	TodoByID(ctx context.Context, id TodoID, user UserID) (Todo, error)
	CreateTodo(ctx context.Context, t Todo) (Todo, error)
	UpdateTodo(ctx context.Context, t Todo) (Todo, error)
	DeleteTodo(ctx context.Context, id TodoID, user UserID) error
}

type NotificationsRepo interface {
	CreateNotification(ctx context.Context, n Notification) (Notification, error)
	// По created_at DESC.
	NotificationsByUser(ctx context.Context, user UserID) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id int64, user UserID) error
}
