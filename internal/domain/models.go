package domain

import "time"

// Базовые идентификаторы (числовые, выдаются базой)
type UserID = int64
type TodoID = int64

// Пользователь
type User struct {
	ID        UserID    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PassHash  []byte    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"createdAt"`
}

// Статус задачи
type TodoStatus string

const (
	StatusPending   TodoStatus = "pending"
	StatusCompleted TodoStatus = "completed"
)

// Задача. Принадлежит ровно одному пользователю;
// все мутации идут через todo.Service (store → invalidate → notify).
type Todo struct {
	ID          TodoID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TodoStatus `json:"status"`
	UserID      UserID     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Тип уведомления
type NotificationType string

const (
	NotifyTodoCreated   NotificationType = "TODO_CREATED"
	NotifyTodoCompleted NotificationType = "TODO_COMPLETED"
	NotifyTodoUpdated   NotificationType = "TODO_UPDATED"
	NotifyTodoDeleted   NotificationType = "TODO_DELETED"
)

// Уведомление. Создаётся диспетчером, одна запись на событие;
// мутируется только флаг Read.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    UserID           `json:"userId"`
	TodoID    TodoID           `json:"todoId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
