package todo

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/todo"
)

// Service — то, что хендлерам нужно от сервиса задач.
type Service interface {
	List(ctx context.Context, user domain.UserID) ([]domain.Todo, error)
	Get(ctx context.Context, id domain.TodoID, user domain.UserID) (domain.Todo, error)
	Create(ctx context.Context, user domain.UserID, title, description string) (domain.Todo, error)
	Update(ctx context.Context, id domain.TodoID, user domain.UserID, p todo.UpdateParams) (domain.Todo, error)
	Delete(ctx context.Context, id domain.TodoID, user domain.UserID) error
}

type Handler struct {
	Log     *log.Logger
	Service Service
}

func idFromPath(r *http.Request) (domain.TodoID, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
