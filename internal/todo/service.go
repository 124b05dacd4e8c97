package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

// Service владеет политикой кеша для списков задач:
// чтение — read-through (промах → база → Set с TTL),
// запись — строго база → инвалидация ключа → событие диспетчеру.
// Порядок (a)→(b)→(c) — инвариант корректности: уведомление не может
// опередить коммит, устаревший снапшот не может пережить инвалидацию.
type Service struct {
	log      *log.Logger
	repo     domain.TodosRepo
	cache    domain.Cache
	notifier domain.Notifier
	ttl      int // секунд
}

func NewService(logger *log.Logger, repo domain.TodosRepo, cache domain.Cache, notifier domain.Notifier, ttlSeconds int) *Service {
	if ttlSeconds <= 0 {
		ttlSeconds = 300
	}
	return &Service{log: logger, repo: repo, cache: cache, notifier: notifier, ttl: ttlSeconds}
}

// Частичное обновление: nil — поле не трогаем.
type UpdateParams struct {
	Title       *string
	Description *string
	Status      *domain.TodoStatus
}

// List возвращает задачи пользователя, новые сверху.
// При попадании в кеш база не трогается вовсе.
func (s *Service) List(ctx context.Context, user domain.UserID) ([]domain.Todo, error) {
	key := domain.CacheKeyUserTodos(user)

	if b, ok := s.cache.Get(ctx, key); ok {
		var todos []domain.Todo
		if err := json.Unmarshal(b, &todos); err == nil {
			return todos, nil
		}
		// битый снапшот — считаем промахом и перечитываем из базы
		s.log.Printf("List: corrupt cache entry %q, falling through", key)
	}

	todos, err := s.repo.TodosByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(todos); err == nil {
		s.cache.Set(ctx, key, b, s.ttl)
	}
	return todos, nil
}

func (s *Service) Get(ctx context.Context, id domain.TodoID, user domain.UserID) (domain.Todo, error) {
	return s.repo.TodoByID(ctx, id, user)
}

func (s *Service) Create(ctx context.Context, user domain.UserID, title, description string) (domain.Todo, error) {
	t, err := s.repo.CreateTodo(ctx, domain.Todo{
		Title:       title,
		Description: description,
		Status:      domain.StatusPending,
		UserID:      user,
	})
	if err != nil {
		return domain.Todo{}, err
	}

	s.cache.Del(ctx, domain.CacheKeyUserTodos(user))

	s.notifier.Dispatch(ctx, domain.TodoEvent{
		UserID:  user,
		TodoID:  t.ID,
		Type:    domain.NotifyTodoCreated,
		Title:   "New task created",
		Message: fmt.Sprintf("Your task %q was created successfully!", t.Title),
	})
	return t, nil
}

// Update применяет частичное обновление. TODO_COMPLETED уходит только
// на переходе pending→completed; повторное сохранение завершённой задачи
// события не порождает. Прочие правки дают TODO_UPDATED.
func (s *Service) Update(ctx context.Context, id domain.TodoID, user domain.UserID, p UpdateParams) (domain.Todo, error) {
	prev, err := s.repo.TodoByID(ctx, id, user)
	if err != nil {
		return domain.Todo{}, err
	}

	next := prev
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Status != nil {
		next.Status = *p.Status
	}

	cur, err := s.repo.UpdateTodo(ctx, next)
	if err != nil {
		return domain.Todo{}, err
	}

	s.cache.Del(ctx, domain.CacheKeyUserTodos(user))

	switch {
	case prev.Status != domain.StatusCompleted && cur.Status == domain.StatusCompleted:
		s.notifier.Dispatch(ctx, domain.TodoEvent{
			UserID:  user,
			TodoID:  cur.ID,
			Type:    domain.NotifyTodoCompleted,
			Title:   "Task completed",
			Message: fmt.Sprintf("Congratulations! You completed the task %q!", cur.Title),
		})
	case prev.Title != cur.Title || prev.Description != cur.Description || prev.Status != cur.Status:
		s.notifier.Dispatch(ctx, domain.TodoEvent{
			UserID:  user,
			TodoID:  cur.ID,
			Type:    domain.NotifyTodoUpdated,
			Title:   "Task updated",
			Message: fmt.Sprintf("Your task %q was updated.", cur.Title),
		})
	}
	return cur, nil
}

// Delete уносит заголовок в событие: после удаления записи его уже
// неоткуда взять.
func (s *Service) Delete(ctx context.Context, id domain.TodoID, user domain.UserID) error {
	prev, err := s.repo.TodoByID(ctx, id, user)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTodo(ctx, id, user); err != nil {
		return err
	}

	s.cache.Del(ctx, domain.CacheKeyUserTodos(user))

	s.notifier.Dispatch(ctx, domain.TodoEvent{
		UserID:  user,
		TodoID:  prev.ID,
		Type:    domain.NotifyTodoDeleted,
		Title:   "Task deleted",
		Message: fmt.Sprintf("Your task %q was deleted.", prev.Title),
	})
	return nil
}
