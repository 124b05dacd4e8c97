// Package client — модель согласования списка задач на стороне клиента.
// Оптимистичные правки применяются сразу, затем либо подтверждаются
// ответом сервера, либо откатываются. Провизорные записи получают
// отрицательные id, чтобы не пересекаться с серверными.
package client

import (
	"sync"
	"time"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

// Patch — частичная правка задачи. nil-поле не трогается.
type Patch struct {
	Title       *string
	Description *string
	Status      *domain.TodoStatus
}

type prevState struct {
	todo domain.Todo
	pos  int
}

type Reconciler struct {
	mu      sync.Mutex
	todos   []domain.Todo
	nextTmp domain.TodoID
	// незавершённые оптимистичные правки, ключ — id задачи
	pending map[domain.TodoID]prevState
}

func NewReconciler() *Reconciler {
	return &Reconciler{
		nextTmp: -1,
		pending: make(map[domain.TodoID]prevState),
	}
}

// Snapshot полностью замещает список серверным ответом.
// Все незавершённые правки при этом считаются разрешёнными.
func (r *Reconciler) Snapshot(todos []domain.Todo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.todos = append(r.todos[:0:0], todos...)
	clear(r.pending)
}

// List возвращает копию текущего списка.
func (r *Reconciler) List() []domain.Todo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(r.todos[:0:0], r.todos...)
}

func (r *Reconciler) indexOf(id domain.TodoID) int {
	for i := range r.todos {
		if r.todos[i].ID == id {
			return i
		}
	}
	return -1
}

// OptimisticCreate вставляет провизорную задачу в начало списка
// и возвращает её временный id.
func (r *Reconciler) OptimisticCreate(title, description string) domain.TodoID {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := r.nextTmp
	r.nextTmp--

	now := time.Now()
	t := domain.Todo{
		ID:          tmp,
		Title:       title,
		Description: description,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.todos = append([]domain.Todo{t}, r.todos...)
	r.pending[tmp] = prevState{pos: 0}
	return tmp
}

// ConfirmCreate заменяет провизорную запись серверной.
func (r *Reconciler) ConfirmCreate(tmp domain.TodoID, server domain.Todo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(tmp)
	if i < 0 {
		return false
	}
	r.todos[i] = server
	delete(r.pending, tmp)
	return true
}

// RollbackCreate убирает провизорную запись (сервер отверг создание).
func (r *Reconciler) RollbackCreate(tmp domain.TodoID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(tmp)
	if i < 0 {
		return false
	}
	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	delete(r.pending, tmp)
	return true
}

// OptimisticUpdate применяет правку локально, запомнив прежнее
// состояние для возможного отката.
func (r *Reconciler) OptimisticUpdate(id domain.TodoID, p Patch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	if _, dup := r.pending[id]; !dup {
		r.pending[id] = prevState{todo: r.todos[i], pos: i}
	}
	if p.Title != nil {
		r.todos[i].Title = *p.Title
	}
	if p.Description != nil {
		r.todos[i].Description = *p.Description
	}
	if p.Status != nil {
		r.todos[i].Status = *p.Status
	}
	r.todos[i].UpdatedAt = time.Now()
	return true
}

// ConfirmUpdate фиксирует серверную версию задачи.
func (r *Reconciler) ConfirmUpdate(server domain.Todo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(server.ID)
	if i < 0 {
		return false
	}
	r.todos[i] = server
	delete(r.pending, server.ID)
	return true
}

// RollbackUpdate возвращает задачу в состояние до оптимистичной правки.
func (r *Reconciler) RollbackUpdate(id domain.TodoID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.pending[id]
	if !ok {
		return false
	}
	if i := r.indexOf(id); i >= 0 {
		r.todos[i] = prev.todo
	}
	delete(r.pending, id)
	return true
}

// OptimisticDelete убирает задачу, запомнив её позицию для отката.
func (r *Reconciler) OptimisticDelete(id domain.TodoID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.pending[id] = prevState{todo: r.todos[i], pos: i}
	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	return true
}

// ConfirmDelete забывает удалённую задачу окончательно.
func (r *Reconciler) ConfirmDelete(id domain.TodoID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[id]; !ok {
		return false
	}
	delete(r.pending, id)
	return true
}

// RollbackDelete возвращает задачу на прежнюю позицию.
func (r *Reconciler) RollbackDelete(id domain.TodoID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.pending[id]
	if !ok {
		return false
	}
	pos := prev.pos
	if pos > len(r.todos) {
		pos = len(r.todos)
	}
	r.todos = append(r.todos[:pos], append([]domain.Todo{prev.todo}, r.todos[pos:]...)...)
	delete(r.pending, id)
	return true
}

// Pending сообщает, есть ли незавершённые оптимистичные правки.
func (r *Reconciler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
