package realtime

import (
	"sync"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

// Registry — процессный реестр присутствия: кто из пользователей сейчас
// держит открытое соединение и каким connection id оно обозначено.
// Ровно одна запись на пользователя: повторный хендшейк перетирает
// предыдущую (last-connection-wins). Создаётся один раз на процесс и
// внедряется в хаб и диспетчер — никаких глобалов.
type Registry struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]string
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[domain.UserID]string)}
}

// Put регистрирует соединение пользователя, перетирая прежнее.
func (r *Registry) Put(user domain.UserID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[user] = connID
}

// Remove снимает запись, только если она всё ещё указывает на это
// соединение: запоздавший disconnect старого сокета не должен затереть
// запись более нового.
func (r *Registry) Remove(user domain.UserID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byUser[user] == connID {
		delete(r.byUser, user)
	}
}

func (r *Registry) ConnID(user domain.UserID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[user]
	return id, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
