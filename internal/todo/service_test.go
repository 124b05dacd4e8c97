package todo

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

// ---- фейки с общим журналом операций (для проверки порядка store→invalidate→notify) ----

type opLog struct{ ops []string }

func (l *opLog) add(op string) { l.ops = append(l.ops, op) }

type fakeRepo struct {
	log    *opLog
	todos  map[domain.TodoID]domain.Todo
	nextID domain.TodoID
	reads  int // количество обращений списка к "базе"

	failWrites bool
}

func newFakeRepo(l *opLog) *fakeRepo {
	return &fakeRepo{log: l, todos: map[domain.TodoID]domain.Todo{}, nextID: 1}
}

func (r *fakeRepo) TodosByUser(_ context.Context, user domain.UserID) ([]domain.Todo, error) {
	r.log.add("store.read")
	r.reads++
	out := make([]domain.Todo, 0)
	// новые сверху: id растут монотонно, идём с конца
	for id := r.nextID - 1; id >= 1; id-- {
		if t, ok := r.todos[id]; ok && t.UserID == user {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepo) TodoByID(_ context.Context, id domain.TodoID, user domain.UserID) (domain.Todo, error) {
	t, ok := r.todos[id]
	if !ok || t.UserID != user {
		return domain.Todo{}, domain.ErrNotFound
	}
	return t, nil
}

func (r *fakeRepo) CreateTodo(_ context.Context, t domain.Todo) (domain.Todo, error) {
	if r.failWrites {
		return domain.Todo{}, errors.New("store down")
	}
	r.log.add("store.write")
	t.ID = r.nextID
	r.nextID++
	r.todos[t.ID] = t
	return t, nil
}

func (r *fakeRepo) UpdateTodo(_ context.Context, t domain.Todo) (domain.Todo, error) {
	if r.failWrites {
		return domain.Todo{}, errors.New("store down")
	}
	prev, ok := r.todos[t.ID]
	if !ok || prev.UserID != t.UserID {
		return domain.Todo{}, domain.ErrNotFound
	}
	r.log.add("store.write")
	r.todos[t.ID] = t
	return t, nil
}

func (r *fakeRepo) DeleteTodo(_ context.Context, id domain.TodoID, user domain.UserID) error {
	t, ok := r.todos[id]
	if !ok || t.UserID != user {
		return domain.ErrNotFound
	}
	r.log.add("store.write")
	delete(r.todos, id)
	return nil
}

type cacheEntry struct {
	val []byte
	ttl int
}

type fakeCache struct {
	log     *opLog
	entries map[string]cacheEntry
}

func newFakeCache(l *opLog) *fakeCache {
	return &fakeCache{log: l, entries: map[string]cacheEntry{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := c.entries[key]
	return e.val, ok
}

func (c *fakeCache) Set(_ context.Context, key string, val []byte, ttlSeconds int) {
	c.log.add("cache.set")
	c.entries[key] = cacheEntry{val: val, ttl: ttlSeconds}
}

func (c *fakeCache) Del(_ context.Context, keys ...string) {
	c.log.add("cache.del")
	for _, k := range keys {
		delete(c.entries, k)
	}
}

func (c *fakeCache) DelPattern(_ context.Context, pattern string) {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func (c *fakeCache) Stats() domain.CacheStats     { return domain.CacheStats{} }
func (c *fakeCache) Ping(_ context.Context) error { return nil }
func (c *fakeCache) Close()                       {}

type fakeNotifier struct {
	log    *opLog
	events []domain.TodoEvent
}

func (n *fakeNotifier) Dispatch(_ context.Context, e domain.TodoEvent) {
	n.log.add("notify")
	n.events = append(n.events, e)
}

func setup() (*Service, *fakeRepo, *fakeCache, *fakeNotifier) {
	l := &opLog{}
	repo := newFakeRepo(l)
	cache := newFakeCache(l)
	notifier := &fakeNotifier{log: l}
	svc := NewService(log.New(io.Discard, "", 0), repo, cache, notifier, 300)
	return svc, repo, cache, notifier
}

// ---- тесты ----

func TestListReadThrough(t *testing.T) {
	svc, repo, cache, _ := setup()
	ctx := context.Background()

	// промах → чтение из базы, пустой список
	todos, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 0 {
		t.Fatalf("expected empty list, got %d", len(todos))
	}
	if repo.reads != 1 {
		t.Fatalf("store reads = %d, want 1", repo.reads)
	}

	// снапшот лёг в кеш с TTL политики
	e, ok := cache.entries[domain.CacheKeyUserTodos(1)]
	if !ok {
		t.Fatal("cache entry missing after read-through")
	}
	if string(e.val) != "[]" {
		t.Fatalf("cached snapshot = %q, want []", e.val)
	}
	if e.ttl != 300 {
		t.Fatalf("ttl = %d, want 300", e.ttl)
	}

	// повторное чтение обслуживается кешем, база не трогается
	if _, err := svc.List(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if repo.reads != 1 {
		t.Fatalf("store reads after cached list = %d, want 1", repo.reads)
	}
}

func TestListReturnsStoreOrder(t *testing.T) {
	svc, _, _, _ := setup()
	ctx := context.Background()

	first, _ := svc.Create(ctx, 1, "first", "")
	second, _ := svc.Create(ctx, 1, "second", "")

	todos, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 2 {
		t.Fatalf("len = %d, want 2", len(todos))
	}
	// новые сверху
	if todos[0].ID != second.ID || todos[1].ID != first.ID {
		t.Fatalf("unexpected order: %d, %d", todos[0].ID, todos[1].ID)
	}
}

func TestWritesInvalidateCache(t *testing.T) {
	svc, _, cache, _ := setup()
	ctx := context.Background()
	key := domain.CacheKeyUserTodos(1)

	created, err := svc.Create(ctx, 1, "Buy milk", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.entries[key]; ok {
		t.Fatal("cache key must be absent after create")
	}

	svc.List(ctx, 1) // прогреваем
	status := domain.StatusCompleted
	if _, err := svc.Update(ctx, created.ID, 1, UpdateParams{Status: &status}); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.entries[key]; ok {
		t.Fatal("cache key must be absent after update")
	}

	svc.List(ctx, 1)
	if err := svc.Delete(ctx, created.ID, 1); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.entries[key]; ok {
		t.Fatal("cache key must be absent after delete")
	}
}

func TestStoreWriteBeforeInvalidateBeforeNotify(t *testing.T) {
	svc, repo, _, _ := setup()
	l := repo.log
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, "ordered", ""); err != nil {
		t.Fatal(err)
	}

	want := []string{"store.write", "cache.del", "notify"}
	if len(l.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", l.ops, want)
	}
	for i := range want {
		if l.ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", l.ops, want)
		}
	}
}

func TestStoreFailureEmitsNothing(t *testing.T) {
	svc, repo, cache, notifier := setup()
	ctx := context.Background()

	svc.List(ctx, 1) // прогреваем кеш
	repo.failWrites = true

	if _, err := svc.Create(ctx, 1, "doomed", ""); err == nil {
		t.Fatal("expected store failure to surface")
	}
	if len(notifier.events) != 0 {
		t.Fatalf("no notification must be dispatched on failed write, got %v", notifier.events)
	}
	// кеш не инвалидируется: записи в базе не было
	if _, ok := cache.entries[domain.CacheKeyUserTodos(1)]; !ok {
		t.Fatal("cache entry should survive a failed store write")
	}
}

func TestCompletionTransition(t *testing.T) {
	svc, _, _, notifier := setup()
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, "pending task", "")
	notifier.events = nil

	completed := domain.StatusCompleted
	if _, err := svc.Update(ctx, created.ID, 1, UpdateParams{Status: &completed}); err != nil {
		t.Fatal(err)
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != domain.NotifyTodoCompleted {
		t.Fatalf("expected exactly one TODO_COMPLETED, got %v", notifier.events)
	}

	// повторное завершение — идемпотентно, событий нет
	notifier.events = nil
	if _, err := svc.Update(ctx, created.ID, 1, UpdateParams{Status: &completed}); err != nil {
		t.Fatal(err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("re-completing must emit nothing, got %v", notifier.events)
	}
}

func TestFieldEditEmitsUpdated(t *testing.T) {
	svc, _, _, notifier := setup()
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, "old title", "")
	notifier.events = nil

	title := "new title"
	if _, err := svc.Update(ctx, created.ID, 1, UpdateParams{Title: &title}); err != nil {
		t.Fatal(err)
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != domain.NotifyTodoUpdated {
		t.Fatalf("expected one TODO_UPDATED, got %v", notifier.events)
	}

	// правка заголовка у уже завершённой задачи не даёт TODO_COMPLETED
	completed := domain.StatusCompleted
	svc.Update(ctx, created.ID, 1, UpdateParams{Status: &completed})
	notifier.events = nil

	title2 := "renamed after completion"
	svc.Update(ctx, created.ID, 1, UpdateParams{Title: &title2, Status: &completed})
	if len(notifier.events) != 1 || notifier.events[0].Type != domain.NotifyTodoUpdated {
		t.Fatalf("expected one TODO_UPDATED, got %v", notifier.events)
	}
}

func TestCreateEmitsCreated(t *testing.T) {
	svc, repo, cache, notifier := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, "Buy milk", "")
	if err != nil {
		t.Fatal(err)
	}

	if len(repo.todos) != 1 {
		t.Fatalf("store records = %d, want 1", len(repo.todos))
	}
	if _, ok := cache.entries[domain.CacheKeyUserTodos(1)]; ok {
		t.Fatal("cache key for owner must be absent")
	}
	if len(notifier.events) != 1 {
		t.Fatalf("events = %v, want one", notifier.events)
	}
	e := notifier.events[0]
	if e.Type != domain.NotifyTodoCreated || e.TodoID != created.ID || e.UserID != 1 {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestDeleteCarriesTitle(t *testing.T) {
	svc, _, _, notifier := setup()
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, "ephemeral", "")
	notifier.events = nil

	if err := svc.Delete(ctx, created.ID, 1); err != nil {
		t.Fatal(err)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("events = %v, want one", notifier.events)
	}
	e := notifier.events[0]
	if e.Type != domain.NotifyTodoDeleted {
		t.Fatalf("type = %s, want TODO_DELETED", e.Type)
	}
	if !strings.Contains(e.Message, "ephemeral") {
		t.Fatalf("deleted event must carry the title, got %q", e.Message)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _, _, _ := setup()
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, "mine", "")

	// чужая задача неотличима от несуществующей
	if _, err := svc.Get(ctx, created.ID, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, created.ID, 2, UpdateParams{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, created.ID, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCorruptCacheEntryFallsThrough(t *testing.T) {
	svc, repo, cache, _ := setup()
	ctx := context.Background()

	svc.Create(ctx, 1, "real", "")
	cache.entries[domain.CacheKeyUserTodos(1)] = cacheEntry{val: []byte("{not json"), ttl: 300}

	todos, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 1 || todos[0].Title != "real" {
		t.Fatalf("expected re-hydrated list from store, got %v", todos)
	}
	if repo.reads != 1 {
		t.Fatalf("store reads = %d, want 1", repo.reads)
	}
}
