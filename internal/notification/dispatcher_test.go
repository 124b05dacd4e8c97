package notification

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

type fakeRepo struct {
	saved   []domain.Notification
	failing bool
}

func (r *fakeRepo) CreateNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	if r.failing {
		return domain.Notification{}, errors.New("insert failed")
	}
	n.ID = int64(len(r.saved) + 1)
	r.saved = append(r.saved, n)
	return n, nil
}

func (r *fakeRepo) NotificationsByUser(_ context.Context, user domain.UserID) ([]domain.Notification, error) {
	out := make([]domain.Notification, 0)
	for _, n := range r.saved {
		if n.UserID == user {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkNotificationRead(_ context.Context, id int64, user domain.UserID) error {
	return nil
}

type fakeChannel struct {
	online  map[domain.UserID]bool
	emitted []any
	refuse  bool
}

func (c *fakeChannel) IsOnline(user domain.UserID) bool { return c.online[user] }

func (c *fakeChannel) EmitToUser(user domain.UserID, payload any) bool {
	if c.refuse {
		return false
	}
	c.emitted = append(c.emitted, payload)
	return true
}

func setup() (*Dispatcher, *fakeRepo, *fakeChannel) {
	repo := &fakeRepo{}
	ch := &fakeChannel{online: map[domain.UserID]bool{}}
	d := NewDispatcher(log.New(io.Discard, "", 0), repo, ch)
	return d, repo, ch
}

func event() domain.TodoEvent {
	return domain.TodoEvent{
		UserID:  1,
		TodoID:  42,
		Type:    domain.NotifyTodoCreated,
		Title:   "New task created",
		Message: `Your task "Buy milk" was created successfully!`,
	}
}

func TestDispatchPersistsAndPushes(t *testing.T) {
	d, repo, ch := setup()
	ch.online[1] = true

	d.Dispatch(context.Background(), event())

	if len(repo.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(repo.saved))
	}
	n := repo.saved[0]
	if n.Type != domain.NotifyTodoCreated || n.TodoID != 42 || n.Read {
		t.Fatalf("unexpected record: %+v", n)
	}

	if len(ch.emitted) != 1 {
		t.Fatalf("emitted = %d, want 1", len(ch.emitted))
	}
	p, ok := ch.emitted[0].(Payload)
	if !ok {
		t.Fatalf("payload type %T", ch.emitted[0])
	}
	if p.TodoID != 42 || p.Type != domain.NotifyTodoCreated || p.Timestamp.IsZero() {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

// Офлайн — запись всё равно персистится, пуша нет, ошибок нет.
func TestDispatchOfflineStillPersists(t *testing.T) {
	d, repo, ch := setup()

	d.Dispatch(context.Background(), event())

	if len(repo.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(repo.saved))
	}
	if len(ch.emitted) != 0 {
		t.Fatalf("no push expected for an offline user, got %v", ch.emitted)
	}
}

func TestDispatchPushFailureIsContained(t *testing.T) {
	d, repo, ch := setup()
	ch.online[1] = true
	ch.refuse = true

	// не должно ни паниковать, ни терять запись
	d.Dispatch(context.Background(), event())

	if len(repo.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(repo.saved))
	}
}

func TestDispatchPersistFailureStillPushes(t *testing.T) {
	d, repo, ch := setup()
	repo.failing = true
	ch.online[1] = true

	d.Dispatch(context.Background(), event())

	if len(ch.emitted) != 1 {
		t.Fatalf("push must still be attempted, emitted = %d", len(ch.emitted))
	}
}
