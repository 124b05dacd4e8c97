package todo

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/todo"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/mw"
)

type fakeService struct {
	todos map[domain.TodoID]domain.Todo
	fail  error
}

func (f *fakeService) List(ctx context.Context, user domain.UserID) ([]domain.Todo, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	var out []domain.Todo
	for _, t := range f.todos {
		if t.UserID == user {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeService) Get(ctx context.Context, id domain.TodoID, user domain.UserID) (domain.Todo, error) {
	t, ok := f.todos[id]
	if !ok || t.UserID != user {
		return domain.Todo{}, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeService) Create(ctx context.Context, user domain.UserID, title, description string) (domain.Todo, error) {
	if f.fail != nil {
		return domain.Todo{}, f.fail
	}
	t := domain.Todo{ID: 1, Title: title, Description: description, Status: domain.StatusPending, UserID: user}
	f.todos[t.ID] = t
	return t, nil
}

func (f *fakeService) Update(ctx context.Context, id domain.TodoID, user domain.UserID, p todo.UpdateParams) (domain.Todo, error) {
	t, err := f.Get(ctx, id, user)
	if err != nil {
		return domain.Todo{}, err
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	f.todos[id] = t
	return t, nil
}

func (f *fakeService) Delete(ctx context.Context, id domain.TodoID, user domain.UserID) error {
	if _, err := f.Get(ctx, id, user); err != nil {
		return err
	}
	delete(f.todos, id)
	return nil
}

func newHandler() (*Handler, *fakeService) {
	svc := &fakeService{todos: make(map[domain.TodoID]domain.Todo)}
	h := &Handler{Log: log.New(io.Discard, "", 0), Service: svc}
	return h, svc
}

func doRequest(h http.HandlerFunc, method, target, body string, user domain.UserID, pathID string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	if user != 0 {
		r = r.WithContext(mw.WithUser(r.Context(), domain.User{ID: user, Email: "u@test.dev"}))
	}
	if pathID != "" {
		r.SetPathValue("id", pathID)
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) domain.APIEnvelope {
	t.Helper()
	var env domain.APIEnvelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestGetOneMapsNotFound(t *testing.T) {
	h, svc := newHandler()
	svc.todos[5] = domain.Todo{ID: 5, UserID: 2, Title: "someone else's"}

	// чужая задача выглядит как отсутствующая
	w := doRequest(h.GetOne, http.MethodGet, "/api/todos/5", "", 1, "5")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != domain.ErrCodeNotFound {
		t.Fatalf("envelope = %+v, want not found error", env)
	}
}

func TestCreateReturnsCreated(t *testing.T) {
	h, _ := newHandler()

	w := doRequest(h.Create, http.MethodPost, "/api/todos", `{"title":"write tests","description":"today"}`, 1, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error != nil || env.Response == nil {
		t.Fatalf("envelope = %+v, want response payload", env)
	}
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	h, _ := newHandler()

	w := doRequest(h.Create, http.MethodPost, "/api/todos", `{"title":"   "}`, 1, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	h, svc := newHandler()
	svc.todos[1] = domain.Todo{ID: 1, UserID: 1, Status: domain.StatusPending}

	w := doRequest(h.Update, http.MethodPatch, "/api/todos/1", `{"status":"archived"}`, 1, "1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateTransitionsStatus(t *testing.T) {
	h, svc := newHandler()
	svc.todos[1] = domain.Todo{ID: 1, UserID: 1, Status: domain.StatusPending}

	w := doRequest(h.Update, http.MethodPatch, "/api/todos/1", `{"status":"completed"}`, 1, "1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.todos[1].Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", svc.todos[1].Status)
	}
}

func TestMissingUserIsUnauthorized(t *testing.T) {
	h, _ := newHandler()

	w := doRequest(h.List, http.MethodGet, "/api/todos", "", 0, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestBadPathIDIsBadRequest(t *testing.T) {
	h, _ := newHandler()

	w := doRequest(h.Delete, http.MethodDelete, "/api/todos/abc", "", 1, "abc")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
