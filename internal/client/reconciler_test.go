package client

import (
	"testing"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

func snapshot(r *Reconciler, titles ...string) {
	todos := make([]domain.Todo, 0, len(titles))
	for i, title := range titles {
		todos = append(todos, domain.Todo{
			ID:     domain.TodoID(i + 1),
			Title:  title,
			Status: domain.StatusPending,
			UserID: 1,
		})
	}
	r.Snapshot(todos)
}

func titles(r *Reconciler) []string {
	list := r.List()
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.Title)
	}
	return out
}

func equalTitles(t *testing.T, r *Reconciler, want ...string) {
	t.Helper()
	got := titles(r)
	if len(got) != len(want) {
		t.Fatalf("list = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("list = %v, want %v", got, want)
		}
	}
}

func TestCreateConfirmReplacesProvisional(t *testing.T) {
	r := NewReconciler()
	snapshot(r, "old")

	tmp := r.OptimisticCreate("new", "")
	if tmp >= 0 {
		t.Fatalf("provisional id = %d, want negative", tmp)
	}
	equalTitles(t, r, "new", "old")

	server := domain.Todo{ID: 42, Title: "new", Status: domain.StatusPending, UserID: 1}
	if !r.ConfirmCreate(tmp, server) {
		t.Fatal("ConfirmCreate returned false")
	}

	list := r.List()
	if list[0].ID != 42 {
		t.Fatalf("confirmed id = %d, want 42", list[0].ID)
	}
	if r.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", r.Pending())
	}
}

func TestCreateRollbackRemovesProvisional(t *testing.T) {
	r := NewReconciler()
	snapshot(r, "old")

	tmp := r.OptimisticCreate("doomed", "")
	if !r.RollbackCreate(tmp) {
		t.Fatal("RollbackCreate returned false")
	}
	equalTitles(t, r, "old")
	if r.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", r.Pending())
	}
}

func TestUpdateRollbackRestoresPrevious(t *testing.T) {
	r := NewReconciler()
	snapshot(r, "alpha", "beta")

	title := "patched"
	if !r.OptimisticUpdate(1, Patch{Title: &title}) {
		t.Fatal("OptimisticUpdate returned false")
	}
	equalTitles(t, r, "patched", "beta")

	if !r.RollbackUpdate(1) {
		t.Fatal("RollbackUpdate returned false")
	}
	equalTitles(t, r, "alpha", "beta")
}

func TestUpdateConfirmTakesServerVersion(t *testing.T) {
	r := NewReconciler()
	snapshot(r, "alpha")

	st := domain.StatusCompleted
	r.OptimisticUpdate(1, Patch{Status: &st})

	server := domain.Todo{ID: 1, Title: "alpha (edited)", Status: domain.StatusCompleted, UserID: 1}
	if !r.ConfirmUpdate(server) {
		t.Fatal("ConfirmUpdate returned false")
	}

	list := r.List()
	if list[0].Title != "alpha (edited)" || list[0].Status != domain.StatusCompleted {
		t.Fatalf("got %+v, want server version", list[0])
	}
}

func TestDeleteRollbackRestoresPosition(t *testing.T) {
	r := NewReconciler()
	snapshot(r, "a", "b", "c")

	if !r.OptimisticDelete(2) {
		t.Fatal("OptimisticDelete returned false")
	}
	equalTitles(t, r, "a", "c")

	if !r.RollbackDelete(2) {
		t.Fatal("RollbackDelete returned false")
	}
	equalTitles(t, r, "a", "b", "c")
}

func TestDeleteConfirmForgets(t *testing.T) {
	r := NewReconciler()
	snapshot(r, "a", "b")

	r.OptimisticDelete(1)
	if !r.ConfirmDelete(1) {
		t.Fatal("ConfirmDelete returned false")
	}
	if r.RollbackDelete(1) {
		t.Fatal("RollbackDelete after confirm should be false")
	}
	equalTitles(t, r, "b")
}

func TestSnapshotClearsPending(t *testing.T) {
	r := NewReconciler()
	snapshot(r, "a")

	title := "x"
	r.OptimisticUpdate(1, Patch{Title: &title})
	snapshot(r, "fresh")

	if r.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", r.Pending())
	}
	equalTitles(t, r, "fresh")
}

func TestUnknownIDsAreRejected(t *testing.T) {
	r := NewReconciler()
	snapshot(r, "a")

	title := "x"
	if r.OptimisticUpdate(99, Patch{Title: &title}) {
		t.Fatal("update of unknown id should be false")
	}
	if r.OptimisticDelete(99) {
		t.Fatal("delete of unknown id should be false")
	}
	if r.RollbackUpdate(99) {
		t.Fatal("rollback of unknown id should be false")
	}
}
