package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

const todoColumns = "id, title, description, status, user_id, created_at, updated_at"

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var t domain.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// TodosByUser возвращает задачи пользователя, новые сверху.
func (r *PGRepo) TodosByUser(ctx context.Context, user domain.UserID) ([]domain.Todo, error) {
	q := r.qb().Select("id", "title", "description", "status", "user_id", "created_at", "updated_at").
		From(fmt.Sprintf("%s.todos", r.schema)).
		Where(sq.Eq{"user_id": user}).
		OrderBy("created_at DESC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("TodosByUser", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("TodosByUser query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			r.logger.Printf("TodosByUser scan error: %v", err)
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("TodosByUser ok in %s user=%d count=%d", time.Since(start), user, len(out))
	return out, nil
}

// TodoByID ищет по предикату (id, user_id): чужая задача неотличима
// от несуществующей.
func (r *PGRepo) TodoByID(ctx context.Context, id domain.TodoID, user domain.UserID) (domain.Todo, error) {
	q := r.qb().Select("id", "title", "description", "status", "user_id", "created_at", "updated_at").
		From(fmt.Sprintf("%s.todos", r.schema)).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"user_id": user}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("TodoByID", sqlStr, args)

	start := time.Now()
	t, err := scanTodo(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrNotFound
		}
		r.logger.Printf("TodoByID scan error after %s: %v", time.Since(start), err)
		return domain.Todo{}, err
	}
	r.logger.Printf("TodoByID ok in %s id=%d", time.Since(start), t.ID)
	return t, nil
}

func (r *PGRepo) CreateTodo(ctx context.Context, t domain.Todo) (domain.Todo, error) {
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	q := r.qb().Insert(fmt.Sprintf("%s.todos", r.schema)).
		Columns("title", "description", "status", "user_id").
		Values(t.Title, t.Description, t.Status, t.UserID).
		Suffix("RETURNING " + todoColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateTodo", sqlStr, args)

	start := time.Now()
	out, err := scanTodo(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreateTodo scan error after %s: %v", time.Since(start), err)
		return domain.Todo{}, err
	}
	r.logger.Printf("CreateTodo ok in %s id=%d title=%q", time.Since(start), out.ID, out.Title)
	return out, nil
}

func (r *PGRepo) UpdateTodo(ctx context.Context, t domain.Todo) (domain.Todo, error) {
	q := r.qb().Update(fmt.Sprintf("%s.todos", r.schema)).
		Set("title", t.Title).
		Set("description", t.Description).
		Set("status", t.Status).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.And{sq.Eq{"id": t.ID}, sq.Eq{"user_id": t.UserID}}).
		Suffix("RETURNING " + todoColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdateTodo", sqlStr, args)

	start := time.Now()
	out, err := scanTodo(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrNotFound
		}
		r.logger.Printf("UpdateTodo scan error after %s: %v", time.Since(start), err)
		return domain.Todo{}, err
	}
	r.logger.Printf("UpdateTodo ok in %s id=%d status=%s", time.Since(start), out.ID, out.Status)
	return out, nil
}

func (r *PGRepo) DeleteTodo(ctx context.Context, id domain.TodoID, user domain.UserID) error {
	q := r.qb().Delete(fmt.Sprintf("%s.todos", r.schema)).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"user_id": user}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteTodo", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteTodo exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Printf("DeleteTodo no rows affected in %s (not found or not owner)", time.Since(start))
		return domain.ErrNotFound
	}
	r.logger.Printf("DeleteTodo ok in %s id=%d", time.Since(start), id)
	return nil
}
