package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

const notificationColumns = "id, user_id, todo_id, type, title, message, read, created_at, updated_at"

func (r *PGRepo) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	q := r.qb().Insert(fmt.Sprintf("%s.notifications", r.schema)).
		Columns("user_id", "todo_id", "type", "title", "message", "read").
		Values(n.UserID, n.TodoID, n.Type, n.Title, n.Message, false).
		Suffix("RETURNING " + notificationColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateNotification", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var out domain.Notification
	if err := row.Scan(&out.ID, &out.UserID, &out.TodoID, &out.Type, &out.Title,
		&out.Message, &out.Read, &out.CreatedAt, &out.UpdatedAt); err != nil {
		r.logger.Printf("CreateNotification scan error after %s: %v", time.Since(start), err)
		return domain.Notification{}, err
	}
	r.logger.Printf("CreateNotification ok in %s id=%d type=%s user=%d",
		time.Since(start), out.ID, out.Type, out.UserID)
	return out, nil
}

func (r *PGRepo) NotificationsByUser(ctx context.Context, user domain.UserID) ([]domain.Notification, error) {
	q := r.qb().Select("id", "user_id", "todo_id", "type", "title", "message", "read", "created_at", "updated_at").
		From(fmt.Sprintf("%s.notifications", r.schema)).
		Where(sq.Eq{"user_id": user}).
		OrderBy("created_at DESC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("NotificationsByUser", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("NotificationsByUser query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.TodoID, &n.Type, &n.Title,
			&n.Message, &n.Read, &n.CreatedAt, &n.UpdatedAt); err != nil {
			r.logger.Printf("NotificationsByUser scan error: %v", err)
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("NotificationsByUser ok in %s user=%d count=%d", time.Since(start), user, len(out))
	return out, nil
}

func (r *PGRepo) MarkNotificationRead(ctx context.Context, id int64, user domain.UserID) error {
	q := r.qb().Update(fmt.Sprintf("%s.notifications", r.schema)).
		Set("read", true).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"user_id": user}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("MarkNotificationRead", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("MarkNotificationRead exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("MarkNotificationRead ok in %s id=%d", time.Since(start), id)
	return nil
}
