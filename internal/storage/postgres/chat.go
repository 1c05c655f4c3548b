package postgres

import (
	"context"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

func (r *chatRepository) Append(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	const query = `INSERT INTO chat_messages (order_id, user_id, body, is_support)
                   VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	m := *msg
	if err := r.storage.pool.QueryRow(ctx, query, m.OrderID, m.UserID, m.Body, m.IsSupport).Scan(&m.ID, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *chatRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.ChatEntry, error) {
	const query = `SELECT m.id, m.order_id, m.user_id, m.body, m.is_support, m.created_at,
                          u.email, u.first_name, u.last_name
                   FROM chat_messages m JOIN users u ON u.id = m.user_id
                   WHERE m.order_id=$1
                   ORDER BY m.created_at, m.id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ChatEntry
	for rows.Next() {
		var (
			e model.ChatEntry
			u model.User
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &e.UserID, &e.Body, &e.IsSupport, &e.CreatedAt, &u.Email, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		e.SenderName = u.FullName()
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
