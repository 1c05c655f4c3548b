package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
)

const orderColumns = `id, number, user_id, package_id, status, payment_status, amount, currency, requirements,
                      remote_order_id, payment_id, due_at, completed_at, created_at, updated_at`

const fileColumns = `id, order_id, stored_name, original_name, category, content_type, size, uploaded_by, uploaded_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.Number, &o.UserID, &o.PackageID, &o.Status, &o.PaymentStatus, &o.Amount, &o.Currency, &o.Requirements,
		&o.RemoteOrderID, &o.PaymentID, &o.DueAt, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt)
}

func scanFile(row pgx.Row, f *model.OrderFile) error {
	return row.Scan(&f.ID, &f.OrderID, &f.StoredName, &f.OriginalName, &f.Category, &f.ContentType, &f.Size, &f.UploadedBy, &f.UploadedAt)
}

// Create stores the order and the optional file row atomically. A clash on the
// order number is reported as ErrAlreadyExists.
func (r *orderRepository) Create(ctx context.Context, order *model.Order, file *model.OrderFile) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (number, user_id, package_id, status, payment_status, amount, currency, requirements, due_at)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                         RETURNING ` + orderColumns
	const insertFile = `INSERT INTO order_files (order_id, stored_name, original_name, category, content_type, size, uploaded_by)
                        VALUES ($1, $2, $3, $4, $5, $6, $7)
                        RETURNING id, uploaded_at`

	var created model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, insertOrder, order.Number, order.UserID, order.PackageID, order.Status, order.PaymentStatus,
			order.Amount, order.Currency, order.Requirements, order.DueAt)
		if err := scanOrder(row, &created); err != nil {
			return err
		}
		if file == nil {
			return nil
		}
		file.OrderID = created.ID
		return tx.QueryRow(ctx, insertFile, file.OrderID, file.StoredName, file.OriginalName, file.Category, file.ContentType, file.Size, file.UploadedBy).
			Scan(&file.ID, &file.UploadedAt)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	var o model.Order
	if err := scanOrder(r.storage.pool.QueryRow(ctx, query, id), &o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) SetRemoteOrder(ctx context.Context, id int64, remoteOrderID string) error {
	const query = `UPDATE orders SET remote_order_id=$2, updated_at=NOW() WHERE id=$1 AND status='pending'`
	tag, err := r.storage.pool.Exec(ctx, query, id, remoteOrderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missed(ctx, id)
	}
	return nil
}

// MarkPaid confirms the order in a single conditional update so concurrent
// captures cannot both win. When nothing changes the stored row is returned
// with applied=false.
func (r *orderRepository) MarkPaid(ctx context.Context, id int64, paymentID string) (*model.Order, bool, error) {
	const query = `UPDATE orders
                   SET payment_status='paid', status='confirmed', payment_id=$2, updated_at=NOW()
                   WHERE id=$1 AND status='pending' AND payment_status IN ('pending', 'failed')
                   RETURNING ` + orderColumns
	var o model.Order
	err := scanOrder(r.storage.pool.QueryRow(ctx, query, id, paymentID), &o)
	if err == nil {
		return &o, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (r *orderRepository) MarkPaymentFailed(ctx context.Context, id int64) (*model.Order, error) {
	const query = `UPDATE orders SET payment_status='failed', updated_at=NOW()
                   WHERE id=$1 AND status='pending' AND payment_status IN ('pending', 'failed')
                   RETURNING ` + orderColumns
	return r.update(ctx, id, query, id)
}

// UpdateStatus moves the order from one status to another. The from status is
// part of the predicate, so a concurrent move makes this call fail.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) (*model.Order, error) {
	const query = `UPDATE orders
                   SET status=$3,
                       completed_at = CASE WHEN $3::text = 'completed' THEN NOW() ELSE completed_at END,
                       updated_at=NOW()
                   WHERE id=$1 AND status=$2
                   RETURNING ` + orderColumns
	return r.update(ctx, id, query, id, from, to)
}

func (r *orderRepository) MarkRefunded(ctx context.Context, id int64) (*model.Order, error) {
	const query = `UPDATE orders SET payment_status='refunded', status='cancelled', updated_at=NOW()
                   WHERE id=$1 AND payment_status='paid' AND status IN ('confirmed', 'in_progress', 'revision', 'cancelled')
                   RETURNING ` + orderColumns
	return r.update(ctx, id, query, id)
}

func (r *orderRepository) update(ctx context.Context, id int64, query string, args ...any) (*model.Order, error) {
	var o model.Order
	err := scanOrder(r.storage.pool.QueryRow(ctx, query, args...), &o)
	if err == nil {
		return &o, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missed(ctx, id)
	}
	return nil, err
}

// missed explains a conditional update that touched no rows.
func (r *orderRepository) missed(ctx context.Context, id int64) error {
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domainErrors.ErrNotFound
	}
	return domainErrors.ErrInvalidTransition
}

func (r *orderRepository) AddFile(ctx context.Context, file *model.OrderFile) (*model.OrderFile, error) {
	const query = `INSERT INTO order_files (order_id, stored_name, original_name, category, content_type, size, uploaded_by)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id, uploaded_at`
	f := *file
	err := r.storage.pool.QueryRow(ctx, query, f.OrderID, f.StoredName, f.OriginalName, f.Category, f.ContentType, f.Size, f.UploadedBy).
		Scan(&f.ID, &f.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *orderRepository) ListFiles(ctx context.Context, orderID int64) ([]model.OrderFile, error) {
	const query = `SELECT ` + fileColumns + ` FROM order_files WHERE order_id=$1 ORDER BY uploaded_at, id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderFile
	for rows.Next() {
		var f model.OrderFile
		if err := scanFile(rows, &f); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) GetFile(ctx context.Context, orderID, fileID int64) (*model.OrderFile, error) {
	const query = `SELECT ` + fileColumns + ` FROM order_files WHERE order_id=$1 AND id=$2`
	var f model.OrderFile
	if err := scanFile(r.storage.pool.QueryRow(ctx, query, orderID, fileID), &f); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}
