package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// SQLAdapter implements port.LedgerRepository over database/sql. All lookups
// are parameterized; the decrement is a single conditional UPDATE so two
// concurrent purchases can never drive quantity negative.
type SQLAdapter struct {
	db *sql.DB
}

func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	err := s.db.QueryRowContext(ctx, `
		SELECT id, topic, title, unit_cost, quantity
		FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Topic, &item.Title, &item.UnitCost, &item.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}

	return &item, nil
}

func (s *SQLAdapter) GetItemsByTopic(ctx context.Context, topic string) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, title, unit_cost, quantity
		FROM items WHERE topic = ?`, topic,
	)
	if err != nil {
		return nil, fmt.Errorf("query items by topic: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Topic, &item.Title, &item.UnitCost, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

func (s *SQLAdapter) DecrementQuantity(ctx context.Context, id, amount int64) (*domain.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE items
		SET quantity = quantity - ?
		WHERE id = ? AND quantity >= ?`,
		amount, id, amount,
	)
	if err != nil {
		return nil, fmt.Errorf("decrement quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Missing row and exhausted stock both leave zero rows affected.
		var q int64
		err := tx.QueryRowContext(ctx, `SELECT quantity FROM items WHERE id = ?`, id).Scan(&q)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("query quantity: %w", err)
		}
		return nil, domain.ErrInsufficientStock
	}

	var item domain.Item
	err = tx.QueryRowContext(ctx, `
		SELECT id, topic, title, unit_cost, quantity
		FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Topic, &item.Title, &item.UnitCost, &item.Quantity)
	if err != nil {
		return nil, fmt.Errorf("query updated item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &item, nil
}

func (s *SQLAdapter) SetQuantity(ctx context.Context, id, quantity int64) (*domain.Item, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET quantity = ? WHERE id = ?`,
		quantity, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// The UPDATE may have matched a row already holding this quantity;
		// MySQL reports zero affected rows in that case.
		item, err := s.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		return item, nil
	}

	return s.GetItem(ctx, id)
}
