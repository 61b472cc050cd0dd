package repository

import (
	"context"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (r *Repository) CreateDemand(demand *domain.Demand) error {
	query := `
		INSERT INTO demands (item_id, quantity, due_at, priority)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{demand.ItemID, demand.Quantity, demand.DueAt, demand.Priority}
	dst := []any{&demand.ID, &demand.CreatedAt, &demand.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllDemands() ([]*domain.Demand, error) {
	query := `
		SELECT id, item_id, quantity, due_at, priority, created_at, version FROM demands
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	demands := make([]*domain.Demand, 0)
	for rows.Next() {
		demand := &domain.Demand{}
		dst := []any{&demand.ID, &demand.ItemID, &demand.Quantity, &demand.DueAt, &demand.Priority, &demand.CreatedAt, &demand.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		demands = append(demands, demand)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return demands, nil
}

func (r *Repository) DeleteDemand(id int64) error {
	query := `
		DELETE FROM demands WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
