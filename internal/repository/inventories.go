package repository

import (
	"context"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (r *Repository) CreateInventory(inventory *domain.Inventory) error {
	query := `
		INSERT INTO inventories (material_id, quantity, snapshot_at)
		VALUES ($1, $2, $3)
		RETURNING id, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{inventory.MaterialID, inventory.Quantity, inventory.SnapshotAt}
	dst := []any{&inventory.ID, &inventory.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllInventories() ([]*domain.Inventory, error) {
	query := `
		SELECT id, material_id, quantity, snapshot_at, version FROM inventories
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inventories := make([]*domain.Inventory, 0)
	for rows.Next() {
		inventory := &domain.Inventory{}
		dst := []any{&inventory.ID, &inventory.MaterialID, &inventory.Quantity, &inventory.SnapshotAt, &inventory.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		inventories = append(inventories, inventory)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return inventories, nil
}
