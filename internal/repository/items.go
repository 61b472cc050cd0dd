package repository

import (
	"context"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (r *Repository) CreateItem(item *domain.Item) error {
	query := `
		INSERT INTO items (code, name, unit)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{item.Code, item.Name, item.Unit}
	dst := []any{&item.ID, &item.CreatedAt, &item.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllItems() ([]*domain.Item, error) {
	query := `
		SELECT id, code, name, unit, created_at, version FROM items
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.Item, 0)
	for rows.Next() {
		item := &domain.Item{}
		dst := []any{&item.ID, &item.Code, &item.Name, &item.Unit, &item.CreatedAt, &item.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) CreateBOMItem(bom *domain.BOMItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO bom_items (item_id)
		VALUES ($1)
		RETURNING id, created_at, version
	`

	if err := tx.QueryRowContext(ctx, query, bom.ItemID).Scan(&bom.ID, &bom.CreatedAt, &bom.Version); err != nil {
		return err
	}

	for _, comp := range bom.Components {
		query := `
			INSERT INTO bom_components (bom_item_id, material_id, quantity)
			VALUES ($1, $2, $3)
		`

		if _, err := tx.ExecContext(ctx, query, bom.ID, comp.MaterialID, comp.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllBOMItems() ([]*domain.BOMItem, error) {
	query := `
		SELECT
			bi.id,
			bi.item_id,
			bc.material_id,
			bc.quantity,
			bi.created_at,
			bi.version
		FROM bom_items bi
		LEFT JOIN bom_components bc ON bi.id = bc.bom_item_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bomMap := make(map[int64]*domain.BOMItem)
	for rows.Next() {
		var row struct {
			id         int64
			itemID     int64
			materialID *int64
			quantity   *float64
			createdAt  time.Time
			version    int32
		}

		dst := []any{&row.id, &row.itemID, &row.materialID, &row.quantity, &row.createdAt, &row.version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := bomMap[row.id]; !exists {
			bomMap[row.id] = &domain.BOMItem{
				ID:         row.id,
				ItemID:     row.itemID,
				Components: make([]domain.BOMComponent, 0),
				CreatedAt:  row.createdAt,
				Version:    row.version,
			}
		}

		if row.materialID == nil {
			// 没有任何原材料的 BOM，业务上不常见但允许存在
			continue
		}

		bomMap[row.id].Components = append(bomMap[row.id].Components, domain.BOMComponent{
			MaterialID: *row.materialID,
			Quantity:   *row.quantity,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	boms := make([]*domain.BOMItem, 0, len(bomMap))
	for _, bom := range bomMap {
		boms = append(boms, bom)
	}

	return boms, nil
}
