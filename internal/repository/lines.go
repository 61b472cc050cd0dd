package repository

import (
	"context"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (r *Repository) CreateLine(line *domain.Line) error {
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
		INSERT INTO lines (code, name)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	if err := tx.QueryRowContext(ctx, query, line.Code, line.Name).Scan(&line.ID, &line.CreatedAt, &line.Version); err != nil {
		return err
	}

	for _, capability := range line.Capabilities {
		query := `
			INSERT INTO line_capabilities (line_id, item_id, hourly_capacity)
			VALUES ($1, $2, $3)
		`

		if _, err := tx.ExecContext(ctx, query, line.ID, capability.ItemID, capability.HourlyCapacity); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllLines() ([]*domain.Line, error) {
	query := `
		SELECT
			l.id,
			l.code,
			l.name,
			lc.item_id,
			lc.hourly_capacity,
			l.created_at,
			l.version
		FROM lines l
		LEFT JOIN line_capabilities lc ON l.id = lc.line_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lineMap := make(map[int64]*domain.Line)
	for rows.Next() {
		var row struct {
			id             int64
			code           string
			name           string
			itemID         *int64
			hourlyCapacity *int32
			createdAt      time.Time
			version        int32
		}

		dst := []any{&row.id, &row.code, &row.name, &row.itemID, &row.hourlyCapacity, &row.createdAt, &row.version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := lineMap[row.id]; !exists {
			lineMap[row.id] = &domain.Line{
				ID:           row.id,
				Code:         row.code,
				Name:         row.name,
				Capabilities: make([]domain.LineCapability, 0),
				CreatedAt:    row.createdAt,
				Version:      row.version,
			}
		}

		if row.itemID == nil {
			// 没有任何生产能力数据的产线，排产时这条产线的槽位只能空闲
			continue
		}

		lineMap[row.id].Capabilities = append(lineMap[row.id].Capabilities, domain.LineCapability{
			ItemID:         *row.itemID,
			HourlyCapacity: *row.hourlyCapacity,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines := make([]*domain.Line, 0, len(lineMap))
	for _, line := range lineMap {
		lines = append(lines, line)
	}

	return lines, nil
}
