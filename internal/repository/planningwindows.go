package repository

import (
	"context"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (r *Repository) CreatePlanningWindow(window *domain.PlanningWindow) error {
	query := `
		INSERT INTO planning_windows (name, description, horizon_start, horizon_end)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{window.Name, window.Description, window.HorizonStart, window.HorizonEnd}
	dst := []any{&window.ID, &window.CreatedAt, &window.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllPlanningWindows() ([]*domain.PlanningWindow, error) {
	query := `
		SELECT id, name, description, horizon_start, horizon_end, created_at, version
		FROM planning_windows
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := []*domain.PlanningWindow{}
	for rows.Next() {
		var window domain.PlanningWindow
		dst := []any{
			&window.ID,
			&window.Name,
			&window.Description,
			&window.HorizonStart,
			&window.HorizonEnd,
			&window.CreatedAt,
			&window.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		windows = append(windows, &window)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return windows, nil
}

func (r *Repository) GetPlanningWindowByID(id int64) (*domain.PlanningWindow, error) {
	query := `
		SELECT name, description, horizon_start, horizon_end, created_at, version
		FROM planning_windows WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	window := &domain.PlanningWindow{
		ID: id,
	}

	dst := []any{&window.Name, &window.Description, &window.HorizonStart, &window.HorizonEnd, &window.CreatedAt, &window.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return window, nil
}

// GetLatestOpenPlanningWindowID 返回时域还没有结束的最新计划时域的 ID
func (r *Repository) GetLatestOpenPlanningWindowID() (int64, error) {
	query := `
		SELECT id FROM planning_windows
		WHERE horizon_end > NOW()
		ORDER BY horizon_start DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *Repository) UpdatePlanningWindow(window *domain.PlanningWindow) error {
	query := `
		UPDATE planning_windows
		SET
			name = $1,
			description = $2,
			horizon_start = $3,
			horizon_end = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		window.Name,
		window.Description,
		window.HorizonStart,
		window.HorizonEnd,
		window.ID,
		window.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&window.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePlanningWindow(id int64) error {
	query := `
		DELETE FROM planning_windows WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
