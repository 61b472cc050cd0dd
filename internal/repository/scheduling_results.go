package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (r *Repository) InsertSchedulingResult(result *domain.SchedulingResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将同一个计划时域下之前的排产结果删除
	query := `DELETE FROM scheduling_results WHERE planning_window_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.PlanningWindowID); err != nil {
		return err
	}

	query = `
		INSERT INTO scheduling_results (planning_window_id, hard_penalty, soft_penalty)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	args := []any{result.PlanningWindowID, result.HardPenalty, result.SoftPenalty}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for _, plan := range result.Plans {
		query := `
			INSERT INTO scheduling_result_plans (scheduling_result_id, line_id, hour_start, item_id, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`

		args := []any{result.ID, plan.Slot.LineID, plan.Slot.HourStart, plan.ItemID, plan.Quantity}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSchedulingResultByPlanningWindowID(planningWindowID int64) (*domain.SchedulingResult, error) {
	query := `
		SELECT
			sr.id,
			srp.line_id,
			srp.hour_start,
			srp.item_id,
			srp.quantity,
			sr.hard_penalty,
			sr.soft_penalty,
			sr.created_at,
			sr.version
		FROM scheduling_results sr
		LEFT JOIN scheduling_result_plans srp ON sr.id = srp.scheduling_result_id
		WHERE sr.planning_window_id = $1
		ORDER BY srp.line_id, srp.hour_start
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, planningWindowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.SchedulingResult{
		PlanningWindowID: planningWindowID,
		Plans:            make([]domain.HourPlan, 0),
	}

	for rows.Next() {
		var row struct {
			resultID    int64
			lineID      sql.NullInt64
			hourStart   sql.NullTime
			itemID      sql.NullInt64
			quantity    sql.NullInt32
			hardPenalty float64
			softPenalty float64
			createdAt   time.Time
			version     int32
		}

		dst := []any{
			&row.resultID,
			&row.lineID,
			&row.hourStart,
			&row.itemID,
			&row.quantity,
			&row.hardPenalty,
			&row.softPenalty,
			&row.createdAt,
			&row.version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		result.ID = row.resultID
		result.HardPenalty = row.hardPenalty
		result.SoftPenalty = row.softPenalty
		result.CreatedAt = row.createdAt
		result.Version = row.version

		if !row.lineID.Valid {
			// 说明这个排产结果没有任何槽位决策，业务上不可能出现，但为了代码健壮性还是处理一下
			continue
		}

		plan := domain.HourPlan{
			Slot: domain.LineHourSlot{
				LineID:    row.lineID.Int64,
				HourStart: row.hourStart.Time,
			},
			Quantity: row.quantity.Int32,
		}
		if row.itemID.Valid {
			plan.ItemID = &row.itemID.Int64
		}

		result.Plans = append(result.Plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 还需要处理没有结果的情况
	if result.ID == 0 {
		return nil, sql.ErrNoRows
	}

	return result, nil
}
