package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (h *Handler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaterialID int64     `json:"materialID" validate:"required"`
		Quantity   float64   `json:"quantity" validate:"gte=0"`
		SnapshotAt time.Time `json:"snapshotAt" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	inventory := &domain.Inventory{
		MaterialID: req.MaterialID,
		Quantity:   req.Quantity,
		SnapshotAt: req.SnapshotAt,
	}

	if err := h.repository.CreateInventory(inventory); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "inventories_material_id_fkey":
			h.badRequest(w, r, errors.New("原材料不存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建库存快照成功", inventory)
}

func (h *Handler) GetAllInventories(w http.ResponseWriter, r *http.Request) {
	inventories, err := h.repository.GetAllInventories()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取库存快照列表成功", inventories)
}
