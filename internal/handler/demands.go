package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (h *Handler) CreateDemand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID   int64     `json:"itemID" validate:"required"`
		Quantity int32     `json:"quantity" validate:"required,gt=0"`
		DueAt    time.Time `json:"dueAt" validate:"required"`
		Priority int32     `json:"priority" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	demand := &domain.Demand{
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
		DueAt:    req.DueAt,
		Priority: req.Priority,
	}

	if err := h.repository.CreateDemand(demand); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "demands_item_id_fkey":
			h.badRequest(w, r, errors.New("物料不存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建需求成功", demand)
}

func (h *Handler) GetAllDemands(w http.ResponseWriter, r *http.Request) {
	demands, err := h.repository.GetAllDemands()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取需求列表成功", demands)
}

func (h *Handler) DeleteDemand(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("需求 ID 无效"))
		return
	}

	if err := h.repository.DeleteDemand(id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.badRequest(w, r, errors.New("需求不存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除需求成功", nil)
}
