package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (h *Handler) CreateLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code         string `json:"code" validate:"required"`
		Name         string `json:"name" validate:"required"`
		Capabilities []struct {
			ItemID         int64 `json:"itemID" validate:"required"`
			HourlyCapacity int32 `json:"hourlyCapacity" validate:"required,gt=0"`
		} `json:"capabilities" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	line := &domain.Line{
		Code:         req.Code,
		Name:         req.Name,
		Capabilities: make([]domain.LineCapability, 0, len(req.Capabilities)),
	}
	for _, capability := range req.Capabilities {
		line.Capabilities = append(line.Capabilities, domain.LineCapability{
			ItemID:         capability.ItemID,
			HourlyCapacity: capability.HourlyCapacity,
		})
	}

	if err := h.repository.CreateLine(line); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "lines_code_key":
				h.badRequest(w, r, errors.New("产线编码已存在"))
			case "line_capabilities_item_id_fkey":
				h.badRequest(w, r, errors.New("物料不存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建产线成功", line)
}

func (h *Handler) GetAllLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.repository.GetAllLines()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取产线列表成功", lines)
}
