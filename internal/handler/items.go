package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code" validate:"required"`
		Name string `json:"name" validate:"required"`
		Unit string `json:"unit" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	item := &domain.Item{
		Code: req.Code,
		Name: req.Name,
		Unit: req.Unit,
	}

	if err := h.repository.CreateItem(item); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "items_code_key":
			h.badRequest(w, r, errors.New("物料编码已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建物料成功", item)
}

func (h *Handler) GetAllItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repository.GetAllItems()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取物料列表成功", items)
}

func (h *Handler) CreateBOMItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID     int64 `json:"itemID" validate:"required"`
		Components []struct {
			MaterialID int64   `json:"materialID" validate:"required"`
			Quantity   float64 `json:"quantity" validate:"required,gt=0"`
		} `json:"components" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	bom := &domain.BOMItem{
		ItemID:     req.ItemID,
		Components: make([]domain.BOMComponent, 0, len(req.Components)),
	}
	for _, comp := range req.Components {
		bom.Components = append(bom.Components, domain.BOMComponent{
			MaterialID: comp.MaterialID,
			Quantity:   comp.Quantity,
		})
	}

	if err := h.repository.CreateBOMItem(bom); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "bom_items_item_id_key":
				h.badRequest(w, r, errors.New("该物料的 BOM 已存在"))
			case "bom_items_item_id_fkey", "bom_components_material_id_fkey":
				h.badRequest(w, r, errors.New("物料不存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建 BOM 成功", bom)
}

func (h *Handler) GetAllBOMItems(w http.ResponseWriter, r *http.Request) {
	boms, err := h.repository.GetAllBOMItems()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取 BOM 列表成功", boms)
}
