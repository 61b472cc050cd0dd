package seed

import (
	"log/slog"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
	"github.com/smartmes-dev/line-planner/backend/internal/repository"
)

// 演示工厂的物料表，前几项是成品，后几项是只作为原材料的物料
var demoItems = []*domain.Item{
	{Code: "LHJZJ-001", Name: "铝合金支架", Unit: "件"},
	{Code: "BXGWK-001", Name: "不锈钢外壳", Unit: "件"},
	{Code: "JMMB-001", Name: "精密面板", Unit: "件"},
	{Code: "LHJXC-001", Name: "铝合金型材", Unit: "米"},
	{Code: "BXGB-001", Name: "不锈钢板", Unit: "千克"},
	{Code: "BLS-001", Name: "标准螺栓", Unit: "件"},
}

// 成品编码 -> 原材料编码及单位用量
var demoBOMs = map[string]map[string]float64{
	"LHJZJ-001": {"LHJXC-001": 1.5, "BLS-001": 4},
	"BXGWK-001": {"BXGB-001": 2.0, "BLS-001": 6},
	"JMMB-001":  {"LHJXC-001": 0.5, "BXGB-001": 0.8},
}

// 产线编码 -> 可生产的成品编码及每小时产量
var demoLines = map[string]map[string]int32{
	"LINE-001": {"LHJZJ-001": 60, "JMMB-001": 40},
	"LINE-002": {"BXGWK-001": 30, "LHJZJ-001": 45},
	"LINE-003": {"JMMB-001": 50},
}

var demoLineNames = map[string]string{
	"LINE-001": "1号产线",
	"LINE-002": "2号产线",
	"LINE-003": "3号产线",
}

// 需求：成品编码、数量、距今的交期天数、优先级
var demoDemands = []struct {
	itemCode string
	quantity int32
	dueDays  int
	priority int32
}{
	{"LHJZJ-001", 800, 2, 3},
	{"BXGWK-001", 300, 3, 2},
	{"JMMB-001", 500, 4, 1},
	{"LHJZJ-001", 400, 5, 1},
}

// 原材料编码 -> 库存数量
var demoInventories = map[string]float64{
	"LHJXC-001": 5000,
	"BXGB-001":  3000,
	"BLS-001":   20000,
}

// SeedDemoData 插入一套固定的演示工厂数据，包括物料、BOM、产线、需求、库存和一个计划时域
func SeedDemoData(r *repository.Repository) {
	itemByCode := make(map[string]*domain.Item)
	for _, item := range demoItems {
		if err := r.CreateItem(item); err != nil {
			slog.Error("插入物料失败", "code", item.Code, "error", err)
			return
		}
		itemByCode[item.Code] = item
	}
	slog.Info("插入物料成功", "count", len(demoItems))

	for itemCode, components := range demoBOMs {
		bom := &domain.BOMItem{ItemID: itemByCode[itemCode].ID}
		for materialCode, quantity := range components {
			bom.Components = append(bom.Components, domain.BOMComponent{
				MaterialID: itemByCode[materialCode].ID,
				Quantity:   quantity,
			})
		}
		if err := r.CreateBOMItem(bom); err != nil {
			slog.Error("插入 BOM 失败", "code", itemCode, "error", err)
			return
		}
	}
	slog.Info("插入 BOM 成功", "count", len(demoBOMs))

	for lineCode, capabilities := range demoLines {
		line := &domain.Line{
			Code: lineCode,
			Name: demoLineNames[lineCode],
		}
		for itemCode, capacity := range capabilities {
			line.Capabilities = append(line.Capabilities, domain.LineCapability{
				ItemID:         itemByCode[itemCode].ID,
				HourlyCapacity: capacity,
			})
		}
		if err := r.CreateLine(line); err != nil {
			slog.Error("插入产线失败", "code", lineCode, "error", err)
			return
		}
	}
	slog.Info("插入产线成功", "count", len(demoLines))

	now := time.Now()
	for _, d := range demoDemands {
		demand := &domain.Demand{
			ItemID:   itemByCode[d.itemCode].ID,
			Quantity: d.quantity,
			DueAt:    now.Add(time.Duration(d.dueDays) * 24 * time.Hour),
			Priority: d.priority,
		}
		if err := r.CreateDemand(demand); err != nil {
			slog.Error("插入需求失败", "code", d.itemCode, "error", err)
			return
		}
	}
	slog.Info("插入需求成功", "count", len(demoDemands))

	for materialCode, quantity := range demoInventories {
		inventory := &domain.Inventory{
			MaterialID: itemByCode[materialCode].ID,
			Quantity:   quantity,
			SnapshotAt: now,
		}
		if err := r.CreateInventory(inventory); err != nil {
			slog.Error("插入库存快照失败", "code", materialCode, "error", err)
			return
		}
	}
	slog.Info("插入库存快照成功", "count", len(demoInventories))

	window := &domain.PlanningWindow{
		Name:         "演示排产周",
		Description:  "由种子程序插入的演示计划时域",
		HorizonStart: now.Truncate(time.Hour).Add(time.Hour),
		HorizonEnd:   now.Truncate(time.Hour).Add(time.Hour + 3*24*time.Hour),
	}
	if err := r.CreatePlanningWindow(window); err != nil {
		slog.Error("插入计划时域失败", "error", err)
		return
	}
	slog.Info("插入计划时域成功", "windowID", window.ID)
}
