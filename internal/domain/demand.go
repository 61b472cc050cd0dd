package domain

import "time"

type Demand struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemID"`
	Quantity  int32     `json:"quantity"`
	DueAt     time.Time `json:"dueAt"`
	Priority  int32     `json:"priority"` // 数值越大优先级越高
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

// Inventory: 某种原材料在某个时间点的库存快照
type Inventory struct {
	ID         int64     `json:"id"`
	MaterialID int64     `json:"materialID"`
	Quantity   float64   `json:"quantity"`
	SnapshotAt time.Time `json:"snapshotAt"`
	Version    int32     `json:"-"`
}

// Requirement: 由需求和 BOM 推导出的原材料总需求，仅供评估器使用
type Requirement struct {
	MaterialID int64     `json:"materialID"`
	Quantity   float64   `json:"quantity"`
	NeededBy   time.Time `json:"neededBy"`
}

// DeriveRequirements 按需求展开 BOM，汇总每种原材料在各个交期前的总需求
func DeriveRequirements(bomItems []*BOMItem, demands []*Demand) []Requirement {
	bomMap := make(map[int64]*BOMItem)
	for _, b := range bomItems {
		bomMap[b.ItemID] = b
	}

	requirements := make([]Requirement, 0)
	for _, demand := range demands {
		bom, exists := bomMap[demand.ItemID]
		if !exists {
			// 没有 BOM 的物料视为不消耗原材料
			continue
		}

		for _, comp := range bom.Components {
			requirements = append(requirements, Requirement{
				MaterialID: comp.MaterialID,
				Quantity:   float64(demand.Quantity) * comp.Quantity,
				NeededBy:   demand.DueAt,
			})
		}
	}

	return requirements
}
