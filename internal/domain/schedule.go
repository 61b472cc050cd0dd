package domain

// ProblemFacts: 一次优化运行所需的全部只读事实
// 加载完成后不再修改，所有候选排产方案共享同一份
type ProblemFacts struct {
	Items             []*Item        `json:"items"`
	Lines             []*Line        `json:"lines"`
	Slots             []LineHourSlot `json:"slots"`
	BOMItems          []*BOMItem     `json:"bomItems"`
	Inventories       []*Inventory   `json:"inventories"`
	Demands           []*Demand      `json:"demands"`
	Requirements      []Requirement  `json:"requirements"`
	MaxHourlyQuantity int32          `json:"maxHourlyQuantity"` // 任意槽位单小时产量的全局上限
}

// LineByID 查找产线，不存在时返回 nil
func (f *ProblemFacts) LineByID(id int64) *Line {
	for _, line := range f.Lines {
		if line.ID == id {
			return line
		}
	}
	return nil
}

// ProductionSchedule: 一个完整的候选排产方案
// 只读事实通过引用共享，候选之间仅 Plans 不同
type ProductionSchedule struct {
	Facts *ProblemFacts `json:"facts"`
	Plans []HourPlan    `json:"plans"`
}
