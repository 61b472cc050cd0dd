package scheduler

import "github.com/smartmes-dev/line-planner/backend/internal/domain"

// feasibilityIndex: 预计算的槽位合法选择表，是所有遗传算子的唯一合法性依据
// 任何会生成或修改基因的地方都必须查询这张表，从源头上避免产生结构性非法的选择
type feasibilityIndex struct {
	numItems int
	allowed  [][]int // 每个槽位允许的物料下标集合，空闲永远合法
	maxQty   []int32 // 按 (槽位下标 * numItems + 物料下标) 展平的单小时最大合法产量
}

func buildFeasibilityIndex(facts *domain.ProblemFacts) *feasibilityIndex {
	lineMap := make(map[int64]*domain.Line, len(facts.Lines))
	for _, line := range facts.Lines {
		lineMap[line.ID] = line
	}

	index := &feasibilityIndex{
		numItems: len(facts.Items),
		allowed:  make([][]int, len(facts.Slots)),
		maxQty:   make([]int32, len(facts.Slots)*len(facts.Items)),
	}

	for si, slot := range facts.Slots {
		// 空闲永远是合法选择，产线能力数据缺失时槽位就只剩空闲可选
		choices := []int{IdleGene}

		line := lineMap[slot.LineID]
		if line != nil {
			for ii, item := range facts.Items {
				qty := line.HourlyCapacity(item.ID)
				if qty > facts.MaxHourlyQuantity {
					qty = facts.MaxHourlyQuantity
				}
				if qty <= 0 {
					// 最大合法产量为 0 的物料不进入允许集合
					continue
				}
				index.maxQty[si*index.numItems+ii] = qty
				choices = append(choices, ii)
			}
		}

		index.allowed[si] = choices
	}

	return index
}

// maxQuantity 返回槽位生产某物料的单小时最大合法产量
func (fi *feasibilityIndex) maxQuantity(slot, item int) int32 {
	if item == IdleGene {
		return 0
	}
	return fi.maxQty[slot*fi.numItems+item]
}

// contains 判断某个物料选择对槽位是否合法
func (fi *feasibilityIndex) contains(slot, item int) bool {
	for _, choice := range fi.allowed[slot] {
		if choice == item {
			return true
		}
	}
	return false
}
