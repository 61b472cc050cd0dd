package evaluator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
	"github.com/smartmes-dev/line-planner/backend/internal/scheduler"
)

/**
 * PenaltyEvaluator 是默认的排产方案评估器
 * 得分为字典序的 (硬惩罚, 软惩罚)，两个分量都不大于 0：
 * 		1. 硬惩罚：产线能力不匹配、超产能、超全局上限、槽位计划不一致、原材料短缺
 * 		2. 软惩罚：按优先级加权的交期延误、产线换型次数、产线负载不均衡（方差）
 * 对同一方案的评估结果是确定的，且没有任何副作用，可以在相互独立的方案上并发调用
 */
type PenaltyEvaluator struct {
	CapabilityWeight float64 // 能力不匹配（每单位产量）
	CapacityWeight   float64 // 超出产能（每单位超出量）
	ShortageWeight   float64 // 原材料短缺（每单位短缺量）
	LatenessWeight   float64 // 交期延误（每单位短交量，乘以需求优先级）
	ChangeoverWeight float64 // 换型（每次）
	BalanceWeight    float64 // 负载不均衡（产线产量方差）
}

func New() *PenaltyEvaluator {
	return &PenaltyEvaluator{
		CapabilityWeight: 100,
		CapacityWeight:   10,
		ShortageWeight:   1,
		LatenessWeight:   1,
		ChangeoverWeight: 1,
		BalanceWeight:    0.001,
	}
}

func (e *PenaltyEvaluator) Evaluate(schedule *domain.ProductionSchedule) (scheduler.Score, error) {
	if schedule == nil || schedule.Facts == nil {
		return scheduler.Score{}, fmt.Errorf("排产方案缺少问题事实")
	}
	facts := schedule.Facts
	if len(schedule.Plans) != len(facts.Slots) {
		return scheduler.Score{}, fmt.Errorf("排产决策数量 %d 与槽位数量 %d 不一致", len(schedule.Plans), len(facts.Slots))
	}

	hard := e.hardPenalty(schedule)
	soft := e.softPenalty(schedule)

	return scheduler.Score{Hard: hard, Soft: soft}, nil
}

func (e *PenaltyEvaluator) hardPenalty(schedule *domain.ProductionSchedule) float64 {
	facts := schedule.Facts
	hard := 0.0

	// 逐槽位检查结构性硬约束
	for i := range schedule.Plans {
		plan := &schedule.Plans[i]

		if plan.ItemID == nil {
			// 空闲槽位的数量必须为 0
			if plan.Quantity != 0 {
				hard -= e.CapabilityWeight * float64(plan.Quantity)
			}
			continue
		}
		if plan.Quantity <= 0 {
			hard -= e.CapabilityWeight
			continue
		}

		line := facts.LineByID(plan.Slot.LineID)
		if line == nil || !line.CanProduce(*plan.ItemID) {
			// 产线不能生产该物料
			hard -= e.CapabilityWeight * float64(plan.Quantity)
			continue
		}

		if capacity := line.HourlyCapacity(*plan.ItemID); plan.Quantity > capacity {
			hard -= e.CapacityWeight * float64(plan.Quantity-capacity)
		}
		if plan.Quantity > facts.MaxHourlyQuantity {
			hard -= e.CapacityWeight * float64(plan.Quantity-facts.MaxHourlyQuantity)
		}
	}

	// 检查原材料是否足够：按 BOM 展开所有排产决策的原材料消耗，再和库存比较
	bomMap := make(map[int64]*domain.BOMItem, len(facts.BOMItems))
	for _, bom := range facts.BOMItems {
		bomMap[bom.ItemID] = bom
	}

	consumption := make(map[int64]float64)
	for i := range schedule.Plans {
		plan := &schedule.Plans[i]
		if plan.ItemID == nil || plan.Quantity <= 0 {
			continue
		}
		bom, exists := bomMap[*plan.ItemID]
		if !exists {
			continue
		}
		for _, comp := range bom.Components {
			consumption[comp.MaterialID] += float64(plan.Quantity) * comp.Quantity
		}
	}

	available := make(map[int64]float64)
	for _, inv := range facts.Inventories {
		available[inv.MaterialID] += inv.Quantity
	}

	for materialID, used := range consumption {
		if shortage := used - available[materialID]; shortage > 0 {
			hard -= e.ShortageWeight * shortage
		}
	}

	return hard
}

func (e *PenaltyEvaluator) softPenalty(schedule *domain.ProductionSchedule) float64 {
	facts := schedule.Facts
	soft := 0.0

	// 交期延误：每条需求检查交期前的累计产量，短交部分按优先级加权惩罚
	for _, demand := range facts.Demands {
		var producedByDue int32
		for i := range schedule.Plans {
			plan := &schedule.Plans[i]
			if plan.ItemID == nil || *plan.ItemID != demand.ItemID {
				continue
			}
			// 只统计在交期前完成的小时
			if plan.Slot.HourStart.Add(time.Hour).After(demand.DueAt) {
				continue
			}
			producedByDue += plan.Quantity
		}

		if shortfall := demand.Quantity - producedByDue; shortfall > 0 {
			soft -= e.LatenessWeight * float64(shortfall) * float64(demand.Priority)
		}
	}

	// 按产线分组并按小时排序，之后统计换型次数和产线负载
	lineHours := make(map[int64][]*domain.HourPlan)
	for i := range schedule.Plans {
		plan := &schedule.Plans[i]
		lineHours[plan.Slot.LineID] = append(lineHours[plan.Slot.LineID], plan)
	}
	for _, plans := range lineHours {
		sort.Slice(plans, func(i, j int) bool {
			return plans[i].Slot.HourStart.Before(plans[j].Slot.HourStart)
		})
	}

	// 换型：同一产线相邻两个非空闲小时生产不同物料记一次换型
	changeovers := 0
	for _, plans := range lineHours {
		for i := 1; i < len(plans); i++ {
			prev, cur := plans[i-1], plans[i]
			if prev.ItemID == nil || cur.ItemID == nil {
				continue
			}
			if *prev.ItemID != *cur.ItemID {
				changeovers++
			}
		}
	}
	soft -= e.ChangeoverWeight * float64(changeovers)

	// 负载不均衡：各产线总产量的方差
	if len(lineHours) > 0 {
		loads := make([]float64, 0, len(lineHours))
		for _, plans := range lineHours {
			load := 0.0
			for _, plan := range plans {
				load += float64(plan.Quantity)
			}
			loads = append(loads, load)
		}

		avg := 0.0
		for _, load := range loads {
			avg += load
		}
		avg /= float64(len(loads))

		variance := 0.0
		for _, load := range loads {
			variance += math.Pow(load-avg, 2)
		}
		variance /= float64(len(loads))

		soft -= e.BalanceWeight * variance
	}

	return soft
}
