package evaluator

import (
	"testing"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var horizonStart = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// newTestFacts 构造一个两条产线、两个小时的测试问题
func newTestFacts() *domain.ProblemFacts {
	items := []*domain.Item{
		{ID: 1, Code: "A-001", Name: "物料A", Unit: "件"},
		{ID: 2, Code: "B-001", Name: "物料B", Unit: "件"},
		{ID: 3, Code: "M-001", Name: "原材料M", Unit: "千克"},
	}
	lines := []*domain.Line{
		{ID: 1, Code: "LINE-001", Name: "1号产线", Capabilities: []domain.LineCapability{
			{ItemID: 1, HourlyCapacity: 10},
		}},
		{ID: 2, Code: "LINE-002", Name: "2号产线", Capabilities: []domain.LineCapability{
			{ItemID: 1, HourlyCapacity: 10},
			{ItemID: 2, HourlyCapacity: 20},
		}},
	}

	return &domain.ProblemFacts{
		Items:             items,
		Lines:             lines,
		Slots:             domain.EnumerateSlots(lines, horizonStart, horizonStart.Add(2*time.Hour)),
		MaxHourlyQuantity: 1000,
	}
}

// idleSchedule 返回全空闲的排产方案
func idleSchedule(facts *domain.ProblemFacts) *domain.ProductionSchedule {
	plans := make([]domain.HourPlan, len(facts.Slots))
	for i, slot := range facts.Slots {
		plans[i] = domain.HourPlan{Slot: slot}
	}
	return &domain.ProductionSchedule{Facts: facts, Plans: plans}
}

// setPlan 给指定产线和小时的槽位设置排产决策
func setPlan(t *testing.T, schedule *domain.ProductionSchedule, lineID int64, hour int, itemID int64, quantity int32) {
	t.Helper()
	target := horizonStart.Add(time.Duration(hour) * time.Hour)
	for i := range schedule.Plans {
		plan := &schedule.Plans[i]
		if plan.Slot.LineID == lineID && plan.Slot.HourStart.Equal(target) {
			id := itemID
			plan.ItemID = &id
			plan.Quantity = quantity
			return
		}
	}
	t.Fatalf("找不到产线 %d 第 %d 小时的槽位", lineID, hour)
}

func TestEvaluateRejectsMalformedInput(t *testing.T) {
	e := New()

	_, err := e.Evaluate(nil)
	assert.Error(t, err)

	_, err = e.Evaluate(&domain.ProductionSchedule{})
	assert.Error(t, err)

	facts := newTestFacts()
	_, err = e.Evaluate(&domain.ProductionSchedule{Facts: facts, Plans: make([]domain.HourPlan, 1)})
	assert.Error(t, err)
}

func TestEvaluateIdleScheduleHasNoHardPenalty(t *testing.T) {
	e := New()
	facts := newTestFacts()

	score, err := e.Evaluate(idleSchedule(facts))
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Hard)
}

func TestEvaluateFeasibleScheduleHasNoHardPenalty(t *testing.T) {
	e := New()
	facts := newTestFacts()

	schedule := idleSchedule(facts)
	setPlan(t, schedule, 1, 0, 1, 10)
	setPlan(t, schedule, 2, 0, 2, 20)
	setPlan(t, schedule, 2, 1, 2, 15)

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Hard)
}

func TestEvaluateCapabilityViolation(t *testing.T) {
	e := New()
	facts := newTestFacts()

	// 1号产线不能生产物料B
	schedule := idleSchedule(facts)
	setPlan(t, schedule, 1, 0, 2, 7)

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.Equal(t, -e.CapabilityWeight*7, score.Hard)
}

func TestEvaluateIdleWithQuantity(t *testing.T) {
	e := New()
	facts := newTestFacts()

	schedule := idleSchedule(facts)
	schedule.Plans[0].Quantity = 3

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.Equal(t, -e.CapabilityWeight*3, score.Hard)
}

func TestEvaluateNonPositiveQuantity(t *testing.T) {
	e := New()
	facts := newTestFacts()

	schedule := idleSchedule(facts)
	setPlan(t, schedule, 1, 0, 1, 0)

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.Equal(t, -e.CapabilityWeight, score.Hard)
}

func TestEvaluateOverCapacity(t *testing.T) {
	e := New()
	facts := newTestFacts()

	// 1号产线生产物料A的产能是 10，排 14 超了 4
	schedule := idleSchedule(facts)
	setPlan(t, schedule, 1, 0, 1, 14)

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.Equal(t, -e.CapacityWeight*4, score.Hard)
}

func TestEvaluateOverGlobalCap(t *testing.T) {
	e := New()
	facts := newTestFacts()
	facts.MaxHourlyQuantity = 5

	// 产能是 10 但全局上限是 5，排 8 要同时吃超产能之外的全局上限惩罚
	schedule := idleSchedule(facts)
	setPlan(t, schedule, 1, 0, 1, 8)

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.Equal(t, -e.CapacityWeight*3, score.Hard)
}

func TestEvaluateMaterialShortage(t *testing.T) {
	e := New()
	facts := newTestFacts()
	facts.BOMItems = []*domain.BOMItem{
		{ItemID: 1, Components: []domain.BOMComponent{{MaterialID: 3, Quantity: 2}}},
	}
	facts.Inventories = []*domain.Inventory{
		{MaterialID: 3, Quantity: 15, SnapshotAt: horizonStart},
	}

	// 生产 10 件需要 20 千克原材料，但库存只有 15
	schedule := idleSchedule(facts)
	setPlan(t, schedule, 1, 0, 1, 10)

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.Equal(t, -e.ShortageWeight*5, score.Hard)
}

func TestEvaluateLatenessWeightedByPriority(t *testing.T) {
	e := New()
	facts := newTestFacts()
	facts.Demands = []*domain.Demand{
		{ItemID: 2, Quantity: 30, DueAt: horizonStart.Add(time.Hour), Priority: 3},
	}

	// 交期前只完成了 20，短交 10，按优先级 3 加权
	// 第 1 小时的产出在交期之后，不计入
	schedule := idleSchedule(facts)
	setPlan(t, schedule, 2, 0, 2, 20)
	setPlan(t, schedule, 2, 1, 2, 10)

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)

	lateness := e.LatenessWeight * 10 * 3
	assert.InDelta(t, -lateness, score.Soft+e.balancePart(t, schedule), 1e-9)
}

// balancePart 重新计算负载方差惩罚，方便测试把它从软惩罚中剥离
func (e *PenaltyEvaluator) balancePart(t *testing.T, schedule *domain.ProductionSchedule) float64 {
	t.Helper()
	loads := make(map[int64]float64)
	for _, line := range schedule.Facts.Lines {
		loads[line.ID] = 0
	}
	for i := range schedule.Plans {
		loads[schedule.Plans[i].Slot.LineID] += float64(schedule.Plans[i].Quantity)
	}

	avg := 0.0
	for _, load := range loads {
		avg += load
	}
	avg /= float64(len(loads))

	variance := 0.0
	for _, load := range loads {
		variance += (load - avg) * (load - avg)
	}
	variance /= float64(len(loads))

	return e.BalanceWeight * variance
}

func TestEvaluateChangeovers(t *testing.T) {
	e := New()
	facts := newTestFacts()

	// 2号产线连续两个小时生产不同的物料，记一次换型
	schedule := idleSchedule(facts)
	setPlan(t, schedule, 2, 0, 1, 10)
	setPlan(t, schedule, 2, 1, 2, 20)

	score, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.InDelta(t, -e.ChangeoverWeight, score.Soft+e.balancePart(t, schedule), 1e-9)

	// 中间隔着空闲的两个非空闲小时不算换型
	facts2 := &domain.ProblemFacts{
		Items: facts.Items,
		Lines: facts.Lines,
		Slots: domain.EnumerateSlots(facts.Lines, horizonStart, horizonStart.Add(3*time.Hour)),

		MaxHourlyQuantity: 1000,
	}
	schedule2 := idleSchedule(facts2)
	setPlan(t, schedule2, 2, 0, 1, 10)
	setPlan(t, schedule2, 2, 2, 2, 10)

	score2, err := e.Evaluate(schedule2)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score2.Soft+e.balancePart(t, schedule2), 1e-9)
}

func TestEvaluateDeterministic(t *testing.T) {
	e := New()
	facts := newTestFacts()
	facts.Demands = []*domain.Demand{
		{ItemID: 1, Quantity: 25, DueAt: horizonStart.Add(2 * time.Hour), Priority: 2},
	}

	schedule := idleSchedule(facts)
	setPlan(t, schedule, 1, 0, 1, 10)
	setPlan(t, schedule, 2, 1, 1, 10)

	score1, err := e.Evaluate(schedule)
	require.NoError(t, err)
	score2, err := e.Evaluate(schedule)
	require.NoError(t, err)
	assert.Equal(t, score1, score2)
}
