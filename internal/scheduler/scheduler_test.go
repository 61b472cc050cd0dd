package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEvaluator 奖励总产量更高的方案，用于驱动测试中的演化
type stubEvaluator struct{}

func (stubEvaluator) Evaluate(schedule *domain.ProductionSchedule) (Score, error) {
	total := int32(0)
	for i := range schedule.Plans {
		total += schedule.Plans[i].Quantity
	}
	return Score{Hard: 0, Soft: -1 / (1 + float64(total))}, nil
}

type failEvaluator struct{}

func (failEvaluator) Evaluate(schedule *domain.ProductionSchedule) (Score, error) {
	return Score{}, errors.New("评估失败")
}

// newTestFacts 构造一个小型测试问题：
// 1号产线能生产 A 和 B，2号产线只能生产 B 且产能超过全局上限，3号产线没有任何生产能力
func newTestFacts(t *testing.T) *domain.ProblemFacts {
	t.Helper()

	items := []*domain.Item{
		{ID: 1, Code: "A-001", Name: "物料A", Unit: "件"},
		{ID: 2, Code: "B-001", Name: "物料B", Unit: "件"},
		{ID: 3, Code: "C-001", Name: "物料C", Unit: "件"},
	}
	lines := []*domain.Line{
		{ID: 1, Code: "LINE-001", Name: "1号产线", Capabilities: []domain.LineCapability{
			{ItemID: 1, HourlyCapacity: 5},
			{ItemID: 2, HourlyCapacity: 8},
		}},
		{ID: 2, Code: "LINE-002", Name: "2号产线", Capabilities: []domain.LineCapability{
			{ItemID: 2, HourlyCapacity: 1200},
		}},
		{ID: 3, Code: "LINE-003", Name: "3号产线"},
	}

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	slots := domain.EnumerateSlots(lines, start, start.Add(2*time.Hour))

	return &domain.ProblemFacts{
		Items:             items,
		Lines:             lines,
		Slots:             slots,
		MaxHourlyQuantity: 1000,
	}
}

func newTestParameters(seed int64) *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 20
	p.MaxGenerations = 10
	p.Parallel = false
	p.Seed = &seed
	return p
}

func TestParametersValidate(t *testing.T) {
	require.NoError(t, DefaultParameters().Validate())

	cases := []struct {
		name   string
		modify func(p *Parameters)
	}{
		{"种群大小为零", func(p *Parameters) { p.PopulationSize = 0 }},
		{"迭代代数为负", func(p *Parameters) { p.MaxGenerations = -1 }},
		{"交叉概率超过 1", func(p *Parameters) { p.CrossoverRate = 1.5 }},
		{"变异概率为负", func(p *Parameters) { p.MutationRate = -0.1 }},
		{"锦标赛规模为零", func(p *Parameters) { p.TournamentSize = 0 }},
		{"精英数量为负", func(p *Parameters) { p.EliteCount = -1 }},
		{"精英数量超过种群大小", func(p *Parameters) { p.EliteCount = p.PopulationSize + 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParameters()
			tc.modify(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	facts := newTestFacts(t)

	_, err := New(newTestParameters(1), nil, stubEvaluator{})
	assert.Error(t, err)

	_, err = New(newTestParameters(1), facts, nil)
	assert.Error(t, err)

	bad := newTestParameters(1)
	bad.PopulationSize = 0
	_, err = New(bad, facts, stubEvaluator{})
	assert.Error(t, err)
}

func TestBuildFeasibilityIndex(t *testing.T) {
	facts := newTestFacts(t)
	index := buildFeasibilityIndex(facts)

	for si := range facts.Slots {
		// 空闲对任何槽位都必须是合法选择
		assert.True(t, index.contains(si, IdleGene))
	}

	for si, slot := range facts.Slots {
		switch slot.LineID {
		case 1:
			// 1号产线：A（下标 0）和 B（下标 1）合法，C（下标 2）不合法
			assert.True(t, index.contains(si, 0))
			assert.True(t, index.contains(si, 1))
			assert.False(t, index.contains(si, 2))
			assert.Equal(t, int32(5), index.maxQuantity(si, 0))
			assert.Equal(t, int32(8), index.maxQuantity(si, 1))
		case 2:
			// 2号产线：只有 B 合法，产能被全局上限截断
			assert.False(t, index.contains(si, 0))
			assert.True(t, index.contains(si, 1))
			assert.Equal(t, int32(1000), index.maxQuantity(si, 1))
		case 3:
			// 没有生产能力的产线只剩空闲可选
			assert.Equal(t, []int{IdleGene}, index.allowed[si])
		}
	}
}

// assertFeasible 检查个体的每个基因都落在合法选择表内
func assertFeasible(t *testing.T, s *Scheduler, g *Genome) {
	t.Helper()
	require.Len(t, g.items, len(s.facts.Slots))
	require.Len(t, g.qtys, len(s.facts.Slots))

	for i := range g.items {
		assert.True(t, s.index.contains(i, g.items[i]), "槽位 %d 的物料选择 %d 不合法", i, g.items[i])
		if g.items[i] == IdleGene {
			assert.Equal(t, int32(0), g.qtys[i])
			continue
		}
		maxQty := s.index.maxQuantity(i, g.items[i])
		assert.GreaterOrEqual(t, g.qtys[i], int32(1))
		assert.LessOrEqual(t, g.qtys[i], maxQty)
	}
}

func TestRandomInitGenomeFeasible(t *testing.T) {
	s, err := New(newTestParameters(42), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		assertFeasible(t, s, s.randomInitGenome())
	}
}

func TestUniformCrossoverKeepsPairsTogether(t *testing.T) {
	s, err := New(newTestParameters(7), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	for round := 0; round < 20; round++ {
		g1 := s.randomInitGenome()
		g2 := s.randomInitGenome()
		p1 := g1.clone()
		p2 := g2.clone()

		s.uniformCrossover(g1, g2)

		for i := range g1.items {
			// 每个槽位上的 (物料, 数量) 要么保持原样，要么整体互换
			kept := g1.items[i] == p1.items[i] && g1.qtys[i] == p1.qtys[i] &&
				g2.items[i] == p2.items[i] && g2.qtys[i] == p2.qtys[i]
			swapped := g1.items[i] == p2.items[i] && g1.qtys[i] == p2.qtys[i] &&
				g2.items[i] == p1.items[i] && g2.qtys[i] == p1.qtys[i]
			assert.True(t, kept || swapped, "槽位 %d 的基因对被拆开了", i)
		}

		assertFeasible(t, s, g1)
		assertFeasible(t, s, g2)
	}
}

func TestMutateKeepsFeasibility(t *testing.T) {
	p := newTestParameters(11)
	p.MutationRate = 1.0
	s, err := New(p, newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	for round := 0; round < 50; round++ {
		g := s.randomInitGenome()
		s.mutate(g)
		assertFeasible(t, s, g)
	}
}

func TestTournamentSelectPrefersBetter(t *testing.T) {
	s, err := New(newTestParameters(3), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	best := &Genome{score: Score{Hard: 0, Soft: -1}}
	worst := &Genome{score: Score{Hard: -100, Soft: 0}}
	pop := []*Genome{worst, best, worst, worst}

	bestWins := 0
	const rounds = 1000
	for i := 0; i < rounds; i++ {
		if s.tournamentSelect(pop) == best {
			bestWins++
		}
	}

	// 锦标赛规模为 4 时，最优个体只要被抽到一次就会胜出，
	// 没有被抽到的概率是 (3/4)^4 ≈ 31.6%，胜率应该显著超过一半
	assert.Greater(t, bestWins, rounds/2)
}

func TestUpdateBestDeepCopies(t *testing.T) {
	s, err := New(newTestParameters(5), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	g := s.randomInitGenome()
	g.score = Score{Hard: 0, Soft: -1}
	best := s.updateBest(nil, []*Genome{g})
	require.NotNil(t, best)
	require.NotSame(t, g, best)

	// 后续繁殖修改原个体时，已记录的最优个体不能跟着变
	original := best.clone()
	for i := range g.items {
		g.items[i] = IdleGene
		g.qtys[i] = 0
	}
	assert.Equal(t, original.items, best.items)
	assert.Equal(t, original.qtys, best.qtys)
}

func TestUpdateBestOnlyOnStrictImprovement(t *testing.T) {
	s, err := New(newTestParameters(5), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	g1 := s.randomInitGenome()
	g1.score = Score{Hard: 0, Soft: -2}
	best := s.updateBest(nil, []*Genome{g1})

	// 得分相同的个体不能取代当前最优
	g2 := s.randomInitGenome()
	g2.score = Score{Hard: 0, Soft: -2}
	next := s.updateBest(best, []*Genome{g2})
	assert.Same(t, best, next)

	// 硬惩罚相同、软惩罚更优的个体才能取代
	g3 := s.randomInitGenome()
	g3.score = Score{Hard: 0, Soft: -1}
	next = s.updateBest(best, []*Genome{g3})
	assert.NotSame(t, best, next)
	assert.Equal(t, g3.score, next.score)
}

func TestScoreBetterLexicographic(t *testing.T) {
	assert.True(t, Score{Hard: -1, Soft: -100}.Better(Score{Hard: -2, Soft: 0}))
	assert.True(t, Score{Hard: 0, Soft: -1}.Better(Score{Hard: 0, Soft: -2}))
	assert.False(t, Score{Hard: 0, Soft: -2}.Better(Score{Hard: 0, Soft: -2}))
	assert.False(t, Score{Hard: -3, Soft: 0}.Better(Score{Hard: 0, Soft: -100}))
}

func TestScheduleProducesFeasiblePlans(t *testing.T) {
	facts := newTestFacts(t)
	s, err := New(newTestParameters(99), facts, stubEvaluator{})
	require.NoError(t, err)

	schedule, score, err := s.Schedule()
	require.NoError(t, err)
	require.Len(t, schedule.Plans, len(facts.Slots))
	assert.LessOrEqual(t, score.Soft, 0.0)

	for i, plan := range schedule.Plans {
		assert.Equal(t, facts.Slots[i], plan.Slot)
		if plan.Idle() {
			assert.Equal(t, int32(0), plan.Quantity)
			continue
		}
		line := facts.LineByID(plan.Slot.LineID)
		require.NotNil(t, line)
		capacity := line.HourlyCapacity(*plan.ItemID)
		if capacity > facts.MaxHourlyQuantity {
			capacity = facts.MaxHourlyQuantity
		}
		assert.True(t, line.CanProduce(*plan.ItemID))
		assert.GreaterOrEqual(t, plan.Quantity, int32(1))
		assert.LessOrEqual(t, plan.Quantity, capacity)
	}
}

func TestScheduleIdleOnlyLine(t *testing.T) {
	facts := newTestFacts(t)
	s, err := New(newTestParameters(13), facts, stubEvaluator{})
	require.NoError(t, err)

	schedule, _, err := s.Schedule()
	require.NoError(t, err)

	// 没有任何生产能力的3号产线只能输出空闲决策
	for _, plan := range schedule.Plans {
		if plan.Slot.LineID == 3 {
			assert.True(t, plan.Idle())
			assert.Equal(t, int32(0), plan.Quantity)
		}
	}
}

func TestScheduleDeterministicWithSeed(t *testing.T) {
	run := func() (*domain.ProductionSchedule, Score) {
		s, err := New(newTestParameters(2026), newTestFacts(t), stubEvaluator{})
		require.NoError(t, err)
		schedule, score, err := s.Schedule()
		require.NoError(t, err)
		return schedule, score
	}

	schedule1, score1 := run()
	schedule2, score2 := run()

	assert.Equal(t, score1, score2)
	require.Len(t, schedule2.Plans, len(schedule1.Plans))
	for i := range schedule1.Plans {
		p1, p2 := schedule1.Plans[i], schedule2.Plans[i]
		assert.Equal(t, p1.Slot, p2.Slot)
		assert.Equal(t, p1.Idle(), p2.Idle())
		assert.Equal(t, p1.Quantity, p2.Quantity)
		if !p1.Idle() && !p2.Idle() {
			assert.Equal(t, *p1.ItemID, *p2.ItemID)
		}
	}
}

func TestScheduleEvaluatorErrorIsFatal(t *testing.T) {
	s, err := New(newTestParameters(1), newTestFacts(t), failEvaluator{})
	require.NoError(t, err)

	_, _, err = s.Schedule()
	assert.Error(t, err)
}

func TestEvaluatePopulationParallelMatchesSerial(t *testing.T) {
	s, err := New(newTestParameters(17), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	pop1 := make([]*Genome, 30)
	pop2 := make([]*Genome, 30)
	for i := range pop1 {
		pop1[i] = s.randomInitGenome()
		pop2[i] = pop1[i].clone()
	}

	s.parameters.Parallel = false
	require.NoError(t, s.evaluatePopulation(pop1))

	s.parameters.Parallel = true
	require.NoError(t, s.evaluatePopulation(pop2))

	for i := range pop1 {
		assert.Equal(t, pop1[i].score, pop2[i].score)
	}
}

func TestEvaluatePopulationParallelError(t *testing.T) {
	p := newTestParameters(17)
	p.Parallel = true
	s, err := New(p, newTestFacts(t), failEvaluator{})
	require.NoError(t, err)

	pop := make([]*Genome, 10)
	for i := range pop {
		pop[i] = s.randomInitGenome()
	}
	assert.Error(t, s.evaluatePopulation(pop))
}

func TestMaterializeIdempotent(t *testing.T) {
	s, err := New(newTestParameters(31), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	g := s.randomInitGenome()
	schedule1 := s.materialize(g)
	schedule2 := s.materialize(g)

	require.Len(t, schedule2.Plans, len(schedule1.Plans))
	for i := range schedule1.Plans {
		p1, p2 := schedule1.Plans[i], schedule2.Plans[i]
		assert.Equal(t, p1.Slot, p2.Slot)
		assert.Equal(t, p1.Quantity, p2.Quantity)
		require.Equal(t, p1.Idle(), p2.Idle())
		if !p1.Idle() {
			assert.Equal(t, *p1.ItemID, *p2.ItemID)
		}
	}

	score1, err := s.evaluator.Evaluate(schedule1)
	require.NoError(t, err)
	score2, err := s.evaluator.Evaluate(schedule2)
	require.NoError(t, err)
	assert.Equal(t, score1, score2)
}

func TestElitismBestNeverRegresses(t *testing.T) {
	s, err := New(newTestParameters(47), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	pop := make([]*Genome, s.parameters.PopulationSize)
	for i := range pop {
		pop[i] = s.randomInitGenome()
	}
	require.NoError(t, s.evaluatePopulation(pop))

	bestOf := func(pop []*Genome) Score {
		best := pop[0].score
		for _, g := range pop {
			if g.score.Better(best) {
				best = g.score
			}
		}
		return best
	}

	// 只要精英数量不小于 1，每代的最优得分就不会退化
	prev := bestOf(pop)
	for gen := 0; gen < 10; gen++ {
		pop = s.evolve(pop)
		require.NoError(t, s.evaluatePopulation(pop))
		cur := bestOf(pop)
		assert.False(t, prev.Better(cur), "第 %d 代的最优得分退化了", gen)
		prev = cur
	}
}

func TestEvolvePureElitismKeepsPopulationIdentical(t *testing.T) {
	p := newTestParameters(53)
	p.PopulationSize = 10
	p.EliteCount = 10
	s, err := New(p, newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	pop := make([]*Genome, p.PopulationSize)
	for i := range pop {
		pop[i] = s.randomInitGenome()
	}
	require.NoError(t, s.evaluatePopulation(pop))

	snapshot := make([]*Genome, len(pop))
	for i, g := range pop {
		snapshot[i] = g.clone()
	}

	// 精英数量等于种群大小时，选择、交叉和变异都不会发生，
	// 每一代的种群内容都和第一代完全一致
	for gen := 0; gen < 5; gen++ {
		pop = s.evolve(pop)
		require.NoError(t, s.evaluatePopulation(pop))

		require.Len(t, pop, len(snapshot))
		matched := make([]bool, len(snapshot))
		for _, g := range pop {
			found := false
			for j, orig := range snapshot {
				if matched[j] {
					continue
				}
				if assert.ObjectsAreEqual(orig.items, g.items) && assert.ObjectsAreEqual(orig.qtys, g.qtys) {
					matched[j] = true
					found = true
					break
				}
			}
			assert.True(t, found, "第 %d 代出现了初始种群之外的个体", gen)
		}
	}
}

func TestMutationItemDistributionIsUniform(t *testing.T) {
	items := []*domain.Item{
		{ID: 1, Code: "A-001", Name: "物料A", Unit: "件"},
		{ID: 2, Code: "B-001", Name: "物料B", Unit: "件"},
		{ID: 3, Code: "C-001", Name: "物料C", Unit: "件"},
	}
	lines := []*domain.Line{
		{ID: 1, Code: "LINE-001", Name: "1号产线", Capabilities: []domain.LineCapability{
			{ItemID: 1, HourlyCapacity: 10},
			{ItemID: 2, HourlyCapacity: 10},
			{ItemID: 3, HourlyCapacity: 10},
		}},
	}
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	facts := &domain.ProblemFacts{
		Items:             items,
		Lines:             lines,
		Slots:             domain.EnumerateSlots(lines, start, start.Add(time.Hour)),
		MaxHourlyQuantity: 1000,
	}
	require.Len(t, facts.Slots, 1)

	p := newTestParameters(61)
	p.MutationRate = 1.0
	s, err := New(p, facts, stubEvaluator{})
	require.NoError(t, err)

	// 变异概率为 1 时反复重抽单槽位个体，空闲和三种物料的出现频率应该接近均匀
	counts := make(map[int]int)
	const samples = 1000
	for i := 0; i < samples; i++ {
		g := s.randomInitGenome()
		s.mutate(g)
		counts[g.items[0]]++
	}

	require.Len(t, s.index.allowed[0], 4)
	expected := samples / 4
	for _, choice := range s.index.allowed[0] {
		assert.InDelta(t, expected, counts[choice], float64(expected)*0.35,
			"选择 %d 的频率偏离均匀分布太远", choice)
	}
}

func TestEvolveKeepsElitesAndPopulationSize(t *testing.T) {
	s, err := New(newTestParameters(23), newTestFacts(t), stubEvaluator{})
	require.NoError(t, err)

	pop := make([]*Genome, s.parameters.PopulationSize)
	for i := range pop {
		pop[i] = s.randomInitGenome()
	}
	require.NoError(t, s.evaluatePopulation(pop))

	bestScore := pop[0].score
	for _, g := range pop {
		if g.score.Better(bestScore) {
			bestScore = g.score
		}
	}

	next := s.evolve(pop)
	require.Len(t, next, int(s.parameters.PopulationSize))

	// 精英原样保留在新种群的头部
	assert.Equal(t, bestScore, next[0].score)
	for _, g := range next {
		assertFeasible(t, s, g)
	}
}
