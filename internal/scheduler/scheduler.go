package scheduler

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

type Scheduler struct {
	parameters *Parameters
	facts      *domain.ProblemFacts
	evaluator  Evaluator
	index      *feasibilityIndex
	rng        *rand.Rand
	noImprove  int32 // 连续未改进的代数，预留给后续的提前停止策略
}

func New(parameters *Parameters, facts *domain.ProblemFacts, evaluator Evaluator) (*Scheduler, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	if facts == nil || len(facts.Slots) == 0 {
		return nil, errors.New("排产槽位为空，无法进行优化")
	}
	if evaluator == nil {
		return nil, errors.New("未提供评估器")
	}

	// 提供确定性种子时使用单一共享随机源，保证运行可复现
	// 遗传算子只在主控制流程中使用随机源，因此不存在竞争
	var source rand.Source
	if parameters.Seed != nil {
		source = rand.NewSource(*parameters.Seed)
	} else {
		source = rand.NewSource(time.Now().UnixNano())
	}

	return &Scheduler{
		parameters: parameters,
		facts:      facts,
		evaluator:  evaluator,
		index:      buildFeasibilityIndex(facts),
		rng:        rand.New(source),
	}, nil
}

// Schedule 执行完整的演化过程，返回历代全局最优的排产方案及其得分
func (s *Scheduler) Schedule() (*domain.ProductionSchedule, Score, error) {
	// 生成初始种群
	pop := make([]*Genome, s.parameters.PopulationSize)
	for i := range pop {
		pop[i] = s.randomInitGenome()
	}
	if err := s.evaluatePopulation(pop); err != nil {
		return nil, Score{}, err
	}

	// 全局最优跨代跟踪，返回的是历代最优而不仅仅是最后一代的最优
	var best *Genome
	best = s.updateBest(best, pop)

	// 迭代
	for gen := int32(0); gen < s.parameters.MaxGenerations; gen++ {
		pop = s.evolve(pop)
		if err := s.evaluatePopulation(pop); err != nil {
			return nil, Score{}, err
		}
		best = s.updateBest(best, pop)
	}

	return s.materialize(best), best.score, nil
}

// updateBest 在种群中寻找严格优于当前全局最优的个体
// 这里需要使用深拷贝，防止后续繁殖的过程中修改到已记录的最优个体
func (s *Scheduler) updateBest(best *Genome, pop []*Genome) *Genome {
	improved := false
	for _, g := range pop {
		if best == nil || g.score.Better(best.score) {
			best = g.clone()
			improved = true
		}
	}

	if improved {
		s.noImprove = 0
	} else {
		s.noImprove++
	}

	return best
}

// evolve 生成下一代种群：精英原样保留，其余位置由锦标赛选择、交叉、变异产生
func (s *Scheduler) evolve(pop []*Genome) []*Genome {
	// 按得分从高到低稳定排序，保证精英的保留顺序每代一致
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].score.Better(pop[j].score)
	})

	newPop := make([]*Genome, 0, s.parameters.PopulationSize)

	// 保留精英，不经过选择、交叉和变异
	for i := int32(0); i < s.parameters.EliteCount; i++ {
		newPop = append(newPop, pop[i].clone())
	}

	// 剩余位置由两个独立选出的父本繁殖产生
	for len(newPop) < int(s.parameters.PopulationSize) {
		c1 := s.tournamentSelect(pop).clone()
		c2 := s.tournamentSelect(pop).clone()

		if s.rng.Float64() < s.parameters.CrossoverRate {
			s.uniformCrossover(c1, c2)
		}

		s.mutate(c1)
		s.mutate(c2)

		newPop = append(newPop, c1)
		if len(newPop) < int(s.parameters.PopulationSize) {
			newPop = append(newPop, c2)
		}
	}

	return newPop
}

// materialize 把基因编码还原成完整的排产方案
// 只读事实按引用共享，每次物化只重建每个槽位的决策列表
func (s *Scheduler) materialize(g *Genome) *domain.ProductionSchedule {
	plans := make([]domain.HourPlan, len(s.facts.Slots))
	for i, slot := range s.facts.Slots {
		plan := domain.HourPlan{Slot: slot}
		if g.items[i] != IdleGene {
			itemID := s.facts.Items[g.items[i]].ID
			plan.ItemID = &itemID
			plan.Quantity = g.qtys[i]
		}
		plans[i] = plan
	}

	return &domain.ProductionSchedule{
		Facts: s.facts,
		Plans: plans,
	}
}
