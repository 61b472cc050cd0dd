package scheduler

// randomInitGenome 随机初始化一个个体
// 每个槽位在允许集合中均匀抽取物料，非空闲时在 [1, 最大合法产量] 中均匀抽取数量
func (s *Scheduler) randomInitGenome() *Genome {
	n := len(s.facts.Slots)
	g := &Genome{
		items: make([]int, n),
		qtys:  make([]int32, n),
	}

	for i := 0; i < n; i++ {
		choices := s.index.allowed[i]
		item := choices[s.rng.Intn(len(choices))]
		g.items[i] = item

		if item == IdleGene {
			g.qtys[i] = 0
			continue
		}
		g.qtys[i] = s.rng.Int31n(s.index.maxQuantity(i, item)) + 1
	}

	return g
}

// tournamentSelect 锦标赛选择：有放回地随机抽取 k 个个体，返回得分最优的那个
func (s *Scheduler) tournamentSelect(pop []*Genome) *Genome {
	best := pop[s.rng.Intn(len(pop))]
	for i := int32(1); i < s.parameters.TournamentSize; i++ {
		cand := pop[s.rng.Intn(len(pop))]
		if cand.score.Better(best.score) {
			best = cand
		}
	}
	return best
}

// uniformCrossover 均匀交叉：每个槽位独立地以 0.5 的概率交换两个个体的基因
// (物料, 数量) 必须作为整体交换，不能拆开，否则会破坏槽位内两个分量的一致性
func (s *Scheduler) uniformCrossover(g1 *Genome, g2 *Genome) {
	for i := range g1.items {
		if s.rng.Float64() < 0.5 {
			g1.items[i], g2.items[i] = g2.items[i], g1.items[i]
			g1.qtys[i], g2.qtys[i] = g2.qtys[i], g1.qtys[i]
		}
	}
}

// mutate 变异：每个槽位独立地以变异概率在允许集合中重新抽取物料
// 新选择为空闲时数量清零；非空闲时一半概率在原数量附近小幅扰动，一半概率均匀重抽
func (s *Scheduler) mutate(g *Genome) {
	for i := range g.items {
		if s.rng.Float64() >= s.parameters.MutationRate {
			continue
		}

		choices := s.index.allowed[i]
		item := choices[s.rng.Intn(len(choices))]

		if item == IdleGene {
			g.items[i] = IdleGene
			g.qtys[i] = 0
			continue
		}

		maxQty := s.index.maxQuantity(i, item)
		if maxQty <= 0 {
			// 允许集合中不会出现零产能的物料，这里只是以防万一
			g.items[i] = IdleGene
			g.qtys[i] = 0
			continue
		}

		var qty int32
		if s.rng.Float64() < 0.5 {
			delta := s.rng.Int31n(maxMutationDelta) + 1
			if s.rng.Intn(2) == 0 {
				delta = -delta
			}
			qty = g.qtys[i] + delta
			if qty < 1 {
				qty = 1
			}
			if qty > maxQty {
				qty = maxQty
			}
		} else {
			qty = s.rng.Int31n(maxQty) + 1
		}

		g.items[i] = item
		g.qtys[i] = qty
	}
}
