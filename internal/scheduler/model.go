package scheduler

import "fmt"

// IdleGene: 表示槽位空闲的哨兵值
const IdleGene = -1

// 数量扰动变异的最大步长
const maxMutationDelta = 3

// Genome: 一个完整候选排产方案的整数编码
// items 和 qtys 等长，按槽位下标对齐；items 中存放物料在事实表中的下标
type Genome struct {
	items []int
	qtys  []int32
	score Score
}

func (g *Genome) clone() *Genome {
	c := &Genome{
		items: make([]int, len(g.items)),
		qtys:  make([]int32, len(g.qtys)),
		score: g.score,
	}
	copy(c.items, g.items)
	copy(c.qtys, g.qtys)
	return c
}

// Score: 字典序的硬/软惩罚对，两个分量都不大于 0，数值越大越好
type Score struct {
	Hard float64 `json:"hard"`
	Soft float64 `json:"soft"`
}

// Better 判断 s 是否严格优于 other，硬惩罚优先，软惩罚仅在硬惩罚相同时参与比较
func (s Score) Better(other Score) bool {
	if s.Hard != other.Hard {
		return s.Hard > other.Hard
	}
	return s.Soft > other.Soft
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int32   // 种群大小
	MaxGenerations int32   // 迭代代数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 每个基因的变异概率
	TournamentSize int32   // 锦标赛规模
	EliteCount     int32   // 精英数量
	Parallel       bool    // 是否并行评估
	Seed           *int64  // 如果 Seed 为 nil，则使用非确定性的随机源
}

// DefaultParameters 返回文档化的默认参数
func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize: 120,
		MaxGenerations: 400,
		CrossoverRate:  0.9,
		MutationRate:   0.03,
		TournamentSize: 4,
		EliteCount:     2,
		Parallel:       true,
	}
}

// Validate 在任何评估开始前校验参数，非法配置直接失败
func (p *Parameters) Validate() error {
	if p.PopulationSize <= 0 {
		return fmt.Errorf("种群大小必须为正数（当前为 %d）", p.PopulationSize)
	}
	if p.MaxGenerations <= 0 {
		return fmt.Errorf("迭代代数必须为正数（当前为 %d）", p.MaxGenerations)
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return fmt.Errorf("交叉概率必须在 [0,1] 之间（当前为 %f）", p.CrossoverRate)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("变异概率必须在 [0,1] 之间（当前为 %f）", p.MutationRate)
	}
	if p.TournamentSize <= 0 {
		return fmt.Errorf("锦标赛规模必须为正数（当前为 %d）", p.TournamentSize)
	}
	if p.EliteCount < 0 {
		return fmt.Errorf("精英数量不能为负数（当前为 %d）", p.EliteCount)
	}
	if p.EliteCount > p.PopulationSize {
		return fmt.Errorf("精英数量不能超过种群大小（%d > %d）", p.EliteCount, p.PopulationSize)
	}
	return nil
}
