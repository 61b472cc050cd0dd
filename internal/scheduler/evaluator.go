package scheduler

import "github.com/smartmes-dev/line-planner/backend/internal/domain"

// Evaluator 将一个完整的候选排产方案映射为字典序的硬/软得分
// 实现必须满足：对同一方案结果确定、无可观测副作用、
// 并且可以在相互独立的方案上被并发调用
// 评估出错不做重试，直接导致整次运行失败
type Evaluator interface {
	Evaluate(schedule *domain.ProductionSchedule) (Score, error)
}
