package scheduler

import (
	"runtime"
	"sync"
)

// evaluatePopulation 物化并评估种群中的所有个体
// 每个个体的物化和评估都不依赖其他个体，也不共享可变状态，
// 因此开启并行评估时就是一次纯粹的并行映射
func (s *Scheduler) evaluatePopulation(pop []*Genome) error {
	if !s.parameters.Parallel || len(pop) < 2 {
		for _, g := range pop {
			score, err := s.evaluator.Evaluate(s.materialize(g))
			if err != nil {
				return err
			}
			g.score = score
		}
		return nil
	}

	workers := runtime.NumCPU()
	if workers > len(pop) {
		workers = len(pop)
	}

	jobs := make(chan int, len(pop))
	errs := make(chan error, len(pop))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				score, err := s.evaluator.Evaluate(s.materialize(pop[i]))
				if err != nil {
					errs <- err
					continue
				}
				// 每个下标只会被一个 worker 写入，不需要加锁
				pop[i].score = score
			}
		}()
	}

	for i := range pop {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(errs)

	// 评估器出错不做重试，直接终止整次运行
	for err := range errs {
		return err
	}
	return nil
}
