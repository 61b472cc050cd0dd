package utils

import (
	"fmt"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
)

func ValidatePlanningWindowTime(window *domain.PlanningWindow) error {
	if !window.HorizonStart.Before(window.HorizonEnd) {
		return fmt.Errorf("时域开始时间必须早于结束时间")
	}

	// 时域按小时切片，太短排不出任何槽位，太长会让优化的搜索空间失控
	duration := window.HorizonEnd.Sub(window.HorizonStart)
	if duration < time.Hour {
		return fmt.Errorf("计划时域不能短于一个小时")
	}
	if duration > 31*24*time.Hour {
		return fmt.Errorf("计划时域不能超过 31 天")
	}

	return nil
}
