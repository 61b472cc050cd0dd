package domain

import "time"

// PlanningWindow: 一次排产的计划时域，排产结果挂在对应的时域下
type PlanningWindow struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	HorizonStart time.Time `json:"horizonStart"`
	HorizonEnd   time.Time `json:"horizonEnd"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// SchedulingResult: 持久化后的排产结果
type SchedulingResult struct {
	ID               int64      `json:"id"`
	PlanningWindowID int64      `json:"planningWindowID"`
	Plans            []HourPlan `json:"plans"`
	HardPenalty      float64    `json:"hardPenalty"`
	SoftPenalty      float64    `json:"softPenalty"`
	CreatedAt        time.Time  `json:"createdAt"`
	Version          int32      `json:"-"`
}
