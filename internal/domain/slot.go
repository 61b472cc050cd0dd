package domain

import "time"

// LineHourSlot: 一个 (产线, 小时) 时间桶，是排产的最小决策单位
// 同一次优化运行中，槽位集合在开始前一次性枚举好，之后不再变化
type LineHourSlot struct {
	LineID    int64     `json:"lineID"`
	HourStart time.Time `json:"hourStart"`
}

// HourPlan: 对一个槽位的排产决策
type HourPlan struct {
	Slot     LineHourSlot `json:"slot"`
	ItemID   *int64       `json:"itemID"` // 如果 ItemID 为 nil，则表示这个槽位空闲
	Quantity int32        `json:"quantity"`
}

// Idle 判断这个槽位是否空闲
func (p *HourPlan) Idle() bool {
	return p.ItemID == nil
}

// EnumerateSlots 按产线优先、小时递增的顺序枚举计划时域内的所有槽位
// 开始时间会被截断到整点，结束时间为开区间
func EnumerateSlots(lines []*Line, horizonStart, horizonEnd time.Time) []LineHourSlot {
	start := horizonStart.Truncate(time.Hour)

	slots := make([]LineHourSlot, 0)
	for _, line := range lines {
		for hour := start; hour.Before(horizonEnd); hour = hour.Add(time.Hour) {
			slots = append(slots, LineHourSlot{
				LineID:    line.ID,
				HourStart: hour,
			})
		}
	}

	return slots
}
