package domain

import "time"

// LineCapability: 产线对某种物料的生产能力（每小时最大产量）
type LineCapability struct {
	ItemID         int64 `json:"itemID"`
	HourlyCapacity int32 `json:"hourlyCapacity"`
}

type Line struct {
	ID           int64            `json:"id"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Capabilities []LineCapability `json:"capabilities"`
	CreatedAt    time.Time        `json:"createdAt"`
	Version      int32            `json:"-"`
}

// HourlyCapacity 返回产线对某种物料的每小时最大产量，不能生产时返回 0
func (l *Line) HourlyCapacity(itemID int64) int32 {
	for _, c := range l.Capabilities {
		if c.ItemID == itemID {
			return c.HourlyCapacity
		}
	}
	return 0
}

// CanProduce 判断产线是否能生产某种物料
func (l *Line) CanProduce(itemID int64) bool {
	return l.HourlyCapacity(itemID) > 0
}
