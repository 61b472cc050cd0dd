package domain

import "time"

type Item struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

// BOMComponent: 生产一单位物料所需的某种原材料及其用量
type BOMComponent struct {
	MaterialID int64   `json:"materialID"`
	Quantity   float64 `json:"quantity"`
}

type BOMItem struct {
	ID         int64          `json:"id"`
	ItemID     int64          `json:"itemID"`
	Components []BOMComponent `json:"components"`
	CreatedAt  time.Time      `json:"createdAt"`
	Version    int32          `json:"-"`
}
