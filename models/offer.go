package models

// Offer is a discount tier over a USDT amount range, valid for a number of
// days counted from the ICO start date. Ranges may overlap; resolution picks
// the still-valid offer with the highest min_usdt.
type Offer struct {
	ID              uint      `gorm:"primarykey" json:"-"`
	OfferId         string    `gorm:"uniqueIndex" json:"id"`
	MinUsdt         float64   `gorm:"index" json:"min_usdt"`
	MaxUsdt         float64   `json:"max_usdt"`
	DiscountPercent float64   `json:"discount_percent"`
	ValidityDays    int64     `json:"validity_days"`
	IsActive        bool      `json:"is_active"`
	UpdateDate      LocalTime `json:"update_date"`
	CreateDate      LocalTime `json:"created_at"`
}

func (Offer) TableName() string {
	return "offers"
}
