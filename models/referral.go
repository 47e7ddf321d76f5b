package models

const (
	ReferralStatusPending  = "pending"
	ReferralStatusApproved = "approved"
	ReferralStatusPaid     = "paid"
	ReferralStatusRejected = "rejected"
)

// Referral is one upline reward record, at most three per order (one per
// level). reward_pio is converted at the order's locked gold price.
type Referral struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	ReferralId string    `gorm:"uniqueIndex" json:"id"`
	ReferrerId string    `gorm:"index" json:"referrer_id"`
	RefereeId  string    `gorm:"index" json:"referee_id"`
	OrderId    string    `gorm:"index" json:"order_id"`
	Level      int       `json:"level"`
	UsdtAmount float64   `json:"usdt_amount"`
	RewardUsdt float64   `json:"reward_usdt"`
	RewardPio  float64   `json:"reward_pio"`
	Status     string    `gorm:"index" json:"status"`
	UpdateDate LocalTime `json:"update_date"`
	CreateDate LocalTime `json:"created_at"`
}

func (Referral) TableName() string {
	return "referrals"
}
