package models

type User struct {
	ID                 uint      `gorm:"primarykey" json:"-"`
	UserId             string    `gorm:"uniqueIndex" json:"id"`
	WalletAddress      string    `gorm:"uniqueIndex" json:"wallet_address"`
	ReferralCode       string    `gorm:"uniqueIndex" json:"referral_code"`
	ReferrerId         string    `gorm:"index" json:"referrer_id,omitempty"`
	TotalPurchasedUsdt float64   `json:"total_purchased_usdt"`
	TotalPioReceived   float64   `json:"total_pio_received"`
	UpdateDate         LocalTime `json:"update_date"`
	CreateDate         LocalTime `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
