package models

// Order status state machine. Orders enter pending_verification and finish in
// exactly one of the three remaining states. completed is the only success
// state; pio_transfer_failed means the USDT payment is confirmed but the PIO
// payout did not go out.
const (
	OrderStatusPendingVerification = "pending_verification"
	OrderStatusVerificationFailed  = "verification_failed"
	OrderStatusPioTransferFailed   = "pio_transfer_failed"
	OrderStatusCompleted           = "completed"
)

type Order struct {
	ID              uint      `gorm:"primarykey" json:"-"`
	OrderId         string    `gorm:"uniqueIndex" json:"id"`
	UserId          string    `gorm:"index" json:"user_id"`
	WalletAddress   string    `gorm:"index" json:"wallet_address"`
	UsdtAmount      float64   `json:"usdt_amount"`
	GoldPrice       float64   `json:"gold_price"`
	BasePio         float64   `json:"base_pio"`
	DiscountPercent float64   `json:"discount_percent"`
	BonusPio        float64   `json:"bonus_pio"`
	TotalPio        float64   `json:"total_pio"`
	UsdtTxHash      string    `gorm:"uniqueIndex" json:"usdt_tx_hash"`
	PioTxHash       string    `json:"pio_tx_hash,omitempty"`
	Status          string    `gorm:"index" json:"status"`
	ErrInfo         string    `json:"err_info,omitempty"`
	UpdateDate      LocalTime `json:"update_date"`
	CreateDate      LocalTime `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}
