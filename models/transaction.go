package models

const (
	TxTypeUsdtPayment = "usdt_payment"
	TxTypePioTransfer = "pio_transfer"

	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"

	ChainBsc = "bsc"
	ChainPio = "piogold"
)

// Transaction is the audit record of one on-chain movement tied to an order.
type Transaction struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	TxId        string    `gorm:"uniqueIndex" json:"id"`
	OrderId     string    `gorm:"index" json:"order_id"`
	Type        string    `gorm:"index" json:"type"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Amount      float64   `json:"amount"`
	TxHash      string    `gorm:"index" json:"tx_hash"`
	Chain       string    `gorm:"index" json:"chain"`
	Status      string    `json:"status"`
	UpdateDate  LocalTime `json:"update_date"`
	CreateDate  LocalTime `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
