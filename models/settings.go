package models

// AdminSettings is a singleton row, lazily created with defaults on first
// access. The custodial private key is held AES encrypted.
type AdminSettings struct {
	ID                  uint      `gorm:"primarykey" json:"-"`
	SettingsId          string    `gorm:"uniqueIndex" json:"id"`
	GoldPricePerGram    float64   `json:"gold_price_per_gram"`
	IcoStartDate        LocalTime `json:"ico_start_date"`
	IcoActive           bool      `json:"ico_active"`
	IcoWalletAddress    string    `json:"ico_wallet_address"`
	EncryptedPrivateKey string    `json:"-"`
	UpdateDate          LocalTime `json:"update_date"`
	CreateDate          LocalTime `json:"created_at"`
}

func (AdminSettings) TableName() string {
	return "admin_settings"
}

type Admin struct {
	ID           uint      `gorm:"primarykey" json:"-"`
	AdminId      string    `gorm:"uniqueIndex" json:"id"`
	Username     string    `gorm:"uniqueIndex" json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreateDate   LocalTime `json:"created_at"`
}

func (Admin) TableName() string {
	return "admins"
}
