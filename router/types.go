package router

import "piogold-backend/models"

type LevelStat struct {
	Count    int64   `json:"count"`
	Earnings float64 `json:"earnings"`
}

type ReferralSummary struct {
	ReferralCode       string             `json:"referral_code"`
	TotalReferrals     int64              `json:"total_referrals"`
	LevelStats         map[int]*LevelStat `json:"level_stats"`
	TotalEarningsPio   float64            `json:"total_earnings_pio"`
	PendingEarningsPio float64            `json:"pending_earnings_pio"`
	RecentReferrals    []*models.Referral `json:"recent_referrals"`
}

type PublicSettings struct {
	GoldPricePerGram float64         `json:"gold_price_per_gram"`
	IcoActive        bool            `json:"ico_active"`
	IcoWalletAddress string          `json:"ico_wallet_address"`
	DaysSinceStart   int64           `json:"days_since_start"`
	Offers           []*models.Offer `json:"offers"`
}

type OrderCreated struct {
	OrderId  string  `json:"order_id"`
	Status   string  `json:"status"`
	TotalPio float64 `json:"total_pio"`
}

type AdminSettingsView struct {
	GoldPricePerGram float64          `json:"gold_price_per_gram"`
	IcoStartDate     models.LocalTime `json:"ico_start_date"`
	IcoActive        bool             `json:"ico_active"`
	IcoWalletAddress string           `json:"ico_wallet_address"`
	HasPrivateKey    bool             `json:"has_private_key"`
}

type DashboardStats struct {
	TotalUsers         int64   `json:"total_users"`
	TotalOrders        int64   `json:"total_orders"`
	CompletedOrders    int64   `json:"completed_orders"`
	TotalUsdtRaised    float64 `json:"total_usdt_raised"`
	TotalPioSold       float64 `json:"total_pio_sold"`
	PendingReferrals   int64   `json:"pending_referrals"`
	PendingReferralPio float64 `json:"pending_referral_pio"`
}

type UserWithReferrals struct {
	*models.User
	DirectReferrals int64 `json:"direct_referrals"`
}

type TeamLevel struct {
	Count   int            `json:"count"`
	Members []*models.User `json:"members"`
}

type TeamBreakdown struct {
	Level1    *TeamLevel `json:"level1"`
	Level2    *TeamLevel `json:"level2"`
	Level3    *TeamLevel `json:"level3"`
	TotalTeam int        `json:"total_team"`
}

type EarningsBreakdown struct {
	Level1  float64            `json:"level1"`
	Level2  float64            `json:"level2"`
	Level3  float64            `json:"level3"`
	Total   float64            `json:"total"`
	Pending float64            `json:"pending"`
	Paid    float64            `json:"paid"`
	History []*models.Referral `json:"history"`
}

type ReferrerInfo struct {
	WalletAddress string `json:"wallet_address"`
	ReferralCode  string `json:"referral_code"`
}

type UserDetails struct {
	User     *models.User       `json:"user"`
	Referrer *ReferrerInfo      `json:"referrer,omitempty"`
	Orders   []*models.Order    `json:"orders"`
	Team     *TeamBreakdown     `json:"team"`
	Earnings *EarningsBreakdown `json:"earnings"`
}
