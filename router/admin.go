package router

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"piogold-backend/models"
	"piogold-backend/pricing"
	"piogold-backend/storage"
	"piogold-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AdminRouter struct {
	dbc       *storage.DBClient
	jwtSecret []byte
	aesKey    []byte
}

func NewAdminRouter(dbc *storage.DBClient, jwtSecret, aesKey []byte) *AdminRouter {
	return &AdminRouter{
		dbc:       dbc,
		jwtSecret: jwtSecret,
		aesKey:    aesKey,
	}
}

// Setup bootstraps the first administrator and seeds the default offer tiers.
// Refused once any admin exists.
func (r *AdminRouter) Setup(c *gin.Context) {
	params := &struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}
	if params.Username == "" || params.Password == "" {
		badRequest(c, "username and password required")
		return
	}

	total, err := r.dbc.CountAdmins()
	if err != nil {
		serverError(c)
		return
	}
	if total > 0 {
		badRequest(c, "admin already exists, use login")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		serverError(c)
		return
	}

	admin, err := r.dbc.CreateAdmin(params.Username, params.Email, string(hash))
	if err != nil {
		serverError(c)
		return
	}

	for _, offer := range defaultOffers() {
		if err := r.dbc.CreateOffer(offer); err != nil {
			serverError(c)
			return
		}
	}

	token, err := createToken(r.jwtSecret, admin.AdminId, admin.Username)
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: gin.H{
		"access_token": token,
		"token_type":   "bearer",
	}})
}

func (r *AdminRouter) Login(c *gin.Context) {
	params := &struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}

	admin, err := r.dbc.AdminByUsername(params.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, &utils.HttpResult{Code: 401, Msg: "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(params.Password)) != nil {
		c.JSON(http.StatusUnauthorized, &utils.HttpResult{Code: 401, Msg: "invalid credentials"})
		return
	}

	token, err := createToken(r.jwtSecret, admin.AdminId, admin.Username)
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: gin.H{
		"access_token": token,
		"token_type":   "bearer",
	}})
}

func (r *AdminRouter) Settings(c *gin.Context) {
	settings, err := r.dbc.Settings()
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: &AdminSettingsView{
		GoldPricePerGram: settings.GoldPricePerGram,
		IcoStartDate:     settings.IcoStartDate,
		IcoActive:        settings.IcoActive,
		IcoWalletAddress: settings.IcoWalletAddress,
		HasPrivateKey:    settings.EncryptedPrivateKey != "",
	}})
}

// UpdateSettings patches the singleton settings. An incoming private key is
// encrypted before it is stored; it never touches the database in the clear.
func (r *AdminRouter) UpdateSettings(c *gin.Context) {
	params := &struct {
		GoldPricePerGram *float64 `json:"gold_price_per_gram"`
		IcoStartDate     *string  `json:"ico_start_date"`
		IcoActive        *bool    `json:"ico_active"`
		IcoWalletAddress *string  `json:"ico_wallet_address"`
		PrivateKey       *string  `json:"encrypted_private_key"`
	}{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}

	patch := &storage.SettingsPatch{
		GoldPricePerGram: params.GoldPricePerGram,
		IcoActive:        params.IcoActive,
		IcoWalletAddress: params.IcoWalletAddress,
	}
	if params.IcoStartDate != nil {
		start, err := time.Parse(time.RFC3339, *params.IcoStartDate)
		if err != nil {
			badRequest(c, "invalid ico_start_date")
			return
		}
		patch.IcoStartDate = &start
	}
	if params.PrivateKey != nil {
		encrypted, err := utils.EncryptKey(r.aesKey, *params.PrivateKey)
		if err != nil {
			serverError(c)
			return
		}
		patch.EncryptedPrivateKey = &encrypted
	}

	if err := r.dbc.UpdateSettings(patch); err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "settings updated"})
}

func (r *AdminRouter) PauseIco(c *gin.Context) {
	if err := r.dbc.SetIcoActive(false); err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "ICO paused"})
}

func (r *AdminRouter) ResumeIco(c *gin.Context) {
	if err := r.dbc.SetIcoActive(true); err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "ICO resumed"})
}

func (r *AdminRouter) Offers(c *gin.Context) {
	offers, err := r.dbc.OffersList()
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: offers, Total: int64(len(offers))})
}

type offerParams struct {
	MinUsdt         float64 `json:"min_usdt"`
	MaxUsdt         float64 `json:"max_usdt"`
	DiscountPercent float64 `json:"discount_percent"`
	ValidityDays    int64   `json:"validity_days"`
	IsActive        *bool   `json:"is_active"`
}

func (p *offerParams) toModel() *models.Offer {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return &models.Offer{
		MinUsdt:         p.MinUsdt,
		MaxUsdt:         p.MaxUsdt,
		DiscountPercent: p.DiscountPercent,
		ValidityDays:    p.ValidityDays,
		IsActive:        active,
	}
}

func (r *AdminRouter) CreateOffer(c *gin.Context) {
	params := &offerParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}
	if params.MinUsdt < 0 || params.MaxUsdt < params.MinUsdt {
		badRequest(c, "invalid amount range")
		return
	}

	offer := params.toModel()
	if err := r.dbc.CreateOffer(offer); err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: offer})
}

func (r *AdminRouter) UpdateOffer(c *gin.Context) {
	params := &offerParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}

	err := r.dbc.UpdateOffer(c.Param("id"), params.toModel())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "offer not found")
			return
		}
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "offer updated"})
}

func (r *AdminRouter) DeleteOffer(c *gin.Context) {
	err := r.dbc.DeleteOffer(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "offer not found")
			return
		}
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "offer deleted"})
}

func (r *AdminRouter) Orders(c *gin.Context) {
	orders, err := r.dbc.OrdersList(c.Query("status"), queryLimit(c))
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: orders, Total: int64(len(orders))})
}

func (r *AdminRouter) Transactions(c *gin.Context) {
	txs, err := r.dbc.TransactionsList(c.Query("chain"), queryLimit(c))
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: txs, Total: int64(len(txs))})
}

func (r *AdminRouter) Referrals(c *gin.Context) {
	referrals, err := r.dbc.ReferralsList(c.Query("status"), queryLimit(c))
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: referrals, Total: int64(len(referrals))})
}

// UpdateReferral moves a referral through its payout lifecycle.
func (r *AdminRouter) UpdateReferral(c *gin.Context) {
	params := &struct {
		Status string `json:"status"`
	}{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}
	switch params.Status {
	case models.ReferralStatusApproved, models.ReferralStatusPaid, models.ReferralStatusRejected:
	default:
		badRequest(c, "invalid status")
		return
	}

	err := r.dbc.UpdateReferralStatus(c.Param("id"), params.Status)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "referral not found")
			return
		}
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "referral status updated to " + params.Status})
}

func (r *AdminRouter) Stats(c *gin.Context) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalUsers, err = r.dbc.CountUsers(); err != nil {
		serverError(c)
		return
	}
	if stats.TotalOrders, err = r.dbc.CountOrders(""); err != nil {
		serverError(c)
		return
	}
	if stats.CompletedOrders, err = r.dbc.CountOrders(models.OrderStatusCompleted); err != nil {
		serverError(c)
		return
	}

	totals, err := r.dbc.SumCompletedOrders()
	if err != nil {
		serverError(c)
		return
	}
	stats.TotalUsdtRaised = totals.TotalUsdt
	stats.TotalPioSold = pricing.Round8(totals.TotalPio)

	if stats.PendingReferrals, err = r.dbc.CountReferrals(models.ReferralStatusPending); err != nil {
		serverError(c)
		return
	}
	pendingPio, err := r.dbc.SumPendingReferralPio()
	if err != nil {
		serverError(c)
		return
	}
	stats.PendingReferralPio = pricing.Round8(pendingPio)

	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: stats})
}

func (r *AdminRouter) Users(c *gin.Context) {
	users, err := r.dbc.UsersList(queryLimit(c))
	if err != nil {
		serverError(c)
		return
	}

	out := make([]*UserWithReferrals, 0, len(users))
	for _, user := range users {
		direct, err := r.dbc.CountDirectReferrals(user.UserId)
		if err != nil {
			serverError(c)
			return
		}
		out = append(out, &UserWithReferrals{User: user, DirectReferrals: direct})
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: out, Total: int64(len(out))})
}

// UserDetails assembles a user's orders, three-level downline team and
// referral earnings for the admin dashboard.
func (r *AdminRouter) UserDetails(c *gin.Context) {
	userId := c.Param("id")

	user, err := r.dbc.UserById(userId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "user not found")
			return
		}
		serverError(c)
		return
	}

	orders, err := r.dbc.OrdersByUser(userId, 100)
	if err != nil {
		serverError(c)
		return
	}

	level1, err := r.dbc.UsersByReferrer(userId)
	if err != nil {
		serverError(c)
		return
	}
	level2 := make([]*models.User, 0)
	for _, member := range level1 {
		members, err := r.dbc.UsersByReferrer(member.UserId)
		if err != nil {
			serverError(c)
			return
		}
		level2 = append(level2, members...)
	}
	level3 := make([]*models.User, 0)
	for _, member := range level2 {
		members, err := r.dbc.UsersByReferrer(member.UserId)
		if err != nil {
			serverError(c)
			return
		}
		level3 = append(level3, members...)
	}

	referrals, err := r.dbc.ReferralsByReferrer(userId, 100)
	if err != nil {
		serverError(c)
		return
	}

	earnings := &EarningsBreakdown{}
	for _, ref := range referrals {
		switch ref.Level {
		case 1:
			earnings.Level1 += ref.RewardPio
		case 2:
			earnings.Level2 += ref.RewardPio
		case 3:
			earnings.Level3 += ref.RewardPio
		}
		if ref.Status == models.ReferralStatusPending {
			earnings.Pending += ref.RewardPio
		}
		if ref.Status == models.ReferralStatusPaid {
			earnings.Paid += ref.RewardPio
		}
	}
	earnings.Level1 = pricing.Round8(earnings.Level1)
	earnings.Level2 = pricing.Round8(earnings.Level2)
	earnings.Level3 = pricing.Round8(earnings.Level3)
	earnings.Total = pricing.Round8(earnings.Level1 + earnings.Level2 + earnings.Level3)
	earnings.Pending = pricing.Round8(earnings.Pending)
	earnings.Paid = pricing.Round8(earnings.Paid)
	if len(referrals) > 20 {
		referrals = referrals[:20]
	}
	earnings.History = referrals

	details := &UserDetails{
		User:   user,
		Orders: orders,
		Team: &TeamBreakdown{
			Level1:    &TeamLevel{Count: len(level1), Members: level1},
			Level2:    &TeamLevel{Count: len(level2), Members: level2},
			Level3:    &TeamLevel{Count: len(level3), Members: level3},
			TotalTeam: len(level1) + len(level2) + len(level3),
		},
		Earnings: earnings,
	}
	if user.ReferrerId != "" {
		if referrer, err := r.dbc.UserById(user.ReferrerId); err == nil {
			details.Referrer = &ReferrerInfo{
				WalletAddress: referrer.WalletAddress,
				ReferralCode:  referrer.ReferralCode,
			}
		}
	}

	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: details})
}

func defaultOffers() []*models.Offer {
	return []*models.Offer{
		{MinUsdt: 800, MaxUsdt: 1000, DiscountPercent: 20, ValidityDays: 15, IsActive: true},
		{MinUsdt: 500, MaxUsdt: 799, DiscountPercent: 15, ValidityDays: 30, IsActive: true},
		{MinUsdt: 300, MaxUsdt: 499, DiscountPercent: 10, ValidityDays: 45, IsActive: true},
		{MinUsdt: 50, MaxUsdt: 299, DiscountPercent: 5, ValidityDays: 60, IsActive: true},
	}
}

func queryLimit(c *gin.Context) int {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}
