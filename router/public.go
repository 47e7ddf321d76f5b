package router

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"piogold-backend/metrics"
	"piogold-backend/models"
	"piogold-backend/pricing"
	"piogold-backend/settlement"
	"piogold-backend/storage"
	"piogold-backend/utils"

	"github.com/gin-gonic/gin"
)

type PublicRouter struct {
	dbc    *storage.DBClient
	settle *settlement.Engine
}

func NewPublicRouter(dbc *storage.DBClient, settle *settlement.Engine) *PublicRouter {
	return &PublicRouter{
		dbc:    dbc,
		settle: settle,
	}
}

func (r *PublicRouter) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (r *PublicRouter) Settings(c *gin.Context) {
	settings, err := r.dbc.Settings()
	if err != nil {
		serverError(c)
		return
	}

	offers, err := r.dbc.ActiveOffersAsc()
	if err != nil {
		serverError(c)
		return
	}

	days := int64(time.Since(settings.IcoStartDate.Time()).Hours() / 24)

	result := &utils.HttpResult{Code: 200, Msg: "success"}
	result.Data = &PublicSettings{
		GoldPricePerGram: settings.GoldPricePerGram,
		IcoActive:        settings.IcoActive,
		IcoWalletAddress: settings.IcoWalletAddress,
		DaysSinceStart:   days,
		Offers:           offers,
	}
	c.JSON(http.StatusOK, result)
}

// CalculatePurchase quotes the PIO breakdown for a USDT amount. The same
// pricing path runs again at order creation, so a quote and the settlement of
// an equal order at the same instant agree.
func (r *PublicRouter) CalculatePurchase(c *gin.Context) {
	params := &struct {
		UsdtAmount float64 `json:"usdt_amount"`
	}{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}
	if params.UsdtAmount <= 0 {
		badRequest(c, "usdt_amount must be positive")
		return
	}

	settings, err := r.dbc.Settings()
	if err != nil {
		serverError(c)
		return
	}
	offers, err := r.dbc.ActiveOffersDesc()
	if err != nil {
		serverError(c)
		return
	}

	quote := pricing.Calculate(params.UsdtAmount, settings.GoldPricePerGram, settings.IcoStartDate.Time(), time.Now(), offers)

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: quote}
	c.JSON(http.StatusOK, result)
}

// Register creates a user for a wallet. Existing wallets are returned as-is;
// new wallets must present a valid referral code.
func (r *PublicRouter) Register(c *gin.Context) {
	params := &struct {
		WalletAddress string `json:"wallet_address"`
		ReferrerCode  string `json:"referrer_code"`
	}{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}
	if params.WalletAddress == "" {
		badRequest(c, "wallet_address required")
		return
	}

	wallet := strings.ToLower(params.WalletAddress)
	if user, err := r.dbc.UserByWallet(wallet); err == nil {
		c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: user})
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		serverError(c)
		return
	}

	if params.ReferrerCode == "" {
		badRequest(c, "referral code is required for registration")
		return
	}

	referrer, err := r.dbc.UserByReferralCode(params.ReferrerCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			badRequest(c, "invalid referral code")
			return
		}
		serverError(c)
		return
	}

	user, err := r.dbc.CreateUser(wallet, referrer.UserId)
	if err != nil {
		serverError(c)
		return
	}

	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: user})
}

func (r *PublicRouter) User(c *gin.Context) {
	user, err := r.dbc.UserByWallet(c.Param("wallet"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "user not found")
			return
		}
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: user})
}

func (r *PublicRouter) UserOrders(c *gin.Context) {
	orders, err := r.dbc.OrdersByWallet(strings.ToLower(c.Param("wallet")), 100)
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: orders, Total: int64(len(orders))})
}

func (r *PublicRouter) UserReferrals(c *gin.Context) {
	user, err := r.dbc.UserByWallet(c.Param("wallet"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "user not found")
			return
		}
		serverError(c)
		return
	}

	referrals, err := r.dbc.ReferralsByReferrer(user.UserId, 100)
	if err != nil {
		serverError(c)
		return
	}
	totalReferred, err := r.dbc.CountDirectReferrals(user.UserId)
	if err != nil {
		serverError(c)
		return
	}

	summary := &ReferralSummary{
		ReferralCode:   user.ReferralCode,
		TotalReferrals: totalReferred,
		LevelStats: map[int]*LevelStat{
			1: {}, 2: {}, 3: {},
		},
	}
	for _, ref := range referrals {
		if stat, ok := summary.LevelStats[ref.Level]; ok {
			stat.Count++
			stat.Earnings += ref.RewardPio
		}
		switch ref.Status {
		case models.ReferralStatusApproved, models.ReferralStatusPaid:
			summary.TotalEarningsPio += ref.RewardPio
		case models.ReferralStatusPending:
			summary.PendingEarningsPio += ref.RewardPio
		}
	}
	summary.TotalEarningsPio = pricing.Round8(summary.TotalEarningsPio)
	summary.PendingEarningsPio = pricing.Round8(summary.PendingEarningsPio)
	if len(referrals) > 10 {
		referrals = referrals[:10]
	}
	summary.RecentReferrals = referrals

	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: summary})
}

// CreateOrder accepts a payment claim, locks price and discount, persists the
// order with its pending payment record and hands the order id to the
// settlement engine. The response does not wait for verification.
func (r *PublicRouter) CreateOrder(c *gin.Context) {
	params := &struct {
		WalletAddress string  `json:"wallet_address"`
		UsdtAmount    float64 `json:"usdt_amount"`
		TxHash        string  `json:"tx_hash"`
	}{}
	if err := c.ShouldBindJSON(params); err != nil {
		badRequest(c, err.Error())
		return
	}
	if params.WalletAddress == "" || params.TxHash == "" || params.UsdtAmount <= 0 {
		badRequest(c, "wallet_address, usdt_amount and tx_hash required")
		return
	}

	settings, err := r.dbc.Settings()
	if err != nil {
		serverError(c)
		return
	}
	if !settings.IcoActive {
		badRequest(c, "ICO is currently paused")
		return
	}
	if settings.IcoWalletAddress == "" {
		badRequest(c, "ICO wallet not configured")
		return
	}

	wallet := strings.ToLower(params.WalletAddress)
	user, err := r.dbc.UserByWallet(wallet)
	if errors.Is(err, storage.ErrNotFound) {
		user, err = r.dbc.CreateUser(wallet, "")
	}
	if err != nil {
		serverError(c)
		return
	}

	offers, err := r.dbc.ActiveOffersDesc()
	if err != nil {
		serverError(c)
		return
	}
	quote := pricing.Calculate(params.UsdtAmount, settings.GoldPricePerGram, settings.IcoStartDate.Time(), time.Now(), offers)

	order := &models.Order{
		UserId:          user.UserId,
		WalletAddress:   wallet,
		UsdtAmount:      params.UsdtAmount,
		GoldPrice:       quote.GoldPrice,
		BasePio:         quote.BasePio,
		DiscountPercent: quote.DiscountPercent,
		BonusPio:        quote.BonusPio,
		TotalPio:        quote.TotalPio,
		UsdtTxHash:      params.TxHash,
	}
	payment := &models.Transaction{
		FromAddress: wallet,
		ToAddress:   settings.IcoWalletAddress,
		Amount:      params.UsdtAmount,
		TxHash:      params.TxHash,
	}

	if err := r.dbc.CreateOrder(order, payment); err != nil {
		if errors.Is(err, storage.ErrDuplicateSubmission) {
			badRequest(c, "transaction already processed")
			return
		}
		serverError(c)
		return
	}

	metrics.OrdersCreatedTotal.Inc()
	r.settle.Enqueue(order.OrderId)

	result := &utils.HttpResult{Code: 200, Msg: "success"}
	result.Data = &OrderCreated{
		OrderId:  order.OrderId,
		Status:   order.Status,
		TotalPio: order.TotalPio,
	}
	c.JSON(http.StatusOK, result)
}

func (r *PublicRouter) OrderStatus(c *gin.Context) {
	order, err := r.dbc.OrderById(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "order not found")
			return
		}
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, &utils.HttpResult{Code: 200, Msg: "success", Data: order})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, &utils.HttpResult{Code: 400, Msg: msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, &utils.HttpResult{Code: 404, Msg: msg})
}

func serverError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, &utils.HttpResult{Code: 500, Msg: "server error"})
}
