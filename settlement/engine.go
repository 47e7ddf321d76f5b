// Package settlement runs the order verification-and-payout pipeline as
// deferred background work, one run per submitted order.
package settlement

import (
	"context"
	"errors"
	"sync"
	"time"

	"piogold-backend/chain"
	"piogold-backend/metrics"
	"piogold-backend/models"
	"piogold-backend/referral"
	"piogold-backend/storage"
	"piogold-backend/utils"

	"github.com/ethereum/go-ethereum/log"
)

// Verifier confirms a claimed USDT payment against the payment chain.
type Verifier interface {
	VerifyUsdtTransfer(ctx context.Context, txHash string, expectedAmount float64, expectedRecipient string) (*chain.TransferDetails, error)
}

// Disburser sends the PIO payout from the custodial account.
type Disburser interface {
	SendNative(ctx context.Context, privateKeyHex, recipient string, amount float64) (string, error)
}

type Engine struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	dbc       *storage.DBClient
	verifier  Verifier
	disburser Disburser
	referrals *referral.Engine
	aesKey    []byte
	delay     time.Duration
	rescan    bool
}

func NewEngine(ctx context.Context, wg *sync.WaitGroup, dbc *storage.DBClient, verifier Verifier, disburser Disburser, aesKey []byte, delay time.Duration, rescan bool) *Engine {
	return &Engine{
		ctx:       ctx,
		wg:        wg,
		dbc:       dbc,
		verifier:  verifier,
		disburser: disburser,
		referrals: referral.NewEngine(dbc),
		aesKey:    aesKey,
		delay:     delay,
		rescan:    rescan,
	}
}

// Start re-enqueues orders left in pending_verification by a previous run.
// Settling an order twice is harmless at-least-once work: verification only
// re-reads the chain and payout happens strictly after it within one run.
func (e *Engine) Start() {
	defer e.wg.Done()

	if !e.rescan {
		return
	}

	cutoff := time.Now().Add(-e.delay)
	orders, err := e.dbc.PendingOrdersBefore(cutoff)
	if err != nil {
		log.Error("settlement", "rescan err", err.Error())
		return
	}
	for _, order := range orders {
		log.Info("settlement", "rescan enqueue", order.OrderId)
		metrics.PendingRescanTotal.Inc()
		e.Enqueue(order.OrderId)
	}
}

// Enqueue schedules one settlement run for the order after the grace delay.
// The delay gives the payment chain time to confirm the submitted
// transaction; verification independently re-checks finality.
func (e *Engine) Enqueue(orderId string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		select {
		case <-time.After(e.delay):
		case <-e.ctx.Done():
			return
		}
		e.process(orderId)
	}()
}

// process executes the settlement pipeline. Every transition is persisted
// before the next step, so a crash leaves the order in an inspectable state.
// Verification and disbursement failures are recorded on the order and never
// propagate: a background run has no caller to report to.
func (e *Engine) process(orderId string) {
	start := time.Now()
	defer func() {
		metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}()

	order, err := e.dbc.OrderById(orderId)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error("settlement", "load order err", err.Error(), "order", orderId)
		}
		return
	}

	settings, err := e.dbc.Settings()
	if err != nil {
		log.Error("settlement", "load settings err", err.Error(), "order", orderId)
		return
	}

	details, err := e.verifier.VerifyUsdtTransfer(e.ctx, order.UsdtTxHash, order.UsdtAmount, settings.IcoWalletAddress)
	if err != nil {
		log.Warn("settlement", "verification failed", order.OrderId, "err", err.Error())
		metrics.VerificationFailuresTotal.Inc()
		metrics.IncSettlement("verification_failed")
		if err := e.dbc.MarkOrderFailed(order.OrderId, models.OrderStatusVerificationFailed, err.Error()); err != nil {
			log.Error("settlement", "mark order failed err", err.Error(), "order", orderId)
		}
		if err := e.dbc.UpdateTransactionStatus(order.OrderId, models.TxTypeUsdtPayment, models.TxStatusFailed); err != nil {
			log.Error("settlement", "update payment tx err", err.Error(), "order", orderId)
		}
		return
	}

	log.Info("settlement", "payment confirmed", order.OrderId, "amount", details.Amount, "from", details.From)
	if err := e.dbc.UpdateTransactionStatus(order.OrderId, models.TxTypeUsdtPayment, models.TxStatusConfirmed); err != nil {
		log.Error("settlement", "update payment tx err", err.Error(), "order", orderId)
		return
	}

	pioTxHash, err := e.disburse(order)
	if err != nil {
		log.Error("settlement", "pio transfer failed", order.OrderId, "err", err.Error())
		metrics.IncSettlement("pio_transfer_failed")
		if err := e.dbc.MarkOrderFailed(order.OrderId, models.OrderStatusPioTransferFailed, err.Error()); err != nil {
			log.Error("settlement", "mark order failed err", err.Error(), "order", orderId)
		}
		return
	}

	if err := e.dbc.CompleteOrder(order, pioTxHash, settings.IcoWalletAddress); err != nil {
		log.Error("settlement", "complete order err", err.Error(), "order", orderId)
		return
	}
	metrics.IncSettlement("completed")
	log.Info("settlement", "order completed", order.OrderId, "pio_tx", pioTxHash)

	created, err := e.referrals.Distribute(order.OrderId, order.UserId, order.UsdtAmount, order.GoldPrice)
	if err != nil {
		log.Error("settlement", "referral distribute err", err.Error(), "order", orderId)
	}
	metrics.ReferralsCreatedTotal.Add(float64(created))
}

// disburse decrypts the custodial key and sends the payout. A missing key is
// a configuration failure; an unreadable one is a decryption failure and is
// logged loudly, never treated as "no key configured".
func (e *Engine) disburse(order *models.Order) (string, error) {
	settings, err := e.dbc.Settings()
	if err != nil {
		return "", err
	}
	if settings.EncryptedPrivateKey == "" {
		return "", errors.New("admin private key not configured")
	}

	privateKey, err := utils.DecryptKey(e.aesKey, settings.EncryptedPrivateKey)
	if err != nil {
		log.Error("settlement", "custodial key decryption failed", err.Error())
		return "", errors.New("failed to decrypt custodial private key: " + err.Error())
	}

	return e.disburser.SendNative(e.ctx, privateKey, order.WalletAddress, order.TotalPio)
}
