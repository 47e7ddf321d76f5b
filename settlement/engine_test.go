package settlement

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"piogold-backend/chain"
	"piogold-backend/models"
	"piogold-backend/storage"
	"piogold-backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const icoWallet = "0x1111111111111111111111111111111111111111"

var testAesKey = utils.DeriveKey("settlement-test-secret")

type fakeVerifier struct {
	details *chain.TransferDetails
	err     error
	calls   int
}

func (f *fakeVerifier) VerifyUsdtTransfer(ctx context.Context, txHash string, expectedAmount float64, expectedRecipient string) (*chain.TransferDetails, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

type fakeDisburser struct {
	hash  string
	err   error
	calls int
	key   string
}

func (f *fakeDisburser) SendNative(ctx context.Context, privateKeyHex, recipient string, amount float64) (string, error) {
	f.calls++
	f.key = privateKeyHex
	if f.err != nil {
		return "", f.err
	}
	return f.hash, nil
}

func newTestDB(t *testing.T) *storage.DBClient {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	dbc := storage.NewClient(db)
	require.NoError(t, dbc.AutoMigrate())
	return dbc
}

func configureSettings(t *testing.T, dbc *storage.DBClient) {
	t.Helper()
	_, err := dbc.Settings()
	require.NoError(t, err)

	encrypted, err := utils.EncryptKey(testAesKey, "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)

	wallet := icoWallet
	require.NoError(t, dbc.UpdateSettings(&storage.SettingsPatch{
		IcoWalletAddress:    &wallet,
		EncryptedPrivateKey: &encrypted,
	}))
}

func createOrder(t *testing.T, dbc *storage.DBClient, user *models.User, usdt float64, hash string) *models.Order {
	t.Helper()
	order := &models.Order{
		UserId:        user.UserId,
		WalletAddress: user.WalletAddress,
		UsdtAmount:    usdt,
		GoldPrice:     85,
		BasePio:       usdt / 85,
		TotalPio:      usdt / 85,
		UsdtTxHash:    hash,
	}
	payment := &models.Transaction{
		FromAddress: user.WalletAddress,
		ToAddress:   icoWallet,
		Amount:      usdt,
		TxHash:      hash,
	}
	require.NoError(t, dbc.CreateOrder(order, payment))
	return order
}

func newTestEngine(dbc *storage.DBClient, v Verifier, d Disburser) *Engine {
	return NewEngine(context.Background(), &sync.WaitGroup{}, dbc, v, d, testAesKey, time.Millisecond, false)
}

func TestProcessHappyPathWithReferral(t *testing.T) {
	dbc := newTestDB(t)
	configureSettings(t, dbc)

	referrer, err := dbc.CreateUser("0xaaaa", "")
	require.NoError(t, err)
	buyer, err := dbc.CreateUser("0xbbbb", referrer.UserId)
	require.NoError(t, err)

	order := createOrder(t, dbc, buyer, 500, "0xpayment")

	verifier := &fakeVerifier{details: &chain.TransferDetails{Amount: 500, To: icoWallet}}
	disburser := &fakeDisburser{hash: "0xpayout"}
	engine := newTestEngine(dbc, verifier, disburser)

	engine.process(order.OrderId)

	settled, err := dbc.OrderById(order.OrderId)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, settled.Status)
	require.Equal(t, "0xpayout", settled.PioTxHash)
	require.Empty(t, settled.ErrInfo)

	txs, err := dbc.TransactionsByOrder(order.OrderId)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, models.TxStatusConfirmed, txs[0].Status)
	require.Equal(t, models.TxTypePioTransfer, txs[1].Type)
	require.Equal(t, models.TxStatusConfirmed, txs[1].Status)
	require.Equal(t, "0xpayout", txs[1].TxHash)

	settledBuyer, err := dbc.UserById(buyer.UserId)
	require.NoError(t, err)
	require.Equal(t, 500.0, settledBuyer.TotalPurchasedUsdt)
	require.InDelta(t, order.TotalPio, settledBuyer.TotalPioReceived, 1e-8)

	referrals, err := dbc.ReferralsByOrder(order.OrderId)
	require.NoError(t, err)
	require.Len(t, referrals, 1)
	require.Equal(t, 1, referrals[0].Level)
	require.Equal(t, referrer.UserId, referrals[0].ReferrerId)
	require.Equal(t, 50.0, referrals[0].RewardUsdt)
	require.InDelta(t, 50.0/85.0, referrals[0].RewardPio, 1e-8)

	// The disburser received the decrypted custodial key.
	require.Equal(t, "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318", disburser.key)
}

func TestProcessVerificationFailure(t *testing.T) {
	dbc := newTestDB(t)
	configureSettings(t, dbc)

	referrer, err := dbc.CreateUser("0xaaaa", "")
	require.NoError(t, err)
	buyer, err := dbc.CreateUser("0xbbbb", referrer.UserId)
	require.NoError(t, err)

	order := createOrder(t, dbc, buyer, 500, "0xpayment")

	verifier := &fakeVerifier{err: &chain.VerificationError{Reason: "wrong recipient"}}
	disburser := &fakeDisburser{hash: "0xpayout"}
	engine := newTestEngine(dbc, verifier, disburser)

	engine.process(order.OrderId)

	failed, err := dbc.OrderById(order.OrderId)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusVerificationFailed, failed.Status)
	require.Equal(t, "wrong recipient", failed.ErrInfo)
	require.Empty(t, failed.PioTxHash)

	txs, err := dbc.TransactionsByOrder(order.OrderId)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.TxStatusFailed, txs[0].Status)

	// No payout, no referral fan-out, no total changes.
	require.Zero(t, disburser.calls)
	referrals, err := dbc.ReferralsByOrder(order.OrderId)
	require.NoError(t, err)
	require.Empty(t, referrals)

	unchanged, err := dbc.UserById(buyer.UserId)
	require.NoError(t, err)
	require.Zero(t, unchanged.TotalPurchasedUsdt)
}

// Payment confirmed but payout failed: the partial-failure state must be
// distinguishable from a verification failure.
func TestProcessDisbursementFailure(t *testing.T) {
	dbc := newTestDB(t)
	configureSettings(t, dbc)

	referrer, err := dbc.CreateUser("0xaaaa", "")
	require.NoError(t, err)
	buyer, err := dbc.CreateUser("0xbbbb", referrer.UserId)
	require.NoError(t, err)

	order := createOrder(t, dbc, buyer, 500, "0xpayment")

	verifier := &fakeVerifier{details: &chain.TransferDetails{Amount: 500, To: icoWallet}}
	disburser := &fakeDisburser{err: &chain.DisbursementError{Reason: "insufficient balance"}}
	engine := newTestEngine(dbc, verifier, disburser)

	engine.process(order.OrderId)

	failed, err := dbc.OrderById(order.OrderId)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPioTransferFailed, failed.Status)
	require.Equal(t, "insufficient balance", failed.ErrInfo)

	txs, err := dbc.TransactionsByOrder(order.OrderId)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.TxStatusConfirmed, txs[0].Status)

	referrals, err := dbc.ReferralsByOrder(order.OrderId)
	require.NoError(t, err)
	require.Empty(t, referrals)

	unchanged, err := dbc.UserById(buyer.UserId)
	require.NoError(t, err)
	require.Zero(t, unchanged.TotalPurchasedUsdt)
	require.Zero(t, unchanged.TotalPioReceived)
}

func TestProcessMissingCustodialKey(t *testing.T) {
	dbc := newTestDB(t)

	_, err := dbc.Settings()
	require.NoError(t, err)
	wallet := icoWallet
	require.NoError(t, dbc.UpdateSettings(&storage.SettingsPatch{IcoWalletAddress: &wallet}))

	buyer, err := dbc.CreateUser("0xbbbb", "")
	require.NoError(t, err)
	order := createOrder(t, dbc, buyer, 500, "0xpayment")

	verifier := &fakeVerifier{details: &chain.TransferDetails{Amount: 500, To: icoWallet}}
	disburser := &fakeDisburser{hash: "0xpayout"}
	engine := newTestEngine(dbc, verifier, disburser)

	engine.process(order.OrderId)

	failed, err := dbc.OrderById(order.OrderId)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPioTransferFailed, failed.Status)
	require.Contains(t, failed.ErrInfo, "not configured")
	require.Zero(t, disburser.calls)
}

func TestProcessUndecryptableKeyIsLoudNotSilent(t *testing.T) {
	dbc := newTestDB(t)

	_, err := dbc.Settings()
	require.NoError(t, err)
	wallet := icoWallet
	garbage := "bm90LWFuLWl2:bm90LWEtY2lwaGVydGV4dA=="
	require.NoError(t, dbc.UpdateSettings(&storage.SettingsPatch{
		IcoWalletAddress:    &wallet,
		EncryptedPrivateKey: &garbage,
	}))

	buyer, err := dbc.CreateUser("0xbbbb", "")
	require.NoError(t, err)
	order := createOrder(t, dbc, buyer, 500, "0xpayment")

	verifier := &fakeVerifier{details: &chain.TransferDetails{Amount: 500, To: icoWallet}}
	disburser := &fakeDisburser{hash: "0xpayout"}
	engine := newTestEngine(dbc, verifier, disburser)

	engine.process(order.OrderId)

	failed, err := dbc.OrderById(order.OrderId)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPioTransferFailed, failed.Status)
	require.Contains(t, failed.ErrInfo, "decrypt")
	require.Zero(t, disburser.calls)
}

func TestProcessMissingOrderIsSilent(t *testing.T) {
	dbc := newTestDB(t)
	configureSettings(t, dbc)

	verifier := &fakeVerifier{}
	engine := newTestEngine(dbc, verifier, &fakeDisburser{})

	engine.process("no-such-order")
	require.Zero(t, verifier.calls)
}

func TestEnqueueRunsAfterDelay(t *testing.T) {
	dbc := newTestDB(t)
	configureSettings(t, dbc)

	buyer, err := dbc.CreateUser("0xbbbb", "")
	require.NoError(t, err)
	order := createOrder(t, dbc, buyer, 500, "0xpayment")

	wg := &sync.WaitGroup{}
	verifier := &fakeVerifier{details: &chain.TransferDetails{Amount: 500, To: icoWallet}}
	engine := NewEngine(context.Background(), wg, dbc, verifier, &fakeDisburser{hash: "0xpayout"}, testAesKey, 5*time.Millisecond, false)

	engine.Enqueue(order.OrderId)
	wg.Wait()

	settled, err := dbc.OrderById(order.OrderId)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, settled.Status)
	require.Equal(t, 1, verifier.calls)
}

// A restart with an order stuck in pending_verification re-enqueues it.
func TestStartRescansPendingOrders(t *testing.T) {
	dbc := newTestDB(t)
	configureSettings(t, dbc)

	buyer, err := dbc.CreateUser("0xbbbb", "")
	require.NoError(t, err)
	order := createOrder(t, dbc, buyer, 500, "0xpayment")

	// Age the order past the grace delay.
	require.NoError(t, dbc.DB.Model(&models.Order{}).
		Where("order_id = ?", order.OrderId).
		Update("create_date", models.NewLocalTime(time.Now().Add(-time.Minute))).Error)

	wg := &sync.WaitGroup{}
	verifier := &fakeVerifier{details: &chain.TransferDetails{Amount: 500, To: icoWallet}}
	engine := NewEngine(context.Background(), wg, dbc, verifier, &fakeDisburser{hash: "0xpayout"}, testAesKey, 5*time.Millisecond, true)

	wg.Add(1)
	go engine.Start()
	wg.Wait()

	settled, err := dbc.OrderById(order.OrderId)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, settled.Status)
}
