package storage

import (
	"errors"
	"fmt"
	"time"

	"piogold-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateOrder persists a new order together with its pending USDT payment
// record. A reused usdt_tx_hash is rejected before anything is written; the
// unique index backs the same check against concurrent submissions.
func (db *DBClient) CreateOrder(order *models.Order, payment *models.Transaction) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	err := db.DB.Where("usdt_tx_hash = ?", order.UsdtTxHash).First(&models.Order{}).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		if err != nil {
			return err
		}
		return ErrDuplicateSubmission
	}

	now := models.NewLocalTime(time.Now())
	order.OrderId = uuid.New().String()
	order.Status = models.OrderStatusPendingVerification
	order.UpdateDate = now
	order.CreateDate = now

	payment.TxId = uuid.New().String()
	payment.OrderId = order.OrderId
	payment.Type = models.TxTypeUsdtPayment
	payment.Chain = models.ChainBsc
	payment.Status = models.TxStatusPending
	payment.UpdateDate = now
	payment.CreateDate = now

	tx := db.DB.Begin()
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("create order err: %s", err.Error())
	}
	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("create payment tx err: %s", err.Error())
	}
	return tx.Commit().Error
}

func (db *DBClient) OrderById(orderId string) (*models.Order, error) {
	order := &models.Order{}
	err := db.DB.Where("order_id = ?", orderId).First(order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (db *DBClient) OrdersByWallet(wallet string, limit int) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	err := db.DB.Where("wallet_address = ?", wallet).Order("id desc").Limit(limit).Find(&orders).Error
	return orders, err
}

func (db *DBClient) OrdersByUser(userId string, limit int) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	err := db.DB.Where("user_id = ?", userId).Order("id desc").Limit(limit).Find(&orders).Error
	return orders, err
}

func (db *DBClient) OrdersList(status string, limit int) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	query := db.DB.Order("id desc").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&orders).Error
	return orders, err
}

// MarkOrderFailed records a terminal failure state with its error message.
func (db *DBClient) MarkOrderFailed(orderId, status, errInfo string) error {
	return db.DB.Model(&models.Order{}).Where("order_id = ?", orderId).Updates(map[string]interface{}{
		"status":      status,
		"err_info":    errInfo,
		"update_date": models.NewLocalTime(time.Now()),
	}).Error
}

func (db *DBClient) UpdateTransactionStatus(orderId, txType, status string) error {
	return db.DB.Model(&models.Transaction{}).
		Where("order_id = ? and type = ?", orderId, txType).
		Updates(map[string]interface{}{
			"status":      status,
			"update_date": models.NewLocalTime(time.Now()),
		}).Error
}

// CompleteOrder finalises a settled order in one database transaction: the
// order flips to completed with the payout hash, a confirmed PIO transfer
// record is appended and the buyer's cumulative totals are incremented.
func (db *DBClient) CompleteOrder(order *models.Order, pioTxHash, icoWallet string) error {
	now := models.NewLocalTime(time.Now())

	payout := &models.Transaction{
		TxId:        uuid.New().String(),
		OrderId:     order.OrderId,
		Type:        models.TxTypePioTransfer,
		FromAddress: icoWallet,
		ToAddress:   order.WalletAddress,
		Amount:      order.TotalPio,
		TxHash:      pioTxHash,
		Chain:       models.ChainPio,
		Status:      models.TxStatusConfirmed,
		UpdateDate:  now,
		CreateDate:  now,
	}

	tx := db.DB.Begin()
	err := tx.Model(&models.Order{}).Where("order_id = ?", order.OrderId).Updates(map[string]interface{}{
		"status":      models.OrderStatusCompleted,
		"pio_tx_hash": pioTxHash,
		"update_date": now,
	}).Error
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("complete order err: %s", err.Error())
	}

	if err := tx.Create(payout).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("create payout tx err: %s", err.Error())
	}

	err = tx.Model(&models.User{}).Where("user_id = ?", order.UserId).Updates(map[string]interface{}{
		"total_purchased_usdt": gorm.Expr("total_purchased_usdt + ?", order.UsdtAmount),
		"total_pio_received":   gorm.Expr("total_pio_received + ?", order.TotalPio),
		"update_date":          now,
	}).Error
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("increment user totals err: %s", err.Error())
	}

	return tx.Commit().Error
}

// PendingOrdersBefore lists orders still awaiting verification that were
// created before the cutoff. Used by the settlement rescan after a restart.
func (db *DBClient) PendingOrdersBefore(cutoff time.Time) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	err := db.DB.Where("status = ? and create_date < ?", models.OrderStatusPendingVerification, cutoff).
		Order("id asc").Find(&orders).Error
	return orders, err
}

func (db *DBClient) TransactionsList(chain string, limit int) ([]*models.Transaction, error) {
	txs := make([]*models.Transaction, 0)
	query := db.DB.Order("id desc").Limit(limit)
	if chain != "" {
		query = query.Where("chain = ?", chain)
	}
	err := query.Find(&txs).Error
	return txs, err
}

func (db *DBClient) TransactionsByOrder(orderId string) ([]*models.Transaction, error) {
	txs := make([]*models.Transaction, 0)
	err := db.DB.Where("order_id = ?", orderId).Order("id asc").Find(&txs).Error
	return txs, err
}
