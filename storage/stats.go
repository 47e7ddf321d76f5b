package storage

import (
	"piogold-backend/models"
)

type CompletedTotals struct {
	TotalUsdt float64 `json:"total_usdt"`
	TotalPio  float64 `json:"total_pio"`
}

func (db *DBClient) CountUsers() (int64, error) {
	var total int64
	err := db.DB.Model(&models.User{}).Count(&total).Error
	return total, err
}

func (db *DBClient) CountOrders(status string) (int64, error) {
	var total int64
	query := db.DB.Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&total).Error
	return total, err
}

// SumCompletedOrders aggregates the USDT raised and PIO sold over completed
// orders.
func (db *DBClient) SumCompletedOrders() (*CompletedTotals, error) {
	totals := &CompletedTotals{}
	err := db.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(usdt_amount), 0) as total_usdt, COALESCE(SUM(total_pio), 0) as total_pio").
		Scan(totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
