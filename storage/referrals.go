package storage

import (
	"fmt"
	"time"

	"piogold-backend/models"

	"github.com/google/uuid"
)

func (db *DBClient) CreateReferral(referral *models.Referral) error {
	now := models.NewLocalTime(time.Now())
	referral.ReferralId = uuid.New().String()
	referral.Status = models.ReferralStatusPending
	referral.UpdateDate = now
	referral.CreateDate = now
	if err := db.DB.Create(referral).Error; err != nil {
		return fmt.Errorf("create referral err: %s", err.Error())
	}
	return nil
}

func (db *DBClient) ReferralsByReferrer(referrerId string, limit int) ([]*models.Referral, error) {
	referrals := make([]*models.Referral, 0)
	err := db.DB.Where("referrer_id = ?", referrerId).Order("id desc").Limit(limit).Find(&referrals).Error
	return referrals, err
}

func (db *DBClient) ReferralsByOrder(orderId string) ([]*models.Referral, error) {
	referrals := make([]*models.Referral, 0)
	err := db.DB.Where("order_id = ?", orderId).Order("level asc").Find(&referrals).Error
	return referrals, err
}

func (db *DBClient) ReferralsList(status string, limit int) ([]*models.Referral, error) {
	referrals := make([]*models.Referral, 0)
	query := db.DB.Order("id desc").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&referrals).Error
	return referrals, err
}

func (db *DBClient) UpdateReferralStatus(referralId, status string) error {
	result := db.DB.Model(&models.Referral{}).Where("referral_id = ?", referralId).Updates(map[string]interface{}{
		"status":      status,
		"update_date": models.NewLocalTime(time.Now()),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DBClient) CountReferrals(status string) (int64, error) {
	var total int64
	query := db.DB.Model(&models.Referral{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&total).Error
	return total, err
}

func (db *DBClient) SumPendingReferralPio() (float64, error) {
	var sum float64
	err := db.DB.Model(&models.Referral{}).
		Where("status = ?", models.ReferralStatusPending).
		Select("COALESCE(SUM(reward_pio), 0)").Scan(&sum).Error
	return sum, err
}
