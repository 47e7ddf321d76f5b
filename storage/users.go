package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"piogold-backend/models"
	"piogold-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (db *DBClient) UserByWallet(wallet string) (*models.User, error) {
	user := &models.User{}
	err := db.DB.Where("wallet_address = ?", strings.ToLower(wallet)).First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (db *DBClient) UserById(userId string) (*models.User, error) {
	user := &models.User{}
	err := db.DB.Where("user_id = ?", userId).First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (db *DBClient) UserByReferralCode(code string) (*models.User, error) {
	user := &models.User{}
	err := db.DB.Where("referral_code = ?", strings.ToUpper(code)).First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser registers a wallet. referrerId may be empty for users
// auto-provisioned on their first order.
func (db *DBClient) CreateUser(wallet, referrerId string) (*models.User, error) {
	now := models.NewLocalTime(time.Now())
	user := &models.User{
		UserId:        uuid.New().String(),
		WalletAddress: strings.ToLower(wallet),
		ReferralCode:  utils.NewReferralCode(),
		ReferrerId:    referrerId,
		UpdateDate:    now,
		CreateDate:    now,
	}
	if err := db.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user err: %s", err.Error())
	}
	return user, nil
}

func (db *DBClient) UsersList(limit int) ([]*models.User, error) {
	users := make([]*models.User, 0)
	err := db.DB.Order("id desc").Limit(limit).Find(&users).Error
	return users, err
}

func (db *DBClient) UsersByReferrer(referrerId string) ([]*models.User, error) {
	users := make([]*models.User, 0)
	err := db.DB.Where("referrer_id = ?", referrerId).Find(&users).Error
	return users, err
}

func (db *DBClient) CountDirectReferrals(userId string) (int64, error) {
	var total int64
	err := db.DB.Model(&models.User{}).Where("referrer_id = ?", userId).Count(&total).Error
	return total, err
}
