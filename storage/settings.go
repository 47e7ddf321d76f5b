package storage

import (
	"errors"
	"fmt"
	"time"

	"piogold-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultGoldPrice = 85.0

// Settings returns the singleton settings row, creating it with defaults on
// first access.
func (db *DBClient) Settings() (*models.AdminSettings, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	settings := &models.AdminSettings{}
	err := db.DB.First(settings).Error
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := models.NewLocalTime(time.Now())
	settings = &models.AdminSettings{
		SettingsId:       uuid.New().String(),
		GoldPricePerGram: defaultGoldPrice,
		IcoStartDate:     now,
		IcoActive:        true,
		UpdateDate:       now,
		CreateDate:       now,
	}
	if err := db.DB.Create(settings).Error; err != nil {
		return nil, fmt.Errorf("create settings err: %s", err.Error())
	}
	return settings, nil
}

// SettingsPatch carries the optional admin settings fields; nil pointers are
// left untouched.
type SettingsPatch struct {
	GoldPricePerGram    *float64
	IcoStartDate        *time.Time
	IcoActive           *bool
	IcoWalletAddress    *string
	EncryptedPrivateKey *string
}

func (db *DBClient) UpdateSettings(patch *SettingsPatch) error {
	settings, err := db.Settings()
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"update_date": models.NewLocalTime(time.Now()),
	}
	if patch.GoldPricePerGram != nil {
		updates["gold_price_per_gram"] = *patch.GoldPricePerGram
	}
	if patch.IcoStartDate != nil {
		updates["ico_start_date"] = models.NewLocalTime(*patch.IcoStartDate)
	}
	if patch.IcoActive != nil {
		updates["ico_active"] = *patch.IcoActive
	}
	if patch.IcoWalletAddress != nil {
		updates["ico_wallet_address"] = *patch.IcoWalletAddress
	}
	if patch.EncryptedPrivateKey != nil {
		updates["encrypted_private_key"] = *patch.EncryptedPrivateKey
	}

	return db.DB.Model(&models.AdminSettings{}).
		Where("settings_id = ?", settings.SettingsId).Updates(updates).Error
}

func (db *DBClient) SetIcoActive(active bool) error {
	settings, err := db.Settings()
	if err != nil {
		return err
	}
	return db.DB.Model(&models.AdminSettings{}).
		Where("settings_id = ?", settings.SettingsId).Updates(map[string]interface{}{
		"ico_active":  active,
		"update_date": models.NewLocalTime(time.Now()),
	}).Error
}
