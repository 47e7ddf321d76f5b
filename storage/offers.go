package storage

import (
	"errors"
	"fmt"
	"time"

	"piogold-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveOffersDesc returns active offers sorted by descending min_usdt, the
// order discount resolution walks them in.
func (db *DBClient) ActiveOffersDesc() ([]*models.Offer, error) {
	offers := make([]*models.Offer, 0)
	err := db.DB.Where("is_active = ?", true).Order("min_usdt desc").Find(&offers).Error
	return offers, err
}

// ActiveOffersAsc is the public listing order.
func (db *DBClient) ActiveOffersAsc() ([]*models.Offer, error) {
	offers := make([]*models.Offer, 0)
	err := db.DB.Where("is_active = ?", true).Order("min_usdt asc").Find(&offers).Error
	return offers, err
}

func (db *DBClient) OffersList() ([]*models.Offer, error) {
	offers := make([]*models.Offer, 0)
	err := db.DB.Order("min_usdt asc").Find(&offers).Error
	return offers, err
}

func (db *DBClient) CreateOffer(offer *models.Offer) error {
	now := models.NewLocalTime(time.Now())
	offer.OfferId = uuid.New().String()
	offer.UpdateDate = now
	offer.CreateDate = now
	if err := db.DB.Create(offer).Error; err != nil {
		return fmt.Errorf("create offer err: %s", err.Error())
	}
	return nil
}

func (db *DBClient) UpdateOffer(offerId string, offer *models.Offer) error {
	result := db.DB.Model(&models.Offer{}).Where("offer_id = ?", offerId).Updates(map[string]interface{}{
		"min_usdt":         offer.MinUsdt,
		"max_usdt":         offer.MaxUsdt,
		"discount_percent": offer.DiscountPercent,
		"validity_days":    offer.ValidityDays,
		"is_active":        offer.IsActive,
		"update_date":      models.NewLocalTime(time.Now()),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DBClient) DeleteOffer(offerId string) error {
	result := db.DB.Where("offer_id = ?", offerId).Delete(&models.Offer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DBClient) OfferById(offerId string) (*models.Offer, error) {
	offer := &models.Offer{}
	err := db.DB.Where("offer_id = ?", offerId).First(offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return offer, nil
}
