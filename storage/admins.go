package storage

import (
	"errors"
	"fmt"
	"time"

	"piogold-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (db *DBClient) AdminByUsername(username string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := db.DB.Where("username = ?", username).First(admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (db *DBClient) AdminById(adminId string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := db.DB.Where("admin_id = ?", adminId).First(admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (db *DBClient) CountAdmins() (int64, error) {
	var total int64
	err := db.DB.Model(&models.Admin{}).Count(&total).Error
	return total, err
}

func (db *DBClient) CreateAdmin(username, email, passwordHash string) (*models.Admin, error) {
	admin := &models.Admin{
		AdminId:      uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreateDate:   models.NewLocalTime(time.Now()),
	}
	if err := db.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("create admin err: %s", err.Error())
	}
	return admin, nil
}
