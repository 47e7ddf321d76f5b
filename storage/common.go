package storage

import (
	"errors"
	"fmt"
	"sync"

	"piogold-backend/config"
	"piogold-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateSubmission = errors.New("transaction already processed")
)

type DBClient struct {
	DB   *gorm.DB
	lock sync.Mutex
}

func NewMysqlClient(cfg config.MysqlConfig) *DBClient {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.UserName, cfg.PassWord, cfg.Server, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	return &DBClient{DB: db}
}

func NewSqliteClient(cfg config.SqliteConfig) *DBClient {
	db, err := gorm.Open(sqlite.Open(cfg.Dir), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	return &DBClient{DB: db}
}

// NewClient wraps an existing gorm handle. Used by tests.
func NewClient(db *gorm.DB) *DBClient {
	return &DBClient{DB: db}
}

func (db *DBClient) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Offer{},
		&models.Order{},
		&models.Transaction{},
		&models.Referral{},
		&models.AdminSettings{},
		&models.Admin{},
	)
}
