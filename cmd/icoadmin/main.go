package main

import (
	"flag"
	"fmt"
	"time"

	"piogold-backend/config"
	"piogold-backend/models"
	"piogold-backend/storage"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		cfgFile  string
		target   string
		username string
		password string
		email    string
	)
	flag.StringVar(&cfgFile, "config", "config.json", "config file path")
	flag.StringVar(&target, "target", "stuck", "stuck|create-admin")
	flag.StringVar(&username, "username", "", "admin username (create-admin)")
	flag.StringVar(&password, "password", "", "admin password (create-admin)")
	flag.StringVar(&email, "email", "", "admin email (create-admin)")
	flag.Parse()

	var cfg config.Config
	config.LoadConfig(&cfg, cfgFile)

	var db *storage.DBClient
	if cfg.Sqlite.Switch {
		db = storage.NewSqliteClient(cfg.Sqlite)
	} else {
		db = storage.NewMysqlClient(cfg.Mysql)
	}
	_ = db.AutoMigrate()

	var err error
	switch target {
	case "create-admin":
		err = createAdmin(db, username, password, email)
	default:
		err = listStuck(db)
	}
	if err != nil {
		fmt.Println("icoadmin error:", err)
	}
}

// listStuck prints orders needing manual follow-up: payments confirmed with
// no payout sent, plus orders still pending verification.
func listStuck(db *storage.DBClient) error {
	stuck, err := db.OrdersList(models.OrderStatusPioTransferFailed, 1000)
	if err != nil {
		return err
	}
	pending, err := db.PendingOrdersBefore(time.Now().Add(-time.Minute))
	if err != nil {
		return err
	}

	for _, order := range stuck {
		fmt.Printf("%s  %s  %.2f USDT -> %.8f PIO  %s\n",
			order.OrderId, order.Status, order.UsdtAmount, order.TotalPio, order.ErrInfo)
	}
	for _, order := range pending {
		fmt.Printf("%s  %s  %.2f USDT -> %.8f PIO\n",
			order.OrderId, order.Status, order.UsdtAmount, order.TotalPio)
	}
	fmt.Printf("%d transfer-failed, %d pending\n", len(stuck), len(pending))
	return nil
}

func createAdmin(db *storage.DBClient, username, password, email string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin, err := db.CreateAdmin(username, email, string(hash))
	if err != nil {
		return err
	}
	fmt.Println("admin created:", admin.AdminId)
	return nil
}
