package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"piogold-backend/chain"
	"piogold-backend/config"
	"piogold-backend/metrics"
	"piogold-backend/router"
	"piogold-backend/settlement"
	"piogold-backend/storage"
	"piogold-backend/utils"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cfg config.Config
)

func main() {

	config.LoadConfig(&cfg, "")

	glogger := log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, true))
	glogger.Verbosity(log.FromLegacyLevel(cfg.DebugLevel))
	log.SetDefault(log.NewLogger(glogger))

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	var dbClient *storage.DBClient
	if cfg.Sqlite.Switch {
		dbClient = storage.NewSqliteClient(cfg.Sqlite)
	} else {
		dbClient = storage.NewMysqlClient(cfg.Mysql)
	}

	if err := dbClient.AutoMigrate(); err != nil {
		log.Crit("main", "auto migrate err", err.Error())
	}

	bscClient, err := chain.DialReader(cfg.Bsc.Rpc)
	if err != nil {
		log.Crit("main", "bsc dial err", err.Error())
	}
	pioClient, err := chain.DialWriter(cfg.Pio.Rpc)
	if err != nil {
		log.Crit("main", "pio dial err", err.Error())
	}

	verifier := chain.NewVerifier(bscClient, cfg.UsdtContract, cfg.Bsc.ChainId, cfg.Settlement.Tolerance)
	disburser := chain.NewDisburser(pioClient, cfg.Pio.ChainId)
	aesKey := utils.DeriveKey(cfg.AesSecret)

	settle := settlement.NewEngine(ctx, wg, dbClient, verifier, disburser, aesKey,
		time.Duration(cfg.Settlement.DelaySeconds)*time.Second, cfg.Settlement.RescanOnStart)
	wg.Add(1)
	go settle.Start()

	if cfg.HttpServer.Switch {
		metrics.MustRegister()

		grt := gin.Default()
		grt.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
			c.Next()
		})

		grt.GET("/metrics", func(c *gin.Context) {
			promhttp.Handler().ServeHTTP(c.Writer, c.Request)
		})

		pub := router.NewPublicRouter(dbClient, settle)
		adm := router.NewAdminRouter(dbClient, []byte(cfg.JwtSecret), aesKey)

		api := grt.Group("/api")
		{
			api.GET("/health", pub.Health)
			api.GET("/settings/public", pub.Settings)
			api.POST("/calculate-purchase", pub.CalculatePurchase)
			api.POST("/users/register", pub.Register)
			api.GET("/users/:wallet", pub.User)
			api.GET("/users/:wallet/orders", pub.UserOrders)
			api.GET("/users/:wallet/referrals", pub.UserReferrals)
			api.POST("/orders/create", pub.CreateOrder)
			api.GET("/orders/:id/status", pub.OrderStatus)

			api.POST("/admin/setup", adm.Setup)
			api.POST("/admin/login", adm.Login)

			authed := api.Group("/admin", adm.Authorize())
			{
				authed.GET("/settings", adm.Settings)
				authed.PUT("/settings", adm.UpdateSettings)
				authed.POST("/ico/pause", adm.PauseIco)
				authed.POST("/ico/resume", adm.ResumeIco)
				authed.GET("/offers", adm.Offers)
				authed.POST("/offers", adm.CreateOffer)
				authed.PUT("/offers/:id", adm.UpdateOffer)
				authed.DELETE("/offers/:id", adm.DeleteOffer)
				authed.GET("/orders", adm.Orders)
				authed.GET("/transactions", adm.Transactions)
				authed.GET("/referrals", adm.Referrals)
				authed.PUT("/referrals/:id", adm.UpdateReferral)
				authed.GET("/stats", adm.Stats)
				authed.GET("/users", adm.Users)
				authed.GET("/users/:id/details", adm.UserDetails)
			}
		}

		go func() {
			if err := grt.Run(cfg.HttpServer.Server); err != nil {
				log.Crit("main", "http server err", err.Error())
			}
		}()
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info("main", "msg", "received an interrupt, stopping services...")
	cancel()
	wg.Wait()
}
