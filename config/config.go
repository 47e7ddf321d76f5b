package config

import (
	"encoding/json"
	"os"
)

type HttpServerConfig struct {
	Switch bool   `json:"switch"`
	Server string `json:"server"`
}

type MysqlConfig struct {
	Server   string `json:"server"`
	Port     string `json:"port"`
	UserName string `json:"user_name"`
	PassWord string `json:"pass_word"`
	Database string `json:"database"`
}

type SqliteConfig struct {
	Switch bool   `json:"switch"`
	Dir    string `json:"dir"`
}

type ChainConfig struct {
	Rpc     string `json:"rpc"`
	ChainId int64  `json:"chain_id"`
}

type SettlementConfig struct {
	// DelaySeconds is the grace period before the verification poll, giving
	// the payment chain time to propagate the submitted transaction.
	DelaySeconds int64 `json:"delay_seconds"`
	// Tolerance is the accepted fraction of the expected USDT amount.
	Tolerance float64 `json:"tolerance"`
	// RescanOnStart re-enqueues orders stuck in pending_verification when the
	// process restarts.
	RescanOnStart bool `json:"rescan_on_start"`
}

type Config struct {
	DebugLevel   int              `json:"debug_level"`
	HttpServer   HttpServerConfig `json:"http_server"`
	Mysql        MysqlConfig      `json:"mysql"`
	Sqlite       SqliteConfig     `json:"sqlite"`
	Bsc          ChainConfig      `json:"bsc"`
	Pio          ChainConfig      `json:"pio"`
	UsdtContract string           `json:"usdt_contract"`
	JwtSecret    string           `json:"jwt_secret"`
	AesSecret    string           `json:"aes_secret"`
	Settlement   SettlementConfig `json:"settlement"`
}

func LoadConfig(cfg *Config, path string) {
	if path == "" {
		path = "./config.json"
	}

	setDefaults(cfg)

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			panic("config: " + err.Error())
		}
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JwtSecret = v
	}
	if v := os.Getenv("AES_SECRET"); v != "" {
		cfg.AesSecret = v
	}
	if cfg.Settlement.DelaySeconds <= 0 {
		cfg.Settlement.DelaySeconds = 5
	}
	if cfg.Settlement.Tolerance <= 0 {
		cfg.Settlement.Tolerance = 0.99
	}
}

func setDefaults(cfg *Config) {
	cfg.DebugLevel = 3
	cfg.HttpServer = HttpServerConfig{Switch: true, Server: ":8001"}
	cfg.Sqlite = SqliteConfig{Switch: true, Dir: "./piogold.db"}
	cfg.Bsc = ChainConfig{Rpc: "https://bsc-dataseed.binance.org", ChainId: 56}
	cfg.Pio = ChainConfig{Rpc: "https://datasheed.pioscan.com", ChainId: 42357}
	cfg.UsdtContract = "0x55d398326f99059fF775485246999027B3197955"
	cfg.JwtSecret = "piogold-jwt-secret-key-2024"
	cfg.AesSecret = "piogold-aes-256-encryption-key"
	cfg.Settlement = SettlementConfig{DelaySeconds: 5, Tolerance: 0.99, RescanOnStart: true}
}
