package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wfunc/landlord/cards"
)

// EnvPrefix 环境变量前缀，例如 LANDLORD_SERVER_HTTP_ADDRESS
const EnvPrefix = "LANDLORD"

// 存储驱动
const (
	DriverMemory   = "memory"
	DriverGorm     = "gorm"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Registry RegistryConfig `mapstructure:"registry"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Tables   TablesConfig   `mapstructure:"tables"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	RPCAddress  string `mapstructure:"rpc_address"`
}

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type RegistryConfig struct {
	Operator string `mapstructure:"operator"`
}

// LedgerConfig 账本只在 gorm 驱动下可用
type LedgerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	FeeAccount string `mapstructure:"fee_account"`
}

type TablesConfig struct {
	Retention time.Duration `mapstructure:"retention"`
	// Dealer 底牌发牌方式: rand | clock
	Dealer string `mapstructure:"dealer"`
}

type MonitorConfig struct {
	Namespace string `mapstructure:"namespace"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "landlord")
	v.SetDefault("registry.operator", "")
	v.SetDefault("ledger.enabled", false)
	v.SetDefault("ledger.fee_account", "")
	v.SetDefault("tables.retention", 10*time.Minute)
	v.SetDefault("tables.dealer", cards.DealerRand)
	v.SetDefault("monitor.namespace", "landlord")
	v.SetDefault("log.debug", false)
}

// LoadConfig 读取 path 下的 config.yaml；文件不存在时使用默认值和环境变量。
// path 下的 .env 会先被加载到环境变量。
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 检查配置组合
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory, DriverGorm, DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Ledger.Enabled && c.Database.Driver != DriverGorm {
		return fmt.Errorf("ledger requires the %s driver, got %q", DriverGorm, c.Database.Driver)
	}
	if c.Tables.Retention < 0 {
		return fmt.Errorf("negative table retention %s", c.Tables.Retention)
	}
	if _, err := cards.NewDealer(c.Tables.Dealer); err != nil {
		return err
	}
	return nil
}
