package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string
	DBDSN         string
	RedisAddr     string
	RedisPort     string
	RedisPassword string
	JWTSecret     string
	ServerPort    int
	CORSOrigins   []string

	// Payment plugins
	PaymentSandbox bool
	PaymentPlugins []string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// LoadConfig reads .env (if present) into the environment and resolves every
// key from, in order: environment, config.yaml, built-in defaults.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		DBDriver:      v.GetString("DB_DRIVER"),
		DBDSN:         v.GetString("DB_DSN"),
		RedisAddr:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		ServerPort:    v.GetInt("SERVER_PORT"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),

		PaymentSandbox: v.GetBool("PAYMENT_SANDBOX"),
		PaymentPlugins: splitList(v.GetString("PAYMENT_PLUGINS")),

		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFilename:   v.GetString("LOG_FILENAME"),
		LogMaxSize:    v.GetInt("LOG_MAX_SIZE"),
		LogMaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAge:     v.GetInt("LOG_MAX_AGE"),
		LogCompress:   v.GetBool("LOG_COMPRESS"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "payhost.db")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")

	// Production endpoints unless explicitly switched to sandbox.
	v.SetDefault("PAYMENT_SANDBOX", false)
	v.SetDefault("PAYMENT_PLUGINS", "alipay,wechatpay,epay")

	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FILENAME", "logs/app.log")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE", 28)
	v.SetDefault("LOG_COMPRESS", true)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
