package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Meta            Meta            `mapstructure:",squash"`
	RateLimit       RateLimit       `mapstructure:",squash"`
	PerformanceSync PerformanceSync `mapstructure:",squash"`
	HierarchySync   HierarchySync   `mapstructure:",squash"`
	Auth            Auth            `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Meta struct {
	BaseURL     string `mapstructure:"meta_base_url"`
	URL         string `mapstructure:"-"`
	Version     string `mapstructure:"meta_version"`
	AppID       string `mapstructure:"meta_app_id"`
	AppSecret   string `mapstructure:"meta_app_secret"`
	AccessToken string `mapstructure:"meta_access_token"`
	BusinessID  string `mapstructure:"meta_business_id"`
}

// RateLimit controla o orçamento de chamadas contra a API do Meta.
type RateLimit struct {
	RequestsPerHour    int `mapstructure:"meta_requests_per_hour"`
	RetryAttempts      int `mapstructure:"meta_retry_attempts"`
	RetryDelayMs       int `mapstructure:"meta_retry_delay_ms"`
	MaxConcurrentCalls int `mapstructure:"meta_max_concurrent_calls"`
}

type PerformanceSync struct {
	CronSchedule string `mapstructure:"performance_sync_cron"`
	Enabled      bool   `mapstructure:"performance_sync_enabled"`
}

type HierarchySync struct {
	CronSchedule string `mapstructure:"hierarchy_sync_cron"`
	Enabled      bool   `mapstructure:"hierarchy_sync_enabled"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/ads_sync")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "")
	viper.SetDefault("META_APP_SECRET", "")
	viper.SetDefault("META_ACCESS_TOKEN", "")
	viper.SetDefault("META_BUSINESS_ID", "")

	// Defaults do orçamento de chamadas contra a API do Meta
	viper.SetDefault("META_REQUESTS_PER_HOUR", 200) // Limite de requisições por hora
	viper.SetDefault("META_RETRY_ATTEMPTS", 3)      // Tentativas por chamada (incluindo a primeira)
	viper.SetDefault("META_RETRY_DELAY_MS", 2000)   // Espera fixa entre tentativas
	viper.SetDefault("META_MAX_CONCURRENT_CALLS", 3)

	// Defaults para os agendadores de sincronização
	viper.SetDefault("PERFORMANCE_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("PERFORMANCE_SYNC_ENABLED", false)
	viper.SetDefault("HIERARCHY_SYNC_CRON", "0 4 * * 0") // Todos os domingos às 4h da manhã
	viper.SetDefault("HIERARCHY_SYNC_ENABLED", false)

	viper.SetDefault("AUTH_SECRET", "")

	viper.SetDefault("LOG_LEVEL", "info")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis de ambiente (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica as credenciais obrigatórias. Uma configuração inválida é
// fatal na inicialização: nenhuma sincronização começa sem credenciais.
func (c *Config) Validate() error {
	missing := make([]string, 0)

	if c.Meta.AppID == "" {
		missing = append(missing, "META_APP_ID")
	}
	if c.Meta.AppSecret == "" {
		missing = append(missing, "META_APP_SECRET")
	}
	if c.Meta.AccessToken == "" {
		missing = append(missing, "META_ACCESS_TOKEN")
	}
	if c.Meta.BusinessID == "" {
		missing = append(missing, "META_BUSINESS_ID")
	}
	if c.Auth.Secret == "" {
		missing = append(missing, "AUTH_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("configuração inválida, variáveis obrigatórias ausentes: %v", missing)
	}

	if c.RateLimit.RequestsPerHour <= 0 {
		return fmt.Errorf("configuração inválida: META_REQUESTS_PER_HOUR deve ser maior que zero")
	}
	if c.RateLimit.MaxConcurrentCalls <= 0 {
		return fmt.Errorf("configuração inválida: META_MAX_CONCURRENT_CALLS deve ser maior que zero")
	}
	if c.RateLimit.RetryAttempts <= 0 {
		return fmt.Errorf("configuração inválida: META_RETRY_ATTEMPTS deve ser maior que zero")
	}

	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado de:", location)
			return
		}
	}

	logrus.Info("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
