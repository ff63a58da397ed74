// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string        `yaml:"env" env-default:"local"`
	StorageConnectionString string        `yaml:"storage_connection_string"`
	RabbitMQConnection      string        `yaml:"rabbitmq_connection"`
	RabbitMQMaxRetries      int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay      time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	LicenseService          `yaml:"license_service"`
	PaymentGateway          `yaml:"payment_gateway"`
	CustomerSync            `yaml:"customer_sync"`
	PartnerService          `yaml:"partner_service"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CatalogTTL   time.Duration `yaml:"catalog_ttl"`
}

// JWTToken структура для работы с jwt-токеном сессии
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// LicenseService структура для настройки клиента внешней системы лицензий
type LicenseService struct {
	LicenseURL     string        `yaml:"license_url"`
	LicenseAPIKey  string        `yaml:"license_api_key"`
	ProductID      string        `yaml:"product_id"`
	LicenseTimeout time.Duration `yaml:"license_timeout"`
}

// PaymentGateway структура для настройки клиента платёжного шлюза
type PaymentGateway struct {
	GatewayURL     string        `yaml:"gateway_url"`
	GatewayKeyID   string        `yaml:"gateway_key_id"`
	GatewaySecret  string        `yaml:"gateway_secret"`
	GatewayTimeout time.Duration `yaml:"gateway_timeout"`
}

// CustomerSync структура для настройки клиента сервиса синхронизации клиентов
type CustomerSync struct {
	CustomerSyncURL    string        `yaml:"customer_sync_url"`
	CustomerSyncAPIKey string        `yaml:"customer_sync_api_key"`
	CustomerSyncSource string        `yaml:"customer_sync_source" env-default:"GeoTrack"`
	SyncTimeout        time.Duration `yaml:"sync_timeout"`
}

// PartnerService структура для настройки клиента партнёрской программы
type PartnerService struct {
	PartnerURL     string        `yaml:"partner_url"`
	PartnerAPIKey  string        `yaml:"partner_api_key"`
	PartnerTimeout time.Duration `yaml:"partner_timeout"`
}

// SMTP структура для настройки отправки почтовых уведомлений
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
}

// MustLoad функция для загрузки конфига, путь берётся из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
