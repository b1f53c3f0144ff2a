package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Auth         AuthConfig         `yaml:"auth"`
	Wizard       WizardConfig       `yaml:"wizard"`
	Payments     PaymentsConfig     `yaml:"payments"`
	Reservations ReservationsConfig `yaml:"reservations"`
	Worker       WorkerConfig       `yaml:"worker"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret                  string `yaml:"jwt_secret"`
	TokenTTLMinutes            int    `yaml:"token_ttl_minutes"`
	VerificationCodeTTLMinutes int    `yaml:"verification_code_ttl_minutes"`
	LoginRatePerMinute         int    `yaml:"login_rate_per_minute"`
}

type WizardConfig struct {
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
	SuccessResetMs    int `yaml:"success_reset_ms"`
	FlightsCacheTTL   int `yaml:"flights_cache_ttl_seconds"`
}

type PaymentsConfig struct {
	Currency         string `yaml:"currency"`
	SimulatedDelayMs int    `yaml:"simulated_delay_ms"`
}

type ReservationsConfig struct {
	// UpstreamURL, when set, routes booking submission to a remote
	// reservation API instead of the local store.
	UpstreamURL string `yaml:"upstream_url"`
}

type WorkerConfig struct {
	ReconcileSweepMinutes int `yaml:"reconcile_sweep_minutes"`
	ReconcileAgeMinutes   int `yaml:"reconcile_age_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
