package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	// Secret is the HS256 key shared with the external auth provider
	// that issues session tokens for the storefront.
	Secret string `mapstructure:"secret"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CheckoutConfig holds settings for the hosted payment provider that
// delivers fulfillment webhooks to this service.
type CheckoutConfig struct {
	// SigningSecret is the shared HMAC secret for webhook signature
	// verification. The fulfillment endpoint refuses to start without it.
	SigningSecret string `mapstructure:"signing_secret"`
	// StoreID identifies our store inside the provider, recorded on
	// grants for audit purposes.
	StoreID string `mapstructure:"store_id"`
	// ProcessTimeout bounds fulfillment work per webhook delivery, in
	// seconds. Must stay below the provider's own delivery timeout so a
	// slow database does not trigger spurious redeliveries.
	ProcessTimeout int `mapstructure:"process_timeout"`
}

// RealtimeConfig holds settings for the library SSE hub.
type RealtimeConfig struct {
	MaxConnsPerAccount int `mapstructure:"max_conns_per_account"`
	SendBufferSize     int `mapstructure:"send_buffer_size"`
}
