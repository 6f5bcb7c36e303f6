// Manages server configuration stored in server_config.json.

package storage

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile is the configuration file name inside the data directory.
const ConfigFile = "server_config.json"

// ServerConfig stores all server-wide configuration.
// Loaded from server_config.json, created with defaults if missing.
type ServerConfig struct {
	// JWTSecret signs admin session tokens.
	// Auto-generated if empty on first load.
	JWTSecret []byte `json:"jwt_secret"`

	Admin      AdminConfig  `json:"admin"`
	VAPID      VAPIDConfig  `json:"vapid"`
	Quotas     ServerQuotas `json:"quotas"`
	RateLimits RateLimits   `json:"rate_limits"`
	Backup     BackupConfig `json:"backup"`
}

// AdminConfig is the single shared admin credential.
type AdminConfig struct {
	Username string `json:"username"`
	// PasswordHash is a bcrypt hash, or the plain password when it does not
	// start with "$2".
	PasswordHash string `json:"password_hash"`
}

// VAPIDConfig holds the web push key pair. Empty keys disable push.
type VAPIDConfig struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Subscriber string `json:"subscriber"`
}

// Enabled reports whether both keys are set.
func (v *VAPIDConfig) Enabled() bool {
	return v.PublicKey != "" && v.PrivateKey != ""
}

// BackupConfig configures periodic snapshots to an S3 compatible bucket.
// An empty bucket disables backups.
type BackupConfig struct {
	Bucket string `json:"bucket"`
	// Endpoint overrides the S3 endpoint. When empty and AccountID is set,
	// the Cloudflare R2 endpoint of that account is used.
	Endpoint  string `json:"endpoint"`
	AccountID string `json:"account_id"`
	Region    string `json:"region"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	// Schedule is a cron spec, "@every 24h" by default.
	Schedule string `json:"schedule"`
	Prefix   string `json:"prefix"`
}

// Enabled reports whether a bucket is configured.
func (b *BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Validate checks that an enabled backup has credentials.
func (b *BackupConfig) Validate() error {
	if !b.Enabled() {
		return nil
	}
	if b.AccessKey == "" || b.SecretKey == "" {
		return errors.New("access_key and secret_key are required when bucket is set")
	}
	return nil
}

// RateLimits defines rate limiting configuration (requests per minute).
type RateLimits struct {
	// LoginRatePerMin limits admin login attempts.
	// 0 means unlimited.
	LoginRatePerMin int `json:"login_rate_per_min"`

	// WriteRatePerMin limits write operations (POST/PATCH/DELETE).
	// 0 means unlimited.
	WriteRatePerMin int `json:"write_rate_per_min"`

	// ReadRatePerMin limits read operations.
	// 0 means unlimited.
	ReadRatePerMin int `json:"read_rate_per_min"`
}

// Validate checks that rate limit values are non-negative.
func (r *RateLimits) Validate() error {
	if r.LoginRatePerMin < 0 {
		return errors.New("login_rate_per_min must be non-negative")
	}
	if r.WriteRatePerMin < 0 {
		return errors.New("write_rate_per_min must be non-negative")
	}
	if r.ReadRatePerMin < 0 {
		return errors.New("read_rate_per_min must be non-negative")
	}
	return nil
}

// DefaultRateLimits returns the default rate limits.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		LoginRatePerMin: 5,
		WriteRatePerMin: 60,
		ReadRatePerMin:  6000,
	}
}

// ServerQuotas defines server-wide resource limits.
type ServerQuotas struct {
	// MaxRequestBodyBytes limits the size of any single HTTP request body.
	MaxRequestBodyBytes int64 `json:"max_request_body_bytes"`
}

// Validate checks that all quota values are positive.
func (q *ServerQuotas) Validate() error {
	if q.MaxRequestBodyBytes <= 0 {
		return errors.New("max_request_body_bytes must be positive")
	}
	return nil
}

// DefaultServerQuotas returns the default server-wide quotas.
func DefaultServerQuotas() ServerQuotas {
	return ServerQuotas{
		MaxRequestBodyBytes: 1024 * 1024, // 1 MiB
	}
}

// Validate checks that the configuration is valid.
func (c *ServerConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 bytes")
	}
	if err := c.Quotas.Validate(); err != nil {
		return fmt.Errorf("quotas: %w", err)
	}
	if err := c.RateLimits.Validate(); err != nil {
		return fmt.Errorf("rate_limits: %w", err)
	}
	if err := c.Backup.Validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// LoadServerConfig loads configuration from dataDir/server_config.json.
// Creates the file with defaults if it doesn't exist.
// Auto-generates JWTSecret if empty.
func LoadServerConfig(dataDir string) (*ServerConfig, error) {
	cfg := ServerConfig{
		Quotas:     DefaultServerQuotas(),
		RateLimits: DefaultRateLimits(),
		Backup:     BackupConfig{Schedule: "@every 24h", Prefix: "backups"},
	}

	data, err := os.ReadFile(filepath.Join(dataDir, ConfigFile)) //nolint:gosec // G304: path is constructed from dataDir
	missing := errors.Is(err, os.ErrNotExist)
	if err != nil && !missing {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
		}
	}

	modified := false
	if len(cfg.JWTSecret) == 0 {
		cfg.JWTSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.JWTSecret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		modified = true
	}
	if modified || missing {
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides secrets with values from env, typically read from a
// .env file. Empty values are ignored.
func (c *ServerConfig) ApplyEnv(env map[string]string) {
	set := func(dst *string, key string) {
		if v := env[key]; v != "" {
			*dst = v
		}
	}
	set(&c.Admin.Username, "ADMIN_USERNAME")
	set(&c.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	set(&c.VAPID.PublicKey, "VAPID_PUBLIC_KEY")
	set(&c.VAPID.PrivateKey, "VAPID_PRIVATE_KEY")
	set(&c.VAPID.Subscriber, "VAPID_SUBSCRIBER")
	set(&c.Backup.AccountID, "R2_ACCOUNT_ID")
	set(&c.Backup.AccessKey, "R2_ACCESS_KEY")
	set(&c.Backup.SecretKey, "R2_SECRET_KEY")
	set(&c.Backup.Bucket, "BACKUP_BUCKET")
}

// Save saves configuration to dataDir/server_config.json.
func (c *ServerConfig) Save(dataDir string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dataDir, ConfigFile), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFile, err)
	}
	return nil
}
