package conf

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/storage"
	"github.com/sjzar/advshortcut/internal/updater"
	"github.com/sjzar/advshortcut/pkg/util"
)

const (
	DefaultHTTPAddr   = "127.0.0.1:5030"
	DefaultUpdateRepo = "sjzar/advshortcut"
)

type Config struct {
	ConfigDir string        `mapstructure:"-" json:"config_dir"`
	DataDir   string        `mapstructure:"data_dir" json:"data_dir"`
	Storage   StorageConfig `mapstructure:"storage" json:"storage"`
	HTTP      HTTPConfig    `mapstructure:"http" json:"http"`
	Update    UpdateConfig  `mapstructure:"update" json:"update"`
	Webhook   *Webhook      `mapstructure:"webhook" json:"webhook,omitempty"`
	Watch     bool          `mapstructure:"watch" json:"watch"`
	Debug     bool          `mapstructure:"debug" json:"debug"`
}

type StorageConfig struct {
	Type        string `mapstructure:"type" json:"type"`
	Backups     int    `mapstructure:"backups" json:"backups"`
	Compression string `mapstructure:"compression" json:"compression"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Addr    string `mapstructure:"addr" json:"addr"`
}

type UpdateConfig struct {
	Repo           string        `mapstructure:"repo" json:"repo"`
	Endpoint       string        `mapstructure:"endpoint" json:"endpoint"`
	AutoCheck      bool          `mapstructure:"auto_check" json:"auto_check"`
	AutoCheckDelay time.Duration `mapstructure:"auto_check_delay" json:"auto_check_delay"`
	// Cron is an optional schedule for periodic silent checks.
	Cron string `mapstructure:"cron" json:"cron"`
}

var Defaults = map[string]any{
	"storage.type":            storage.TypeJSON,
	"storage.backups":         storage.DefaultBackups,
	"storage.compression":     string(storage.CodecZstd),
	"http.enabled":            false,
	"http.addr":               DefaultHTTPAddr,
	"update.repo":             DefaultUpdateRepo,
	"update.endpoint":         updater.DefaultEndpoint,
	"update.auto_check":       true,
	"update.auto_check_delay": updater.DefaultAutoCheckDelay.String(),
	"watch":                   true,
}

// Validate rejects values that would only fail later at runtime.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Type) {
	case "", storage.TypeJSON, storage.TypeSQLite:
	default:
		return errors.InvalidParam("storage.type", "must be json or sqlite")
	}
	if c.Storage.Compression != "" {
		if _, err := storage.ParseCodec(c.Storage.Compression); err != nil {
			return errors.ConfigInvalid("storage.compression", err)
		}
	}
	if c.Storage.Backups < 0 {
		return errors.InvalidParam("storage.backups", "must not be negative")
	}
	if c.Update.Cron != "" {
		if _, err := cron.ParseStandard(c.Update.Cron); err != nil {
			return errors.ConfigInvalid("update.cron", err)
		}
	}
	return nil
}

func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		c.DataDir = util.DefaultDataDir()
	}
	return c.DataDir
}

func (c *Config) GetHTTPAddr() string {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	return c.HTTP.Addr
}

func (c *Config) GetWebhook() *Webhook {
	return c.Webhook
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		DataDir:     c.GetDataDir(),
		Type:        c.Storage.Type,
		Backups:     c.Storage.Backups,
		Compression: c.Storage.Compression,
	}
}

func (c *Config) GetAutoCheckDelay() time.Duration {
	if c.Update.AutoCheckDelay <= 0 {
		return updater.DefaultAutoCheckDelay
	}
	return c.Update.AutoCheckDelay
}
