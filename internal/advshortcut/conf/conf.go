package conf

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/pkg/config"
)

const (
	AppName      = "advshortcut"
	EnvPrefix    = "ADVSHORTCUT"
	EnvConfigDir = "ADVSHORTCUT_DIR"
)

// Load reads the config file from configPath (or $ADVSHORTCUT_DIR, or
// ~/.advshortcut), applies ADVSHORTCUT_* environment overrides and then the
// command line overrides in cmdConf. The file is created with defaults
// when writeConfig is set and it does not exist yet.
func Load(configPath string, cmdConf map[string]any, writeConfig bool) (*Config, *config.Manager, error) {
	if configPath == "" {
		configPath = os.Getenv(EnvConfigDir)
	}

	cm, err := config.New(AppName, configPath, "", EnvPrefix, writeConfig)
	if err != nil {
		log.Error().Err(err).Msg("load config failed")
		return nil, nil, errors.ConfigInvalid("config_dir", err)
	}

	conf := &Config{}
	config.SetDefaults(cm.Viper, conf, Defaults)

	if err := cm.Load(conf); err != nil {
		log.Error().Err(err).Msg("load config failed")
		return nil, nil, errors.ConfigInvalid("config", err)
	}

	// command line flags win over the file but are not written back
	if len(cmdConf) != 0 {
		for key, value := range cmdConf {
			cm.Viper.Set(key, value)
		}
		if err := cm.Load(conf); err != nil {
			return nil, nil, errors.ConfigInvalid("config", err)
		}
	}
	conf.ConfigDir = cm.Path

	if err := conf.Validate(); err != nil {
		return nil, nil, err
	}

	b, _ := json.Marshal(conf)
	log.Debug().Msgf("config: %s", string(b))

	return conf, cm, nil
}
