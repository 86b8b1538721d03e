package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"
)

// EnvPrefix is prepended to every variable name in the env tags of Config.
const EnvPrefix = "ACCOUNTKEEPER_"

// parseEnv overlays variables that are set; unset ones keep their value.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "parse env").Wrap(err)
	}
	return nil
}
