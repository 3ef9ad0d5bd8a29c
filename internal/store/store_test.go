package store

import "github.com/antibody-tools/oas-cli/internal/config"

// configStoreCfg builds a StoreConfig for driver-selection tests.
func configStoreCfg(driver, url string) config.StoreConfig {
	return config.StoreConfig{Driver: driver, DatabaseURL: url}
}
