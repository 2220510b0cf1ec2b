package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"terrainkit/internal/config"
)

// writeConfigFromEnv materialises a configuration handed over through
// TERRAIN_CONFIG_JSON or TERRAIN_CONFIG_YAML_B64 at cfgPath. Payloads overlay
// the defaults, so partial documents are accepted.
func writeConfigFromEnv(cfgPath string) (bool, error) {
	jsonPayload := os.Getenv("TERRAIN_CONFIG_JSON")
	yamlPayload := os.Getenv("TERRAIN_CONFIG_YAML_B64")

	if jsonPayload == "" && yamlPayload == "" {
		return false, nil
	}
	if cfgPath == "" {
		return false, errors.New("configuration provided through the environment but no -config path supplied")
	}

	cfg := config.Default()
	if jsonPayload != "" {
		if err := config.Decode([]byte(jsonPayload), false, cfg); err != nil {
			return false, fmt.Errorf("decode env config: %w", err)
		}
	} else {
		data, err := base64.StdEncoding.DecodeString(yamlPayload)
		if err != nil {
			return false, fmt.Errorf("decode env config yaml: %w", err)
		}
		if err := config.Decode(data, true, cfg); err != nil {
			return false, fmt.Errorf("decode env config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return false, fmt.Errorf("validate env config: %w", err)
	}
	if err := config.Dump(cfgPath, cfg); err != nil {
		return false, err
	}
	return true, nil
}
