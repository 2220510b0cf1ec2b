package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"terrainkit/internal/config"
)

func TestWriteConfigFromEnvJSON(t *testing.T) {
	t.Setenv("TERRAIN_CONFIG_YAML_B64", "")

	cfg := config.Default()
	cfg.Grid.Seed = 4242
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	t.Setenv("TERRAIN_CONFIG_JSON", string(data))

	path := filepath.Join(t.TempDir(), "config.json")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if loaded.Grid.Seed != 4242 {
		t.Fatalf("unexpected seed: %d", loaded.Grid.Seed)
	}
}

func TestWriteConfigFromEnvYAML(t *testing.T) {
	cfg := config.Default()
	cfg.Lakes.UnresolvedPolicy = config.UnresolvedAllowWithStrictGates
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	t.Setenv("TERRAIN_CONFIG_JSON", "")
	t.Setenv("TERRAIN_CONFIG_YAML_B64", base64.StdEncoding.EncodeToString(data))

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if loaded.Lakes.UnresolvedPolicy != config.UnresolvedAllowWithStrictGates {
		t.Fatalf("unexpected policy: %q", loaded.Lakes.UnresolvedPolicy)
	}
}

func TestWriteConfigFromEnvPartialOverlay(t *testing.T) {
	t.Setenv("TERRAIN_CONFIG_YAML_B64", "")
	t.Setenv("TERRAIN_CONFIG_JSON", `{"grid":{"width":64}}`)

	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := writeConfigFromEnv(path); err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	def := config.Default()
	if loaded.Grid.Width != 64 || loaded.Grid.Height != def.Grid.Height {
		t.Fatalf("overlay lost defaults: %+v", loaded.Grid)
	}
}

func TestWriteConfigFromEnvNoop(t *testing.T) {
	t.Setenv("TERRAIN_CONFIG_JSON", "")
	t.Setenv("TERRAIN_CONFIG_YAML_B64", "")

	wrote, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if wrote {
		t.Fatalf("expected no config to be written")
	}
}

func TestWriteConfigFromEnvErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		t.Setenv("TERRAIN_CONFIG_JSON", `{}`)
		if _, err := writeConfigFromEnv(""); err == nil {
			t.Fatal("expected error without a config path")
		}
	})
	t.Run("bad base64", func(t *testing.T) {
		t.Setenv("TERRAIN_CONFIG_JSON", "")
		t.Setenv("TERRAIN_CONFIG_YAML_B64", "not base64!")
		if _, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "c.yaml")); err == nil {
			t.Fatal("expected decode error")
		}
	})
	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("TERRAIN_CONFIG_YAML_B64", "")
		t.Setenv("TERRAIN_CONFIG_JSON", `{"coherence":{"microLakePolicy":"shrink"}}`)
		_, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "c.json"))
		if !errors.Is(err, config.ErrInvalid) {
			t.Fatalf("expected ErrInvalid, got %v", err)
		}
	})
}
