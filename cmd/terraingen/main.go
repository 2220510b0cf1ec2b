package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"path/filepath"

	"terrainkit/internal/config"
	"terrainkit/internal/pipeline"
	"terrainkit/internal/preview"
)

func main() {
	var (
		cfgPath     string
		outPath     string
		gridsPath   string
		previewPath string
		scale       int
		dumpConfig  string
	)
	flag.StringVar(&cfgPath, "config", "", "path to generation config (JSON or YAML)")
	flag.StringVar(&outPath, "out", "", "write the tile envelope JSON here (stdout when empty)")
	flag.StringVar(&gridsPath, "grids", "", "write raw output grids to this store file")
	flag.StringVar(&previewPath, "preview", "", "write a PNG overview here")
	flag.IntVar(&scale, "scale", 4, "pixels per tile in the preview")
	flag.StringVar(&dumpConfig, "dump-config", "", "write the effective config here and exit")
	flag.Parse()

	logger := pipeline.NewLogger(os.Stderr)

	if wrote, err := writeConfigFromEnv(cfgPath); err != nil {
		log.Fatalf("sync config from environment: %v", err)
	} else if wrote {
		logger.Printf("config written from environment to %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if dumpConfig != "" {
		if err := config.Dump(dumpConfig, cfg); err != nil {
			log.Fatalf("dump config: %v", err)
		}
		return
	}

	res, err := pipeline.Run(cfg, logger)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	if gridsPath != "" {
		if err := res.WriteGrids(gridsPath); err != nil {
			log.Fatalf("write grids: %v", err)
		}
		logger.Printf("grids written to %s", gridsPath)
	}
	if previewPath != "" {
		img, err := res.Preview(scale)
		if err != nil {
			log.Fatalf("render preview: %v", err)
		}
		if err := preview.Save(previewPath, img); err != nil {
			log.Fatalf("save preview: %v", err)
		}
		logger.Printf("preview written to %s", previewPath)
	}

	if err := writeEnvelope(res, outPath); err != nil {
		log.Fatalf("write envelope: %v", err)
	}
}

func writeEnvelope(res *pipeline.Result, path string) error {
	if path == "" {
		w := bufio.NewWriter(os.Stdout)
		if err := res.WriteEnvelope(w); err != nil {
			return err
		}
		return w.Flush()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := res.WriteEnvelope(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
