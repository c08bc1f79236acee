// Command sgns-server loads a model config, then serves an HTTP API for
// starting batch runs and streaming their population samples to connected
// WebSocket dashboards.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/achemlab/sgnssim/internal/config"
	"github.com/achemlab/sgnssim/internal/logger"
)

func main() {
	cfg := loadServerConfig()
	log := logger.New(cfg.LogLevel)

	if cfg.ModelFile == "" {
		log.Fatalf("-model-file is required")
	}

	modelCfg, err := loadModelConfigFromFile(cfg.ModelFile)
	if err != nil {
		log.Fatalf("loading model file: %v", err)
	}

	model, err := config.BuildModelFromConfig(modelCfg)
	if err != nil {
		log.Fatalf("building model: %v", err)
	}

	envType := cfg.EnvType
	if envType == "" {
		envType, err = rootTypeName(modelCfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	srv := NewServer(model, envType, cfg, log)
	defer srv.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/run", srv.handleStartRun)
	mux.HandleFunc("/status", srv.handleStatus)
	mux.HandleFunc("/ws", srv.handleWebSocket)

	log.Infof("sgns-server listening on %s (model=%s, env-type=%s)", cfg.Addr, modelCfg.Name, envType)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func loadModelConfigFromFile(path string) (config.ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.ModelConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg config.ModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return config.ModelConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func rootTypeName(cfg config.ModelConfig) (string, error) {
	for _, ct := range cfg.CompartmentTypes {
		if ct.Parent == "" {
			return ct.Name, nil
		}
	}
	return "", fmt.Errorf("model %q declares no root compartment type (one type must have an empty parent)", cfg.Name)
}
