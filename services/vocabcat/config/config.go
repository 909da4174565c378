// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the service-wide typed configuration: stopping
// thresholds, exposure and calibration parameters, session TTL, and HTTP
// server settings. Defaults are embedded as YAML and overridable by a
// deployment-supplied file, matching the teacher's PreFilterConfig pattern.
package config

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/cat"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the full service configuration (spec.md §4.5, §4.8, §4.9,
// §4.10, §5).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Stopping   StoppingConfig   `yaml:"stopping"`
	Exposure   ExposureConfig   `yaml:"exposure"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Session    SessionConfig    `yaml:"session"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port              int           `yaml:"port"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period"`
}

// StoppingConfig mirrors cat.StoppingConfig's fields for YAML loading.
type StoppingConfig struct {
	HardCap                int     `yaml:"hard_cap"`
	MinItemsForSE          int     `yaml:"min_items_for_se"`
	SEThreshold            float64 `yaml:"se_threshold"`
	MinItemsForConvergence int     `yaml:"min_items_for_convergence"`
	ConvergenceWindow      int     `yaml:"convergence_window"`
	ConvergenceThreshold   float64 `yaml:"convergence_threshold"`
}

// ToCat converts to the cat package's own config type.
func (s StoppingConfig) ToCat() cat.StoppingConfig {
	return cat.StoppingConfig{
		HardCap:                s.HardCap,
		MinItemsForSE:          s.MinItemsForSE,
		SEThreshold:            s.SEThreshold,
		MinItemsForConvergence: s.MinItemsForConvergence,
		ConvergenceWindow:      s.ConvergenceWindow,
		ConvergenceThreshold:   s.ConvergenceThreshold,
	}
}

// ExposureConfig holds the exposure-control cap and relaxation step.
type ExposureConfig struct {
	MaxRate         float64 `yaml:"max_rate"`
	RelaxationStep  float64 `yaml:"relaxation_step"`
	OverusedRate    float64 `yaml:"overused_rate"`
	UnderusedRate   float64 `yaml:"underused_rate"`
}

// CalibrationConfig holds the offline calibration job's parameters.
type CalibrationConfig struct {
	ResponseThreshold      int `yaml:"response_threshold"`
	ThreePLSessionThreshold int `yaml:"three_pl_session_threshold"`
}

// SessionConfig holds session lifecycle timing.
type SessionConfig struct {
	TTL          time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Default returns the configuration parsed from the embedded defaults.yaml.
// It panics on malformed embedded YAML, since that can only be a packaging
// defect caught well before runtime.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults.yaml is invalid: %v", err))
	}
	return cfg
}

// Load parses an override document on top of Default(), so a deployment
// need only specify the fields it wants to change.
func Load(override []byte) (Config, error) {
	cfg := Default()
	if len(override) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(override, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse override: %w", err)
	}
	return cfg, nil
}
