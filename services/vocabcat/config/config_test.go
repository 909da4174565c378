package config

import "testing"

func TestDefaultMatchesSpecLiterals(t *testing.T) {
	cfg := Default()
	if cfg.Stopping.HardCap != 40 {
		t.Errorf("hard cap = %d, want 40", cfg.Stopping.HardCap)
	}
	if cfg.Stopping.SEThreshold != 0.30 {
		t.Errorf("se threshold = %v, want 0.30", cfg.Stopping.SEThreshold)
	}
	if cfg.Exposure.MaxRate != 0.25 {
		t.Errorf("exposure max rate = %v, want 0.25", cfg.Exposure.MaxRate)
	}
	if cfg.Calibration.ResponseThreshold != 200 {
		t.Errorf("calibration threshold = %d, want 200", cfg.Calibration.ResponseThreshold)
	}
	if cfg.Calibration.ThreePLSessionThreshold != 5000 {
		t.Errorf("3pl threshold = %d, want 5000", cfg.Calibration.ThreePLSessionThreshold)
	}
	if cfg.Session.TTL.Hours() != 2 {
		t.Errorf("session ttl = %v, want 2h", cfg.Session.TTL)
	}
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	cfg, err := Load([]byte("stopping:\n  hard_cap: 60\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Stopping.HardCap != 60 {
		t.Fatalf("hard cap = %d, want overridden 60", cfg.Stopping.HardCap)
	}
	if cfg.Stopping.SEThreshold != 0.30 {
		t.Fatalf("se threshold should keep default, got %v", cfg.Stopping.SEThreshold)
	}
}

func TestStoppingConfigToCat(t *testing.T) {
	cfg := Default()
	catCfg := cfg.Stopping.ToCat()
	if catCfg.HardCap != cfg.Stopping.HardCap {
		t.Fatalf("ToCat did not preserve HardCap")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load([]byte("not: valid: yaml: : :"))
	if err == nil {
		t.Fatal("expected an error for malformed override YAML")
	}
}
