package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://localhost:5000" || cfg.PollIntervalMs != 100 || cfg.MaxRetries != 5 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	body := "api_url: http://cams.local:8080/\ncamera_id: cam_bob\npoll_interval_ms: 250\nmax_retries: 0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://cams.local:8080" || cfg.CameraID != "cam_bob" || cfg.PollIntervalMs != 250 {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("max_retries not clamped: %d", cfg.MaxRetries)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://override:9000/")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "http://override:9000" {
		t.Fatalf("env not applied: %q", cfg.APIURL)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := filepath.Join(t.TempDir(), "monitor.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil || cfg == nil || cfg.APIURL != "http://localhost:5000" {
		t.Fatalf("expected defaults with error, got %+v %v", cfg, err)
	}
}

func TestLoad_BadFileKeepsEnvOverride(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://cams.example:8080")
	path := filepath.Join(t.TempDir(), "monitor.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg.APIURL != "http://cams.example:8080" {
		t.Fatalf("env ignored on decode error: %q", cfg.APIURL)
	}
}

func TestSaveRoundTripJSON(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := filepath.Join(t.TempDir(), "monitor.json")
	cfg := DefaultConfig()
	cfg.CameraID = "cam_carol"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.CameraID != "cam_carol" || got.Cameras[0] != "cam_carol" {
		t.Fatalf("camera not persisted: %+v", got)
	}
}

func TestValidate_RejectsBadURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}
