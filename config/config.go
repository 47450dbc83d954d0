package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvAPIURL overrides the configured remote API base.
const EnvAPIURL = "MONITOR_API_URL"

// Config holds runtime configuration for the monitoring client.
// Fields may be loaded from a JSON or YAML file and overridden by
// command-line flags.
type Config struct {
	Debug bool `json:"debug" yaml:"debug"`

	// Remote snapshot API
	APIURL           string   `json:"api_url" yaml:"api_url"`
	CameraID         string   `json:"camera_id" yaml:"camera_id"`
	Cameras          []string `json:"cameras" yaml:"cameras"`
	PollIntervalMs   int      `json:"poll_interval_ms" yaml:"poll_interval_ms"`
	MaxRetries       int      `json:"max_retries" yaml:"max_retries"`
	RequestTimeoutMs int      `json:"request_timeout_ms" yaml:"request_timeout_ms"`

	// Local capture
	CaptureWidth  int  `json:"capture_width" yaml:"capture_width"`
	CaptureHeight int  `json:"capture_height" yaml:"capture_height"`
	CaptureFPS    int  `json:"capture_fps" yaml:"capture_fps"`
	Audio         bool `json:"audio" yaml:"audio"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		APIURL:           "http://localhost:5000",
		CameraID:         "cam_alice",
		Cameras:          []string{"cam_alice", "cam_bob"},
		PollIntervalMs:   100,
		MaxRetries:       5,
		RequestTimeoutMs: 5000,
		CaptureWidth:     1280,
		CaptureHeight:    720,
		CaptureFPS:       15,
		Audio:            true,
	}
}

// Validate clamps/normalizes values to safe ranges. It fails only for an
// unusable API URL.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = "http://localhost:5000"
	}
	if c.PollIntervalMs < 10 {
		c.PollIntervalMs = 100
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.RequestTimeoutMs <= 0 {
		c.RequestTimeoutMs = 5000
	}
	if c.CaptureWidth <= 0 || c.CaptureHeight <= 0 {
		c.CaptureWidth, c.CaptureHeight = 1280, 720
	}
	if c.CaptureFPS <= 0 || c.CaptureFPS > 60 {
		c.CaptureFPS = 15
	}
	if c.CameraID == "" && len(c.Cameras) > 0 {
		c.CameraID = c.Cameras[0]
	}
	if c.CameraID != "" && !contains(c.Cameras, c.CameraID) {
		c.Cameras = append([]string{c.CameraID}, c.Cameras...)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid api_url %q", c.APIURL)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load attempts to read configuration from path; the format follows the
// extension (.yaml/.yml or JSON otherwise). If the file does not exist it
// returns DefaultConfig(). On decode error it returns defaults with the
// error. The MONITOR_API_URL environment variable overrides the API URL.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	applyEnv(cfg)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		d := DefaultConfig()
		applyEnv(d)
		return d, fmt.Errorf("config: decode %s: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, cfg.Validate()
}

func applyEnv(c *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = strings.TrimRight(v, "/")
	}
}

// Save writes the configuration to path in the format its extension selects.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
