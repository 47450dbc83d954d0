package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/soocke/sentinel-go/app"
	"github.com/soocke/sentinel-go/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath, camera, apiURL string
	var debugMode bool

	flagSet := pflag.NewFlagSet("sentinel", pflag.ContinueOnError)
	flagSet.StringVarP(&cfgPath, "config", "c", "sentinel.yaml", "path to a JSON or YAML config file")
	flagSet.StringVar(&camera, "camera", "", "remote camera id to monitor")
	flagSet.StringVar(&apiURL, "api-url", "", "base URL of the camera snapshot API (env "+config.EnvAPIURL+")")
	flagSet.BoolVar(&debugMode, "debug", false, "debug logging and resource metrics")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
	}
	// flags override the file and the environment
	if camera != "" {
		cfg.CameraID = camera
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}
	if debugMode {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	logger.Info("starting", "api_url", cfg.APIURL, "camera", cfg.CameraID, "config", cfgPath)

	application := app.NewApp("Sentinel", 820, 520, cfg, cfgPath, logger)
	application.Start()
	return nil
}
