// Package main is the entry point for the headless physics demo.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/bonephys/internal/config"
	"github.com/Faultbox/bonephys/internal/logger"
	"github.com/Faultbox/bonephys/internal/sim"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== BonePhys Demo ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// Build the simulation
	s, err := sim.New(cfg)
	if err != nil {
		logger.Error("failed to create simulation", zap.Error(err))
		os.Exit(1)
	}
	defer s.Close()

	// Run the playback loop
	if err := s.Run(); err != nil {
		logger.Error("simulation error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("simulation closed normally")
}
