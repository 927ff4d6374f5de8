package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagDuration = flag.Float64("duration", 0, "Seconds of playback to simulate")
	flagBodies   = flag.String("bodies", "", "Rigid-body record file")
	flagJoints   = flag.String("joints", "", "Joint record file")
	flagPose     = flag.String("pose", "", "Initial transform buffer file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDuration > 0 {
		cfg.Simulation.Duration = float32(*flagDuration)
	}
	if *flagBodies != "" {
		cfg.Data.RigidBodyFile = *flagBodies
	}
	if *flagJoints != "" {
		cfg.Data.JointFile = *flagJoints
	}
	if *flagPose != "" {
		cfg.Data.PoseFile = *flagPose
	}
}
