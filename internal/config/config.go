// Package config handles simulation configuration loading and management.
package config

// Config holds all simulation settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Data       DataConfig       `yaml:"data"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds stepping and gravity settings.
type SimulationConfig struct {
	FrameRate     int     `yaml:"frame_rate"`      // frames simulated per second of playback
	FixedTimeStep float32 `yaml:"fixed_time_step"` // engine sub-step size in seconds
	MaxSubSteps   int     `yaml:"max_sub_steps"`   // sub-step cap per frame
	Duration      float32 `yaml:"duration"`        // seconds of playback to simulate
	GravityY      float32 `yaml:"gravity_y"`
}

// DataConfig holds scene data file paths.
type DataConfig struct {
	RigidBodyFile string `yaml:"rigidbody_file"` // rigid-body record buffer
	JointFile     string `yaml:"joint_file"`     // joint record buffer, may be absent
	PoseFile      string `yaml:"pose_file"`      // initial transform buffer, raw float32
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			FrameRate:     60,
			FixedTimeStep: 1.0 / 60,
			MaxSubSteps:   4,
			Duration:      5,
			GravityY:      -9.81,
		},
		Data: DataConfig{
			RigidBodyFile: "rigidbodies.bin",
			JointFile:     "joints.bin",
			PoseFile:      "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
