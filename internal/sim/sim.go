// Package sim runs a headless secondary-physics playback loop.
package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/bonephys/internal/config"
	"github.com/Faultbox/bonephys/internal/logger"
	"github.com/Faultbox/bonephys/internal/scenedata"
	vecmath "github.com/Faultbox/bonephys/pkg/math"
	"github.com/Faultbox/bonephys/pkg/physics"
)

// Sim owns a live physics world and drives it frame by frame.
type Sim struct {
	cfg    *config.Config
	world  *physics.World
	bodies int
	joints int
}

// New loads the configured scene and builds the simulation world.
func New(cfg *config.Config) (*Sim, error) {
	if cfg.Simulation.FrameRate <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", cfg.Simulation.FrameRate)
	}
	if cfg.Simulation.FixedTimeStep <= 0 {
		return nil, fmt.Errorf("invalid fixed time step %f", cfg.Simulation.FixedTimeStep)
	}

	scene, pose, err := scenedata.LoadScene(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("loading scene: %w", err)
	}

	world, err := physics.NewWorld(scene, pose)
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}
	world.SetGravity(vecmath.Vec3{Y: cfg.Simulation.GravityY})

	logger.Info("simulation ready",
		zap.Int("bodies", len(scene.RigidBodies())),
		zap.Int("joints", len(scene.Joints())),
		zap.Float32("gravity_y", cfg.Simulation.GravityY),
	)

	return &Sim{
		cfg:    cfg,
		world:  world,
		bodies: len(scene.RigidBodies()),
		joints: len(scene.Joints()),
	}, nil
}

// Run steps the world for the configured playback duration, logging body
// heights once per simulated second.
func (s *Sim) Run() error {
	rate := s.cfg.Simulation.FrameRate
	dt := 1.0 / float32(rate)
	frames := int(s.cfg.Simulation.Duration * float32(rate))
	if frames <= 0 {
		return fmt.Errorf("nothing to simulate: duration %f", s.cfg.Simulation.Duration)
	}

	logger.Info("starting playback",
		zap.Int("frames", frames),
		zap.Float32("frame_dt", dt),
		zap.Float32("fixed_time_step", s.cfg.Simulation.FixedTimeStep),
	)

	for f := 1; f <= frames; f++ {
		s.world.Step(dt, float32(s.cfg.Simulation.MaxSubSteps), s.cfg.Simulation.FixedTimeStep)

		if f%rate == 0 {
			logger.Debug("progress",
				zap.Int("second", f/rate),
				zap.Float32s("heights", s.heights()),
			)
		}
	}

	logger.Info("playback finished",
		zap.Int("frames", frames),
		zap.Float32s("heights", s.heights()),
	)
	return nil
}

// Pose returns the live transform buffer.
func (s *Sim) Pose() []float32 {
	return s.world.Transforms()
}

// heights extracts each body's world-space Y, a cheap progress signal.
func (s *Sim) heights() []float32 {
	buf := s.world.Transforms()
	out := make([]float32, s.bodies)
	for i := range out {
		out[i] = buf[i*16+13]
	}
	return out
}

// Close releases the engine resources.
func (s *Sim) Close() {
	s.world.Close()
}
