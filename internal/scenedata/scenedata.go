// Package scenedata loads scene record buffers and pose buffers from disk.
package scenedata

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/Faultbox/bonephys/internal/config"
	vecmath "github.com/Faultbox/bonephys/pkg/math"
	"github.com/Faultbox/bonephys/pkg/physics"
)

// LoadScene reads the configured record files and builds a Scene plus its
// initial transform buffer. An unset joint file means a zero-joint scene and
// an unset pose file falls back to identity transforms for every body, but a
// configured path that cannot be read is an error.
func LoadScene(data config.DataConfig) (*physics.Scene, []float32, error) {
	rbData, err := os.ReadFile(data.RigidBodyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading rigid bodies: %w", err)
	}

	var jData []byte
	if data.JointFile != "" {
		jData, err = os.ReadFile(data.JointFile)
		if err != nil {
			return nil, nil, fmt.Errorf("reading joints: %w", err)
		}
	}

	scene, err := physics.NewScene(rbData, jData)
	if err != nil {
		return nil, nil, err
	}

	if data.PoseFile == "" {
		return scene, IdentityPose(len(scene.RigidBodies())), nil
	}

	pose, err := ReadPose(data.PoseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading pose: %w", err)
	}
	return scene, pose, nil
}

// IdentityPose returns a transform buffer of count identity matrices.
func IdentityPose(count int) []float32 {
	buf := make([]float32, count*16)
	id := vecmath.Identity()
	for i := 0; i < count; i++ {
		copy(buf[i*16:], id[:])
	}
	return buf
}

// ReadPose reads a raw little-endian float32 transform buffer.
func ReadPose(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("pose file %s: length %d is not a float32 multiple", path, len(data))
	}

	buf := make([]float32, len(data)/4)
	for i := range buf {
		buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return buf, nil
}

// WritePose writes a transform buffer as raw little-endian float32s.
func WritePose(path string, buf []float32) error {
	data := make([]byte, 0, len(buf)*4)
	for _, v := range buf {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
	}
	return os.WriteFile(path, data, 0644)
}
