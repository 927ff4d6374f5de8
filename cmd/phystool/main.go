// phystool is a CLI utility for working with secondary-physics scene files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/bonephys/internal/config"
	"github.com/Faultbox/bonephys/internal/scenedata"
	vecmath "github.com/Faultbox/bonephys/pkg/math"
	"github.com/Faultbox/bonephys/pkg/physics"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "gen":
		cmdGen(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`phystool - secondary-physics scene file utility

Usage:
  phystool <command> [options]

Commands:
  info <rigidbodies.bin> [joints.bin]  Show scene contents
  gen [-links N] [-out dir]            Generate a hanging-chain test scene
  config [path]                        Write the default config file

Examples:
  phystool info model/hair_bodies.bin model/hair_joints.bin
  phystool gen -links 8 -out ./scene
  phystool config ./config.yaml`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: phystool info <rigidbodies.bin> [joints.bin]")
		os.Exit(1)
	}

	data := config.DataConfig{RigidBodyFile: args[0]}
	if len(args) > 1 {
		data.JointFile = args[1]
	}

	scene, _, err := scenedata.LoadScene(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bodies := scene.RigidBodies()
	joints := scene.Joints()
	fmt.Printf("Rigid bodies: %d\n", len(bodies))
	fmt.Printf("Joints:       %d\n\n", len(joints))

	fmt.Println("  #  shape    mode             mass    group      mask")
	for i, rb := range bodies {
		fmt.Printf("%3d  %-7s  %-15s  %6.2f  %08x  %08x\n",
			i, rb.ShapeType, rb.PhysicsMode, rb.Mass, rb.CollisionGroup, rb.CollisionMask)
	}

	if len(joints) > 0 {
		fmt.Println("\n  #  type        a -> b   position")
		for i, j := range joints {
			fmt.Printf("%3d  %-10s  %2d -> %-2d  (%.2f, %.2f, %.2f)\n",
				i, j.Type, j.RigidBodyAIndex, j.RigidBodyBIndex,
				j.Position.X, j.Position.Y, j.Position.Z)
		}
	}
}

// cmdGen writes a vertical chain scene: a kinematic root sphere with capsule
// links hanging from it on spring joints, the usual hair-strand shape.
func cmdGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	links := fs.Int("links", 5, "Number of chain links below the root")
	out := fs.String("out", ".", "Output directory")
	fs.Parse(args)

	if *links < 1 {
		fmt.Fprintln(os.Stderr, "gen: need at least one link")
		os.Exit(1)
	}

	const (
		rootHeight = 2.0
		linkLength = 0.3
		linkRadius = 0.05
	)

	rbData := physics.AppendRigidBody(nil, physics.RigidBody{
		CollisionGroup: 1,
		CollisionMask:  0xffffffff,
		ShapeType:      physics.ShapeSphere,
		PhysicsMode:    physics.ModeFollowBone,
		ShapeSize:      vecmath.Vec3{X: 0.1},
	})

	var jData []byte
	pose := scenedata.IdentityPose(*links + 1)
	setPoseOrigin(pose, 0, vecmath.Vec3{Y: rootHeight})

	for i := 1; i <= *links; i++ {
		y := rootHeight - float32(i)*linkLength
		rbData = physics.AppendRigidBody(rbData, physics.RigidBody{
			CollisionGroup:  1,
			CollisionMask:   0xfffffffe,
			ShapeType:       physics.ShapeCapsule,
			PhysicsMode:     physics.ModePhysics,
			ShapeSize:       vecmath.Vec3{X: linkRadius, Y: linkLength / 2},
			Mass:            0.2,
			MoveAttenuation: 0.4,
			RotationDamping: 0.6,
			FrictionForce:   0.3,
		})

		jData = physics.AppendJoint(jData, physics.Joint{
			Type:            physics.JointSpring6DoF,
			RigidBodyAIndex: uint32(i - 1),
			RigidBodyBIndex: uint32(i),
			Position:        vecmath.Vec3{Y: y + linkLength/2},
			RotationMin:     vecmath.Vec3{X: -0.6, Y: -0.6, Z: -0.6},
			RotationMax:     vecmath.Vec3{X: 0.6, Y: 0.6, Z: 0.6},
			RotationSpring:  vecmath.Vec3{X: 12, Y: 12, Z: 12},
		})

		setPoseOrigin(pose, i, vecmath.Vec3{Y: y})
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	writeOut(filepath.Join(*out, "rigidbodies.bin"), rbData)
	writeOut(filepath.Join(*out, "joints.bin"), jData)
	if err := scenedata.WritePose(filepath.Join(*out, "pose.bin"), pose); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing pose: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d bodies, %d joints in %s\n", *links+1, *links, *out)
}

func setPoseOrigin(pose []float32, index int, origin vecmath.Vec3) {
	m := vecmath.Translate(origin.X, origin.Y, origin.Z)
	copy(pose[index*16:], m[:])
}

func writeOut(path string, data []byte) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote: %s (%d bytes)\n", path, len(data))
}

func cmdConfig(args []string) {
	path := "config.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.Default().SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote: %s\n", path)
}
