package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/millcheck/internal/mesh"
)

var infoCmd = &cobra.Command{
	Use:   "info <model.stl>",
	Short: "Show mesh statistics without running any checks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := mesh.LoadSTL(args[0])
		if err != nil {
			return err
		}

		b := m.Bounds()
		fmt.Printf("Model:      %s\n", args[0])
		fmt.Printf("Faces:      %d\n", m.FaceCount())
		fmt.Printf("Vertices:   %d\n", m.VertexCount())
		fmt.Printf("Watertight: %v\n", m.Watertight())
		fmt.Printf("Components: %d\n", m.ComponentCount())
		fmt.Printf("Volume:     %.3f mm^3\n", m.Volume())
		fmt.Printf("Area:       %.3f mm^2\n", m.SurfaceArea())
		fmt.Printf("Bounds:     [%.3f %.3f %.3f] .. [%.3f %.3f %.3f]\n",
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
