// Command orrery runs the solar system simulation in a terminal or as a headless stream server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/orrery/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orrery",
		Short: "Time-scaled solar system with a focus-aware camera",
		Long: `Orrery animates a scene of orbiting bodies under a shared time scale.
The camera flies to a selected body, then orbits or follows it until the viewer takes over.

Settings come from ORRERY_* environment variables; flags override them.`,
		SilenceUsage: true,
	}

	flags := &hostFlags{}
	flags.register(rootCmd)

	rootCmd.AddCommand(runCmd(flags))
	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(bodiesCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// hostFlags are persistent flags layered over config.Config
type hostFlags struct {
	scene       string
	cameraTable string
	cameraMode  string
	epoch       string
	fps         int
	debug       bool
}

func (f *hostFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.scene, "scene", "", "scene YAML file (default: embedded solar system)")
	pf.StringVar(&f.cameraTable, "camera-table", "", "camera transition table YAML override")
	pf.StringVar(&f.cameraMode, "camera-mode", "", "behavior after a focus flight: orbit, follow or none")
	pf.StringVar(&f.epoch, "epoch", "", "RFC3339 time used to seed body angles")
	pf.IntVar(&f.fps, "fps", 0, "frame rate")
	pf.BoolVar(&f.debug, "debug", false, "write debug log to the log directory")
}

// load reads the environment, applies set flags and validates the result
func (f *hostFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	pf := cmd.Flags()
	if pf.Changed("scene") {
		cfg.Scene = f.scene
	}
	if pf.Changed("camera-table") {
		cfg.CameraTable = f.cameraTable
	}
	if pf.Changed("camera-mode") {
		cfg.CameraMode = f.cameraMode
	}
	if pf.Changed("epoch") {
		cfg.Epoch = f.epoch
	}
	if pf.Changed("fps") {
		cfg.FPS = f.fps
	}
	if pf.Changed("debug") {
		cfg.Debug = f.debug
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

func bodiesCmd(flags *hostFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bodies",
		Short: "List the bodies of the scene with their focus keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			sc, err := loadScene(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scene %s, %d bodies\n", sc.Name, sc.Registry.Len())
			for i, b := range sc.Registry.Bodies() {
				key := " "
				if r, ok := focusKey(i); ok {
					key = string(r)
				}
				parent := b.Parent
				if parent == "" {
					parent = "-"
				}
				fmt.Fprintf(out, "  [%s] %-10s %-7s parent=%-8s radius=%6.2f size=%5.2f\n",
					key, b.ID, b.Kind, parent, b.OrbitalRadius, b.Size)
			}
			return nil
		},
	}
}
