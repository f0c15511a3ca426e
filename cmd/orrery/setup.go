package main

import (
	"fmt"
	"log"

	"github.com/lixenwraith/orrery/config"
	"github.com/lixenwraith/orrery/engine"
	"github.com/lixenwraith/orrery/scene"
)

// focusKeys maps registry order to digit keys, later bodies are reached with Tab
const focusKeys = "123456789"

func focusKey(index int) (rune, bool) {
	if index < 0 || index >= len(focusKeys) {
		return 0, false
	}
	return rune(focusKeys[index]), true
}

func focusIndex(r rune) (int, bool) {
	for i, k := range focusKeys {
		if k == r {
			return i, true
		}
	}
	return 0, false
}

// loadScene reads cfg.Scene or the embedded default, seeded from cfg.Epoch when set
func loadScene(cfg config.Config) (*scene.Scene, error) {
	var (
		sc  *scene.Scene
		err error
	)
	if cfg.Scene != "" {
		sc, err = scene.LoadFile(cfg.Scene)
	} else {
		sc, err = scene.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}

	epoch, ok, err := cfg.EpochTime()
	if err != nil {
		return nil, err
	}
	if ok {
		scene.SeedFromEpoch(sc.Registry, epoch)
	}
	return sc, nil
}

// newSimulation builds the scene and a context wired from cfg, extra options are applied last
func newSimulation(cfg config.Config, logger *log.Logger, extra ...engine.Option) (*engine.SimulationContext, *scene.Scene, error) {
	sc, err := loadScene(cfg)
	if err != nil {
		return nil, nil, err
	}

	engage, err := cfg.Engage()
	if err != nil {
		return nil, nil, err
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithEngage(engage),
		engine.WithTransitionDuration(cfg.Transition),
	}
	if cfg.CameraTable != "" {
		opts = append(opts, engine.WithCameraTable(cfg.CameraTable))
	}
	opts = append(opts, extra...)

	sim, err := engine.New(sc.Registry, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("build simulation: %w", err)
	}
	logger.Printf("scene %s: %d bodies, camera %s", sc.Name, sc.Registry.Len(), engage)
	return sim, sc, nil
}
