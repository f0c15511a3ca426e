package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/orrery/audio"
	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/engine"
	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/scene"
	"github.com/lixenwraith/orrery/vmath"
)

const (
	speedFactor  = 2.0 // Multiplier change per +/- press
	orbitSamples = 96
	eventBacklog = 100
)

var kindStyles = map[scene.Kind]tcell.Style{
	scene.KindStar:   tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 210, 80)),
	scene.KindPlanet: tcell.StyleDefault.Foreground(tcell.NewRGBColor(80, 160, 255)),
	scene.KindRinged: tcell.StyleDefault.Foreground(tcell.NewRGBColor(220, 180, 120)),
	scene.KindMoon:   tcell.StyleDefault.Foreground(tcell.NewRGBColor(180, 180, 180)),
}

var (
	orbitStyle = tcell.StyleDefault.Foreground(tcell.NewRGBColor(60, 60, 70))
	hudStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(30, 30, 40))
	focusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

// viewer is the terminal host: it turns tcell events into simulation calls and draws each frame
// All methods run on the loop goroutine
type viewer struct {
	screen tcell.Screen
	sim    *engine.SimulationContext
	cues   *audio.CuePlayer // Nil when audio is off
	logger *log.Logger

	width, height int

	// Mouse drag state, reported to the camera through IsUserControllingCamera
	dragging     bool
	dragX, dragY int

	// Index of the last focused body for Tab cycling
	cycle int
	quit  bool
}

// IsUserControllingCamera implements camera.InputSignal
func (v *viewer) IsUserControllingCamera() bool {
	return v.dragging
}

func runCmd(flags *hostFlags) *cobra.Command {
	var audioOn bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Animate the scene in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("audio") {
				cfg.Audio = audioOn
			}

			logDir = cfg.LogDir
			if f := setupLogging(cfg.Debug); f != nil {
				defer f.Close()
			}
			logger := log.Default()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("terminal init: %w", err)
			}
			defer screen.Fini()

			v := &viewer{screen: screen, logger: logger}
			opts := []engine.Option{engine.WithInputSignal(v)}

			if cfg.Audio {
				cues := audio.NewCuePlayer()
				if err := cues.Initialize(); err != nil {
					// Non-fatal, runs silent
					logger.Printf("audio initialization failed: %v", err)
				} else {
					defer cues.Cleanup()
					v.cues = cues
					opts = append(opts, engine.WithObserver(cues))
				}
			}

			sim, _, err := newSimulation(cfg, logger, opts...)
			if err != nil {
				return err
			}
			v.sim = sim
			return v.run(cmd.Context(), cfg.FrameInterval())
		},
	}
	cmd.Flags().BoolVar(&audioOn, "audio", false, "play camera cues")
	return cmd
}

// run drives the simulation until quit or ctx is done
func (v *viewer) run(ctx context.Context, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v.screen.EnableMouse()
	v.screen.HideCursor()
	v.width, v.height = v.screen.Size()

	events := make(chan tcell.Event, eventBacklog)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			default:
			}
		}
	}()

	loop := &engine.Loop{
		Sim:      v.sim,
		Interval: interval,
		BeforeTick: func(*engine.SimulationContext) {
		drain:
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						v.quit = true
						break drain
					}
					v.handleEvent(ev)
				default:
					break drain
				}
			}
			if v.quit {
				cancel()
			}
		},
		AfterTick: func(*engine.SimulationContext) {
			v.draw()
		},
	}

	err := loop.Run(ctx)
	if v.quit {
		return nil
	}
	return err
}

// handleEvent applies one terminal event
func (v *viewer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	}
}

func (v *viewer) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.quit = true
	case tcell.KeyTab:
		v.focusIndex(v.cycle + 1)
	case tcell.KeyBacktab:
		v.focusIndex(v.cycle - 1)
	case tcell.KeyLeft:
		v.moveViewer(-yawStep, 0, 0)
	case tcell.KeyRight:
		v.moveViewer(yawStep, 0, 0)
	case tcell.KeyUp:
		v.moveViewer(0, pitchStep, 0)
	case tcell.KeyDown:
		v.moveViewer(0, -pitchStep, 0)
	case tcell.KeyPgUp:
		v.moveViewer(0, 0, 1/zoomStep)
	case tcell.KeyPgDn:
		v.moveViewer(0, 0, zoomStep)
	case tcell.KeyRune:
		v.handleRune(ev.Rune())
	}
}

func (v *viewer) handleRune(r rune) {
	if i, ok := focusIndex(r); ok {
		v.focusIndex(i)
		return
	}

	switch r {
	case 'q':
		v.quit = true
	case '0', 'r':
		v.sim.ResetCamera()
	case ' ':
		v.sim.TogglePause()
	case 'v':
		v.sim.ReverseTime()
	case '+', '=':
		v.sim.SetTimeMultiplier(stepMultiplier(v.sim.TimeState().Multiplier, true))
	case '-', '_':
		v.sim.SetTimeMultiplier(stepMultiplier(v.sim.TimeState().Multiplier, false))
	case 'e':
		v.cycleEngage()
	case 'm':
		if v.cues != nil {
			v.cues.ToggleMute()
		}
	}
}

// focusIndex focuses the body at registry index i, wrapping around
func (v *viewer) focusIndex(i int) {
	bodies := v.sim.Registry().Bodies()
	if len(bodies) == 0 {
		return
	}
	i = ((i % len(bodies)) + len(bodies)) % len(bodies)
	if err := v.sim.FocusOnBody(bodies[i].ID); err != nil {
		return
	}
	v.cycle = i
}

func (v *viewer) cycleEngage() {
	next := map[camera.Engage]camera.Engage{
		camera.EngageOrbit:  camera.EngageFollow,
		camera.EngageFollow: camera.EngageNone,
		camera.EngageNone:   camera.EngageOrbit,
	}
	v.sim.SetEngage(next[v.sim.Camera().Engage()])
}

func (v *viewer) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		v.moveViewer(0, 0, 1/zoomStep)
	case buttons&tcell.WheelDown != 0:
		v.moveViewer(0, 0, zoomStep)
	case buttons&tcell.Button1 != 0:
		if v.dragging {
			v.moveViewer(float64(x-v.dragX)*dragYawRate, float64(v.dragY-y)*dragPitchRate, 0)
		} else {
			v.sim.NotifyManualCameraInput()
		}
		v.dragging = true
		v.dragX, v.dragY = x, y
	default:
		v.dragging = false
	}
}

// stepMultiplier scales m by speedFactor, a stopped multiplier speeds up to the default
func stepMultiplier(m float64, faster bool) float64 {
	switch {
	case m == 0 && faster:
		return parameter.MultiplierDefault
	case faster:
		return m * speedFactor
	default:
		return m / speedFactor
	}
}

// moveViewer reports manual input and, once the camera is Free, swings the viewer pose
func (v *viewer) moveViewer(dYaw, dPitch, zoom float64) {
	v.sim.NotifyManualCameraInput()
	if v.sim.Mode().Owned() {
		return
	}
	v.sim.SetViewerPose(orbitPose(v.sim.CameraPose(), dYaw, dPitch, zoom))
}

// draw renders orbits, bodies and the HUD
func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.width, v.height
	if w <= 0 || h <= hudRows {
		v.screen.Show()
		return
	}

	basis, ok := newViewBasis(v.sim.CameraPose())
	if ok {
		bodies := v.sim.Registry().Bodies()
		v.drawOrbits(basis, bodies, w, h)

		parts := make([]projected, 0, len(bodies))
		for i, b := range bodies {
			if pr, ok := basis.project(b.Position(), b.Size, i, w, h); ok && pr.onScreen(w, h) {
				parts = append(parts, pr)
			}
		}
		// Far to near so closer bodies overdraw
		sort.Slice(parts, func(i, j int) bool { return parts[i].depth > parts[j].depth })

		focused := v.sim.FocusedBody()
		for _, pr := range parts {
			b := bodies[pr.index]
			v.drawBody(pr, b, b.ID == focused, w, h)
		}
	}

	v.drawHUD(w, h)
	v.screen.Show()
}

func (v *viewer) drawOrbits(basis viewBasis, bodies []*scene.Body, w, h int) {
	for _, b := range bodies {
		if b.OrbitalRadius <= 0 {
			continue
		}
		var center vmath.Vec3F
		if p := b.ParentBody(); p != nil {
			center = p.Position()
		}
		for i := 0; i < orbitSamples; i++ {
			a := float64(i) / orbitSamples * vmath.TwoPi
			pr, ok := basis.project(vmath.V3FOnCircle(center, b.OrbitalRadius, a), 0, 0, w, h)
			if !ok {
				continue
			}
			v.setCell(int(pr.cx), int(math.Round(pr.cy)), '·', orbitStyle, w, h)
		}
	}
}

func (v *viewer) drawBody(pr projected, b *scene.Body, focused bool, w, h int) {
	style, ok := kindStyles[b.Kind]
	if !ok {
		style = tcell.StyleDefault
	}

	if pr.radius < 0.5 {
		v.setCell(int(pr.cx), int(math.Round(pr.cy)), '●', style, w, h)
	} else {
		rx := pr.radius * cellAspect
		minX, maxX := int(pr.cx-rx), int(pr.cx+rx)+1
		minY, maxY := int(pr.cy-pr.radius), int(pr.cy+pr.radius)+1
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				dx := (float64(x) + 0.5 - pr.cx) / cellAspect
				dy := float64(y) + 0.5 - pr.cy
				if dx*dx+dy*dy <= pr.radius*pr.radius {
					v.setCell(x, y, '█', style, w, h)
				}
			}
		}
		if b.Kind == scene.KindRinged {
			ring := pr.radius * 1.8 * cellAspect
			for x := int(pr.cx - ring); x <= int(pr.cx+ring); x++ {
				if math.Abs(float64(x)+0.5-pr.cx) > rx {
					v.setCell(x, int(pr.cy), '─', style, w, h)
				}
			}
		}
	}

	labelStyle := style
	label := b.ID
	if focused {
		labelStyle = focusStyle
		label = "[" + b.ID + "]"
	}
	v.writeStr(int(pr.cx+pr.radius*cellAspect)+2, int(pr.cy), label, labelStyle, w, h)
}

func (v *viewer) drawHUD(w, h int) {
	st := v.sim.Snapshot()

	clock := fmt.Sprintf("x%g", st.Clock.Multiplier)
	if st.Clock.Reversed {
		clock += " reversed"
	}
	if st.Clock.Paused {
		clock += " paused"
	}
	focus := st.Camera.Focus
	if focus == "" {
		focus = "-"
	}
	status := fmt.Sprintf(" %-13s focus %-9s after-focus %-6s time %s  scale %+.2f  t=%.1fs",
		st.Camera.Mode, focus, v.sim.Camera().Engage(), clock, st.Clock.EffectiveScale, st.Time)
	if st.Camera.Mode == camera.ModeTransitioning {
		status += fmt.Sprintf("  %3.0f%%", st.Camera.Progress*100)
	}

	help := " 1-9/Tab focus  0/r reset  space pause  v reverse  +/- speed  e engage  arrows/drag/wheel move  q quit"
	v.fillRow(0, hudStyle, w)
	v.writeStr(0, 0, status, hudStyle, w, h)
	v.fillRow(h-1, hudStyle, w)
	v.writeStr(0, h-1, help, hudStyle, w, h)
}

func (v *viewer) fillRow(y int, style tcell.Style, w int) {
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
}

func (v *viewer) writeStr(x, y int, s string, style tcell.Style, w, h int) {
	for _, r := range s {
		v.setCell(x, y, r, style, w, h)
		x++
	}
}

func (v *viewer) setCell(x, y int, r rune, style tcell.Style, w, h int) {
	if x < 0 || x >= w || y < 0 || y >= h {
		return
	}
	v.screen.SetContent(x, y, r, nil, style)
}
