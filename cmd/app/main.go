package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"coaster-studio/internal/common"
	"coaster-studio/internal/geometry"
	"coaster-studio/internal/log"
	"coaster-studio/internal/state"
	"coaster-studio/internal/store"
)

// ============================================================================
// CONFIGURATION - Adjust these values to customize the editor
// ============================================================================

// Render window dimensions
const (
	WindowWidth  = 1200
	WindowHeight = 800
)

// Layout: top-down editing plane above, side elevation profile below.
const (
	ProfileHeight  = 160 // Pixels reserved at the bottom for the profile strip
	ViewScale      = 6.0 // Pixels per world unit in the plan view
	ProfileVScale  = 4.0 // Pixels per world unit of height in the profile
	PlanCenterYPad = 40
)

// Editing settings
const (
	NewPointHeight    = 10.0 // Height (Y) assigned to freshly placed points
	HeightStep        = 0.25 // Height change per tick while Q/E held
	TiltStep          = 0.02 // Radians per tick while Z/C held
	DefaultLoopRadius = 8.0
	DefaultLoopPitch  = 2.0
	PickRadiusPx      = 10.0 // Click distance for selecting a point
	TrackSampleSteps  = 400  // Polyline resolution when drawing the track
	RideSpeedStep     = 0.25
)

// Colors
var (
	ColorBackground = color.RGBA{24, 26, 30, 255}
	ColorTrack      = color.RGBA{90, 160, 255, 255}
	ColorTrackLoop  = color.RGBA{255, 170, 60, 255}
	ColorProfile    = color.RGBA{120, 200, 120, 255}
	ColorPoint      = color.RGBA{220, 220, 220, 255}
	ColorSelected   = color.RGBA{255, 80, 80, 255}
	ColorLoopMark   = color.RGBA{255, 170, 60, 255}
	ColorVehicle    = color.RGBA{255, 60, 60, 255}
	ColorVehicleUp  = color.RGBA{255, 255, 0, 255}
	ColorHUDPanel   = color.RGBA{0, 0, 0, 180}
)

// ============================================================================

type Game struct {
	State     *state.TrackState
	DB        *store.Store
	TrackName string

	Selected int // Index into State.Points(), -1 when nothing selected
	Status   string

	LastPose geometry.Pose
	HavePose bool
}

func (g *Game) Update() error {
	if g.State.Mode() == state.ModeRide {
		g.updateRide()
	} else {
		g.updateEdit()
	}
	return nil
}

func (g *Game) updateRide() {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.State.StopRide()
		g.HavePose = false
		return
	}
	if pose, ok := g.State.TickRide(); ok {
		g.LastPose = pose
		g.HavePose = true
	}
}

func (g *Game) updateEdit() {
	points := g.State.Points()
	if g.Selected >= len(points) {
		g.Selected = len(points) - 1
	}

	// Place / select with the mouse.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if float64(my) < WindowHeight-ProfileHeight {
			if idx := g.pickPoint(points, mx, my); idx >= 0 {
				g.Selected = idx
			} else {
				g.State.AddPoint(g.worldFromScreen(mx, my))
				g.Selected = len(points) // The point just appended
				g.Status = "point placed"
			}
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && g.Selected >= 0 && g.Selected < len(points) {
		mx, my := ebiten.CursorPosition()
		if float64(my) < WindowHeight-ProfileHeight {
			pos := g.worldFromScreen(mx, my)
			pos.Y = points[g.Selected].Position.Y
			g.State.MovePoint(points[g.Selected].ID, pos)
			g.Status = "point moved"
		}
	}

	// Selection cycling.
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(points) > 0 {
		g.Selected = (g.Selected + 1) % len(points)
	}

	if g.Selected >= 0 && g.Selected < len(points) {
		sel := points[g.Selected]

		// Height and tilt are continuous while held.
		if ebiten.IsKeyPressed(ebiten.KeyQ) {
			pos := sel.Position
			pos.Y += HeightStep
			g.State.MovePoint(sel.ID, pos)
		}
		if ebiten.IsKeyPressed(ebiten.KeyE) {
			pos := sel.Position
			pos.Y -= HeightStep
			g.State.MovePoint(sel.ID, pos)
		}
		if ebiten.IsKeyPressed(ebiten.KeyZ) {
			g.State.SetTilt(sel.ID, sel.Tilt+TiltStep)
		}
		if ebiten.IsKeyPressed(ebiten.KeyC) {
			g.State.SetTilt(sel.ID, sel.Tilt-TiltStep)
		}

		if inpututil.IsKeyJustPressed(ebiten.KeyX) || inpututil.IsKeyJustPressed(ebiten.KeyDelete) {
			g.State.RemovePoint(sel.ID)
			g.Selected--
			g.Status = "point removed"
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyL) {
			if _, ok := g.State.InsertLoop(sel.ID, DefaultLoopRadius, DefaultLoopPitch); ok {
				g.Status = "loop inserted"
			} else {
				g.Status = "loop refused (already declared here?)"
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyK) {
			for _, ls := range g.State.Loops() {
				if ls.EntryPointID == sel.ID {
					g.State.RemoveLoop(ls.ID)
					g.Status = "loop removed"
					break
				}
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.State.SetLooped(!g.State.IsLooped())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.State.Clear()
		g.Selected = -1
		g.Status = "track cleared"
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.State.SetRideSpeed(g.State.RideSpeed() - RideSpeedStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.State.SetRideSpeed(g.State.RideSpeed() + RideSpeedStep)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if g.State.StartRide() {
			g.Status = "riding"
		} else {
			g.Status = "need at least 2 points to ride"
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.DB.Save(g.TrackName, g.State.Document()); err != nil {
			g.Status = "save failed: " + err.Error()
		} else {
			g.Status = fmt.Sprintf("saved %q", g.TrackName)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		doc, err := g.DB.Load(g.TrackName)
		if err != nil {
			g.Status = "load failed: " + err.Error()
		} else {
			g.State.ApplyDocument(doc)
			g.Selected = -1
			g.Status = fmt.Sprintf("loaded %q", g.TrackName)
		}
	}
}

// planToScreen projects world (x, z) onto the top-down editing plane.
func (g *Game) planToScreen(p common.Vec3) (float32, float32) {
	cx := float64(WindowWidth) / 2
	cy := float64(WindowHeight-ProfileHeight)/2 + PlanCenterYPad
	return float32(cx + p.X*ViewScale), float32(cy + p.Z*ViewScale)
}

func (g *Game) worldFromScreen(mx, my int) common.Vec3 {
	cx := float64(WindowWidth) / 2
	cy := float64(WindowHeight-ProfileHeight)/2 + PlanCenterYPad
	return common.Vec3{
		X: (float64(mx) - cx) / ViewScale,
		Y: NewPointHeight,
		Z: (float64(my) - cy) / ViewScale,
	}
}

func (g *Game) pickPoint(points []geometry.TrackPoint, mx, my int) int {
	best := -1
	bestDist := PickRadiusPx
	for i, pt := range points {
		sx, sy := g.planToScreen(pt.Position)
		d := math.Hypot(float64(sx)-float64(mx), float64(sy)-float64(my))
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(ColorBackground)

	table := g.State.Table()
	points := g.State.Points()
	loops := g.State.Loops()

	// Track polyline, plan view and profile strip in one sampling pass.
	profileBase := float32(WindowHeight - 20)
	profileLeft := float32(40)
	profileRight := float32(WindowWidth - 40)

	if len(table.Sections) > 0 {
		var prevX, prevY, prevPX, prevPY float32
		for i := 0; i <= TrackSampleSteps; i++ {
			p := float64(i) / TrackSampleSteps
			pose, ok := table.SampleAt(p)
			if !ok {
				break
			}
			sx, sy := g.planToScreen(pose.Position)
			px := profileLeft + (profileRight-profileLeft)*float32(i)/TrackSampleSteps
			py := profileBase - float32(pose.Position.Y*ProfileVScale)

			if i > 0 {
				col := ColorTrack
				if g.sectionKindAt(table, p) == geometry.SectionLoop {
					col = ColorTrackLoop
				}
				vector.StrokeLine(screen, prevX, prevY, sx, sy, 2, col, true)
				vector.StrokeLine(screen, prevPX, prevPY, px, py, 1, ColorProfile, true)
			}
			prevX, prevY, prevPX, prevPY = sx, sy, px, py
		}
	}

	// Control points.
	loopEntries := make(map[string]bool, len(loops))
	for _, ls := range loops {
		loopEntries[ls.EntryPointID] = true
	}
	for i, pt := range points {
		sx, sy := g.planToScreen(pt.Position)
		col := ColorPoint
		size := float32(6)
		if i == g.Selected {
			col = ColorSelected
			size = 9
		}
		vector.FillRect(screen, sx-size/2, sy-size/2, size, size, col, true)
		if loopEntries[pt.ID] {
			vector.FillRect(screen, sx-3, sy-14, 6, 6, ColorLoopMark, true)
		}
	}

	// Ride vehicle, oriented by the sampled tangent in the plan view.
	if g.HavePose && g.State.IsRiding() {
		g.drawVehicle(screen)
	}

	g.drawHUD(screen)
}

// sectionKindAt reports which evaluator owns progress p, for coloring.
func (g *Game) sectionKindAt(table *geometry.SectionTable, p float64) geometry.SectionKind {
	for _, s := range table.Sections {
		if p >= s.StartProgress && p < s.EndProgress {
			return s.Kind
		}
	}
	return geometry.SectionSpline
}

func (g *Game) drawVehicle(screen *ebiten.Image) {
	pose := g.LastPose
	heading := math.Atan2(pose.Tangent.Z, pose.Tangent.X)
	cosH := math.Cos(heading)
	sinH := math.Sin(heading)
	halfL, halfW := 12.0, 6.0

	corners := [4][2]float64{
		{halfL, halfW},
		{halfL, -halfW},
		{-halfL, -halfW},
		{-halfL, halfW},
	}

	bx, by := g.planToScreen(pose.Position)
	var path vector.Path
	for i, c := range corners {
		sx := float64(bx) + c[0]*cosH - c[1]*sinH
		sy := float64(by) + c[0]*sinH + c[1]*cosH
		if i == 0 {
			path.MoveTo(float32(sx), float32(sy))
		} else {
			path.LineTo(float32(sx), float32(sy))
		}
	}
	path.Close()

	var cs ebiten.ColorScale
	cs.ScaleWithColor(ColorVehicle)
	vector.FillPath(screen, &path, nil, &vector.DrawPathOptions{
		AntiAlias:  true,
		ColorScale: cs,
	})

	// Up-vector indicator: collapses as the vehicle inverts in a loop.
	tipX := float64(bx) + pose.Up.X*20
	tipY := float64(by) + pose.Up.Z*20 - pose.Up.Y*20
	vector.StrokeLine(screen, bx, by, float32(tipX), float32(tipY), 2, ColorVehicleUp, true)

	// Vehicle marker on the elevation profile.
	profileLeft := float32(40)
	profileRight := float32(WindowWidth - 40)
	px := profileLeft + (profileRight-profileLeft)*float32(g.State.RideProgress())
	py := float32(WindowHeight-20) - float32(pose.Position.Y*ProfileVScale)
	vector.FillRect(screen, px-4, py-4, 8, 8, ColorVehicle, true)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	vector.FillRect(screen, 0, 0, 230, 220, ColorHUDPanel, true)

	msg := "COASTER STUDIO\n"
	msg += "----------------\n"
	msg += fmt.Sprintf("Track:  %s\n", g.TrackName)
	msg += fmt.Sprintf("Mode:   %s\n", g.State.Mode())
	msg += fmt.Sprintf("Points: %d  Loops: %d\n", len(g.State.Points()), len(g.State.Loops()))
	msg += fmt.Sprintf("Looped: %v\n", g.State.IsLooped())
	msg += fmt.Sprintf("Speed x%.2f\n", g.State.RideSpeed())

	if g.State.IsRiding() {
		ride := g.State.Ride()
		msg += fmt.Sprintf("Progress: %.3f\n", ride.Progress)
		msg += fmt.Sprintf("Velocity: %.2f\n", ride.Speed)
		msg += "\nR/Esc = Stop ride"
	} else {
		msg += "\nClick = Place  RClick = Move"
		msg += "\nTab = Select  X = Delete"
		msg += "\nQ/E = Raise/Lower  Z/C = Tilt"
		msg += "\nL/K = Loop add/remove"
		msg += "\nO = Close loop  N = Clear"
		msg += "\nR = Ride  -/= = Speed"
		msg += "\nF5 = Save  F9 = Load"
	}
	if g.Status != "" {
		msg += "\n\n[" + g.Status + "]"
	}

	ebitenutil.DebugPrint(screen, msg)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return WindowWidth, WindowHeight
}

// ============================================================================

const envPrefix = "COASTER"

var (
	flagDB        string
	flagTrack     string
	flagRideSpeed float64
	flagDevLog    bool
)

var rootCmd = &cobra.Command{
	Use:   "coaster-studio",
	Short: "Interactive roller-coaster track editor and rider",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "coaster.db",
		"Path to the sqlite track database")
	rootCmd.PersistentFlags().StringVar(&flagTrack, "track", "demo",
		"Name of the track to edit")
	rootCmd.PersistentFlags().Float64Var(&flagRideSpeed, "ride-speed", 1.0,
		"Ride speed multiplier (minimum 0.5)")
	rootCmd.PersistentFlags().BoolVar(&flagDevLog, "dev-log", false,
		"Use the development logger")
}

// initConfig lets environment variables override unset flags, e.g.
// COASTER_RIDE_SPEED for --ride-speed.
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := viper.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
			fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v\n", f.Name, err)
		}
		if !f.Changed && viper.IsSet(f.Name) {
			val := viper.Get(f.Name)
			if err := rootCmd.PersistentFlags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	})
}

func run() error {
	if flagDevLog {
		log.InitDevelopmentLogger()
	} else {
		log.InitProductionLogger()
	}

	db, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer db.Close()

	st := state.NewTrackState()
	st.SetRideSpeed(flagRideSpeed)

	if doc, err := db.Load(flagTrack); err == nil {
		st.ApplyDocument(doc)
		log.Logger.Info("track loaded", zap.String("name", flagTrack),
			zap.Int("points", len(doc.TrackPoints)))
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	ebiten.SetWindowSize(WindowWidth, WindowHeight)
	ebiten.SetWindowTitle("Coaster Studio")

	game := &Game{
		State:     st,
		DB:        db,
		TrackName: flagTrack,
		Selected:  -1,
	}
	return ebiten.RunGame(game)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
