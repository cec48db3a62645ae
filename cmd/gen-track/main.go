package main

import (
	"math"
	"os"

	"github.com/cnkei/gospline"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"coaster-studio/internal/log"
	"coaster-studio/internal/store"
)

// Generates the demo coaster so a fresh checkout has something to ride:
// a figure-eight layout with a lift hill, a smoothed elevation profile,
// and one vertical loop on the back straight.

const (
	OutputDB   = "coaster.db"
	OutputJSON = "assets/demo_track.json"
	TrackName  = "demo"

	PointCount    = 16
	LayoutRadiusX = 55.0
	LayoutRadiusZ = 35.0

	LoopPointIndex = 9
	LoopRadius     = 6.0
	LoopPitch      = 2.0
)

// Elevation keyframes along the normalized track station. The lift crest
// sits just past the start so the ride begins with the chain pull.
var (
	elevStations = []float64{0, 0.1, 0.3, 0.5, 0.7, 0.85, 1}
	elevHeights  = []float64{3, 19, 5, 13, 6, 10, 3}
)

func main() {
	log.InitDevelopmentLogger()

	elevation := gospline.NewCubicSpline(elevStations, elevHeights)

	doc := store.TrackDocument{
		IsLooped:         true,
		HasChainLift:     true,
		ShowWoodSupports: true,
	}

	for i := 0; i < PointCount; i++ {
		s := float64(i) / PointCount
		doc.TrackPoints = append(doc.TrackPoints, store.PointRecord{
			ID: uuid.NewString(),
			Position: [3]float64{
				LayoutRadiusX * math.Sin(2*math.Pi*s),
				elevation.At(s),
				LayoutRadiusZ * math.Sin(4*math.Pi*s),
			},
		})
	}

	doc.LoopSegments = append(doc.LoopSegments, store.LoopRecord{
		ID:           uuid.NewString(),
		EntryPointID: doc.TrackPoints[LoopPointIndex].ID,
		Radius:       LoopRadius,
		Pitch:        LoopPitch,
	})

	db, err := store.Open(OutputDB)
	if err != nil {
		log.Logger.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	if err := db.Save(TrackName, doc); err != nil {
		log.Logger.Fatal("save demo track", zap.Error(err))
	}

	if err := os.MkdirAll("assets", 0o755); err != nil {
		log.Logger.Fatal("create assets dir", zap.Error(err))
	}
	if err := db.Export(TrackName, OutputJSON); err != nil {
		log.Logger.Fatal("export demo track", zap.Error(err))
	}

	log.Logger.Info("demo track generated",
		zap.String("db", OutputDB), zap.String("json", OutputJSON),
		zap.Int("points", len(doc.TrackPoints)))
}
