// Command simulator runs the traffic simulation headless for a fixed number
// of ticks and prints a JSON summary of the run.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/models"
	"github.com/ukydev/city-traffic/internal/sim"
)

const defaultTicks = 3000

// Summary is the result of a headless run.
type Summary struct {
	RunID        string                  `json:"run_id"`
	Seed         int64                   `json:"seed"`
	Ticks        int                     `json:"ticks"`
	StartTime    time.Time               `json:"start_time"`
	EndTime      time.Time               `json:"end_time"`
	Stats        models.Stats            `json:"stats"`
	PeakActive   int                     `json:"peak_active"`
	MeanSpeedKmh float64                 `json:"mean_speed_kmh"`
	Severities   map[models.Severity]int `json:"severities"`
	Accidents    []models.AccidentRecord `json:"accidents"`
	ElapsedMs    int64                   `json:"elapsed_ms"`
}

// runBatch steps a fresh world ticks times.
func runBatch(cfg config.Config, ticks int, logger *log.Entry) (Summary, error) {
	s := Summary{
		Seed:       cfg.Simulation.Seed,
		Ticks:      ticks,
		Severities: map[models.Severity]int{},
		Accidents:  []models.AccidentRecord{},
	}
	record := func(rec models.AccidentRecord) {
		s.Severities[rec.Severity]++
		s.Accidents = append(s.Accidents, rec)
	}

	world, err := sim.NewWorld(cfg, rand.New(rand.NewSource(cfg.Simulation.Seed)),
		sim.WithLogger(logger),
		sim.WithAccidentHandler(record),
	)
	if err != nil {
		return Summary{}, err
	}
	s.RunID = world.RunID()
	s.StartTime = world.Now()

	started := time.Now()
	var speedSum float64
	var speedSamples int
	for i := 0; i < ticks; i++ {
		world.Step()

		views := world.Vehicles()
		s.PeakActive = max(s.PeakActive, len(views))
		speedSum += lo.SumBy(views, func(v models.VehicleView) float64 { return v.SpeedKmh })
		speedSamples += len(views)

		if cfg.Simulation.StatsEvery > 0 && (i+1)%cfg.Simulation.StatsEvery == 0 {
			st := world.Stats()
			logger.WithFields(log.Fields{
				"tick":      st.Tick,
				"active":    st.Active,
				"accidents": st.Accidents,
			}).Debug("Progress")
		}
	}

	s.Stats = world.Stats()
	s.EndTime = world.Now()
	if speedSamples > 0 {
		s.MeanSpeedKmh = speedSum / float64(speedSamples)
	}
	s.ElapsedMs = time.Since(started).Milliseconds()
	return s, nil
}

func ticksFromEnv() (int, error) {
	v := os.Getenv("SIM_TICKS")
	if v == "" {
		return defaultTicks, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid SIM_TICKS %q", v)
	}
	return n, nil
}

func writeSummary(out io.Writer, s Summary) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func main() {
	log.SetOutput(os.Stderr)
	if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	ticks, err := ticksFromEnv()
	if err != nil {
		log.WithError(err).Fatal("Bad tick count")
	}

	logger := log.WithField("seed", cfg.Simulation.Seed)
	logger.WithField("ticks", ticks).Info("Starting headless run")

	summary, err := runBatch(cfg, ticks, logger)
	if err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}

	out := io.Writer(os.Stdout)
	if path := os.Getenv("SIM_OUTPUT"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.WithError(err).Fatal("Failed to create output file")
		}
		defer f.Close()
		out = f
	}
	if err := writeSummary(out, summary); err != nil {
		log.WithError(err).Error("Failed to write summary")
		return
	}
	logger.WithFields(log.Fields{
		"spawned":   summary.Stats.Spawned,
		"accidents": summary.Stats.Accidents,
		"elapsed":   summary.ElapsedMs,
	}).Info("Run complete")
}
