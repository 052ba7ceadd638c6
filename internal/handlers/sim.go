package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/db"
	"github.com/ukydev/city-traffic/internal/grid"
	"github.com/ukydev/city-traffic/internal/models"
	"github.com/ukydev/city-traffic/internal/runner"
	"github.com/ukydev/city-traffic/internal/sim"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// SimHandler serves the read accessors and commands of a running simulation.
type SimHandler struct {
	runner  *runner.Runner
	network *grid.Network
	runID   string
	journal db.AccidentCollection
}

// NewSimHandler creates a handler over r. journal may be nil when no
// accident journal is configured.
func NewSimHandler(r *runner.Runner, journal db.AccidentCollection) *SimHandler {
	h := &SimHandler{runner: r, journal: journal}
	_ = r.Do(func(w *sim.World) error {
		h.network = w.Network()
		h.runID = w.RunID()
		return nil
	})
	return h
}

// Snapshot returns the complete world state
func (h *SimHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.runner.Snapshot())
}

// Vehicles lists the active vehicles
func (h *SimHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	var out []models.VehicleView
	_ = h.runner.Do(func(world *sim.World) error {
		out = world.Vehicles()
		return nil
	})
	writeJSON(w, http.StatusOK, out)
}

// Vehicle returns one vehicle by id
func (h *SimHandler) Vehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	var view models.VehicleView
	var found bool
	_ = h.runner.Do(func(world *sim.World) error {
		view, found = world.Vehicle(id)
		return nil
	})
	if !found {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Selected returns the selected vehicle
func (h *SimHandler) Selected(w http.ResponseWriter, r *http.Request) {
	var view models.VehicleView
	var found bool
	_ = h.runner.Do(func(world *sim.World) error {
		view, found = world.Selected()
		return nil
	})
	if !found {
		http.Error(w, "No vehicle selected", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SelectVehicle marks one vehicle as selected
func (h *SimHandler) SelectVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	var view models.VehicleView
	err := h.runner.Do(func(world *sim.World) error {
		if err := world.SetSelected(id); err != nil {
			return err
		}
		view, _ = world.Vehicle(id)
		return nil
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ClearSelection deselects every vehicle
func (h *SimHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	_ = h.runner.Do(func(world *sim.World) error {
		world.ClearSelection()
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// Intersections lists every signal
func (h *SimHandler) Intersections(w http.ResponseWriter, r *http.Request) {
	var out []models.IntersectionView
	_ = h.runner.Do(func(world *sim.World) error {
		out = world.Intersections()
		return nil
	})
	writeJSON(w, http.StatusOK, out)
}

// ToggleSignal flips the phase of one intersection
func (h *SimHandler) ToggleSignal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid intersection ID", http.StatusBadRequest)
		return
	}

	var view models.IntersectionView
	err = h.runner.Do(func(world *sim.World) error {
		if err := world.ToggleSignal(id); err != nil {
			return err
		}
		view = world.Intersections()[id]
		return nil
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Accidents lists the live accidents
func (h *SimHandler) Accidents(w http.ResponseWriter, r *http.Request) {
	var out []models.AccidentView
	_ = h.runner.Do(func(world *sim.World) error {
		out = world.Accidents()
		return nil
	})
	writeJSON(w, http.StatusOK, out)
}

// AccidentHistory returns journaled accidents, newest first. The run query
// parameter selects a run; "all" returns every run, the default is the
// current one.
func (h *SimHandler) AccidentHistory(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		http.Error(w, "Accident journal is not configured", http.StatusServiceUnavailable)
		return
	}

	runID := r.URL.Query().Get("run")
	switch runID {
	case "":
		runID = h.runID
	case "all":
		runID = ""
	}

	limit := int64(defaultHistoryLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := db.RecentAccidents(r.Context(), h.journal, runID, limit)
	if err != nil {
		log.WithError(err).Error("Failed to load accident history")
		http.Error(w, "Failed to load accident history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Stats returns the running counters
func (h *SimHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.runner.Stats())
}

// Network returns the road layout as GeoJSON
func (h *SimHandler) Network(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.network.FeatureCollection())
}

type pauseRequest struct {
	Paused *bool `json:"paused"`
}

type pauseResponse struct {
	Paused bool `json:"paused"`
}

// Pause sets the pause flag from the body, or toggles it when the body is empty
func (h *SimHandler) Pause(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	paused := !h.runner.Paused()
	if len(body) > 0 {
		var req pauseRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Paused != nil {
			paused = *req.Paused
		}
	}

	h.runner.SetPaused(paused)
	writeJSON(w, http.StatusOK, pauseResponse{Paused: paused})
}

func vehicleID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sim.ErrUnknownVehicle):
		http.Error(w, "Vehicle not found", http.StatusNotFound)
	case errors.Is(err, sim.ErrUnknownIntersection):
		http.Error(w, "Intersection not found", http.StatusNotFound)
	default:
		http.Error(w, "Command failed", http.StatusInternalServerError)
	}
}
