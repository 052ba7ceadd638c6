// Package grid describes the static road layout: road centrelines, lane
// slots, intersection points and canvas bounds. It carries no behaviour
// beyond geometry lookups.
package grid

import (
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/models"
)

// Network is the immutable road layout of a run.
type Network struct {
	width   float64
	height  float64
	hRoads  []float64
	vRoads  []float64
	hLanes  [models.LaneCount]float64
	vLanes  [models.LaneCount]float64
	roadW   float64
	stopD   float64
	spawnD  float64
	margin  float64
	roadTol float64
}

// New builds a Network from the grid section of the configuration.
func New(cfg config.Grid) *Network {
	return &Network{
		width:   cfg.Width,
		height:  cfg.Height,
		hRoads:  append([]float64(nil), cfg.HorizontalRoads...),
		vRoads:  append([]float64(nil), cfg.VerticalRoads...),
		hLanes:  cfg.HLaneOffsets,
		vLanes:  cfg.VLaneOffsets,
		roadW:   cfg.RoadWidth,
		stopD:   cfg.StopLineDistance,
		spawnD:  cfg.SpawnOffset,
		margin:  cfg.DespawnMargin,
		roadTol: cfg.RoadTolerance,
	}
}

func (n *Network) Width() float64 { return n.width }
func (n *Network) Height() float64 { return n.height }
func (n *Network) StopLineDistance() float64 { return n.stopD }
func (n *Network) RoadTolerance() float64 { return n.roadTol }

// HorizontalRoads returns the Y offsets of the horizontal roads.
func (n *Network) HorizontalRoads() []float64 { return append([]float64(nil), n.hRoads...) }

// VerticalRoads returns the X offsets of the vertical roads.
func (n *Network) VerticalRoads() []float64 { return append([]float64(nil), n.vRoads...) }

// Intersections returns every crossing point, ordered by vertical road then horizontal road.
func (n *Network) Intersections() []models.Point {
	pts := make([]models.Point, 0, len(n.vRoads)*len(n.hRoads))
	for _, x := range n.vRoads {
		for _, y := range n.hRoads {
			pts = append(pts, models.Point{X: x, Y: y})
		}
	}
	return pts
}

// LaneOffset is the lateral offset of lane from the road centreline for traffic in dir.
func (n *Network) LaneOffset(dir models.Direction, lane models.Lane) float64 {
	if dir.Horizontal() {
		return n.hLanes[lane]
	}
	return n.vLanes[lane]
}

// LanePosition returns the canonical position of a vehicle travelling in dir
// on lane of the road at baseRoad, at travel coordinate along.
func (n *Network) LanePosition(dir models.Direction, lane models.Lane, baseRoad, along float64) models.Point {
	off := n.LaneOffset(dir, lane)
	if dir.Horizontal() {
		return models.Point{X: along, Y: baseRoad + off}
	}
	return models.Point{X: baseRoad + off, Y: along}
}

// Along returns the coordinate of p on the travel axis of dir.
func Along(dir models.Direction, p models.Point) float64 {
	if dir.Horizontal() {
		return p.X
	}
	return p.Y
}

// Lateral returns the coordinate of p across the travel axis of dir.
func Lateral(dir models.Direction, p models.Point) float64 {
	if dir.Horizontal() {
		return p.Y
	}
	return p.X
}

// OutOfBounds reports whether p lies beyond the canvas by more than the despawn margin.
func (n *Network) OutOfBounds(p models.Point) bool {
	return p.X < -n.margin || p.X > n.width+n.margin ||
		p.Y < -n.margin || p.Y > n.height+n.margin
}

// EntryPoint is a place on the canvas edge where vehicles appear.
type EntryPoint struct {
	Direction models.Direction
	BaseRoad  float64
	Along     float64
	Lanes     [2]models.Lane
}

// EntryPoints lists the spawn points of the network: for every horizontal road
// one rightbound and one leftbound entry, for every vertical road one
// downbound and one upbound entry.
func (n *Network) EntryPoints() []EntryPoint {
	out := make([]EntryPoint, 0, 2*(len(n.hRoads)+len(n.vRoads)))
	for _, y := range n.hRoads {
		out = append(out,
			EntryPoint{Direction: models.DirectionRight, BaseRoad: y, Along: -n.spawnD, Lanes: [2]models.Lane{0, 1}},
			EntryPoint{Direction: models.DirectionLeft, BaseRoad: y, Along: n.width + n.spawnD, Lanes: [2]models.Lane{2, 3}},
		)
	}
	for _, x := range n.vRoads {
		out = append(out,
			EntryPoint{Direction: models.DirectionDown, BaseRoad: x, Along: -n.spawnD, Lanes: [2]models.Lane{0, 1}},
			EntryPoint{Direction: models.DirectionUp, BaseRoad: x, Along: n.height + n.spawnD, Lanes: [2]models.Lane{2, 3}},
		)
	}
	return out
}
