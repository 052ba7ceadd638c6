// Package driver samples the behavioural and mechanical parameters of a new
// vehicle. All randomness comes from the Rand passed in, so a seeded source
// reproduces a population exactly.
package driver

import (
	"math"

	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/models"
)

// Rand is the random source the simulation draws from. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Kinematics are the per-vehicle motion limits derived from driver and car.
type Kinematics struct {
	MaxSpeed     float64
	Acceleration float64
	Deceleration float64
}

// Profile is everything sampled for one vehicle.
type Profile struct {
	Driver     models.DriverProfile
	Condition  models.VehicleCondition
	Kinematics Kinematics
}

// Generator turns random draws into profiles using the configured thresholds.
type Generator struct {
	drv config.Driver
	veh config.Vehicle
}

// NewGenerator returns a Generator for the given driver and vehicle settings.
func NewGenerator(drv config.Driver, veh config.Vehicle) *Generator {
	return &Generator{drv: drv, veh: veh}
}

// Generate samples a profile. Draw order is fixed: age, mood, attentiveness,
// aggression, car age, tires, brakes, engine power.
func (g *Generator) Generate(r Rand) Profile {
	age := g.drv.MinAge + r.Intn(g.drv.MaxAge-g.drv.MinAge+1)
	d := models.DriverProfile{
		Age:        age,
		Experience: max(1, age-g.drv.MinAge),
		Mood:       models.Moods[r.Intn(len(models.Moods))],
	}
	d.Attention = g.attention(d, r.Float64()*100)
	d.Aggression = 0.1 + 0.9*r.Float64()
	d.SpeedFactor = g.speedFactor(d)
	d.Reaction = g.reaction(d)

	c := models.VehicleCondition{
		Age:       r.Intn(g.drv.MaxCarAge + 1),
		BadTires:  r.Float64()*100 < g.drv.BadTiresPercent,
		BadBrakes: r.Float64()*100 < g.drv.BadBrakesPercent,
	}
	c.EnginePower = 0.8 + 0.4*r.Float64()

	return Profile{Driver: d, Condition: c, Kinematics: g.Kinematics(d, c)}
}

// Kinematics derives the motion limits of a vehicle.
func (g *Generator) Kinematics(d models.DriverProfile, c models.VehicleCondition) Kinematics {
	brakes := 1.0
	if c.BadBrakes {
		brakes = g.veh.BadBrakesFactor
	}
	return Kinematics{
		MaxSpeed:     g.veh.MaxSpeed * d.SpeedFactor,
		Acceleration: g.veh.Acceleration * c.EnginePower,
		Deceleration: g.veh.Deceleration * brakes,
	}
}

func (g *Generator) young(d models.DriverProfile) bool { return d.Age < g.drv.YoungAge }
func (g *Generator) old(d models.DriverProfile) bool { return d.Age > g.drv.OldAge }

// attention applies age, mood, experience and the attentiveness category.
// roll is a percentage in [0,100); the categories are checked in order so
// they never both apply.
func (g *Generator) attention(d models.DriverProfile, roll float64) float64 {
	a := 1.0
	switch {
	case g.young(d):
		a *= 0.8
	case g.old(d):
		a *= 0.9
	}
	a *= d.Mood.AttentionFactor()
	a *= math.Min(1.2, 1.0+float64(d.Experience)*0.01)

	switch {
	case roll < g.drv.InattentivePercent:
		a *= 0.7
	case roll < g.drv.InattentivePercent+g.drv.VeryAttentivePercent:
		a *= 1.2
	}
	return a
}

func (g *Generator) speedFactor(d models.DriverProfile) float64 {
	m := 1.0
	if g.young(d) {
		m *= 1.1
	}
	if d.Mood == models.MoodAngry {
		m *= 1.2
	}
	return m * (0.9 + d.Aggression*0.2)
}

func (g *Generator) reaction(d models.DriverProfile) float64 {
	r := 1.0
	if g.old(d) {
		r *= 1.2
	}
	if d.Experience < 5 {
		r *= 1.1
	}
	if d.Mood == models.MoodTired || d.Mood == models.MoodNervous {
		r *= 1.2
	}
	r /= d.Attention
	return math.Max(0.7, math.Min(1.5, r))
}
