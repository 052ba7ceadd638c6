package models

// Mood is the driver's temper for the whole trip.
type Mood string

const (
	MoodCalm    Mood = "calm"
	MoodNervous Mood = "nervous"
	MoodRelaxed Mood = "relaxed"
	MoodAngry   Mood = "angry"
	MoodTired   Mood = "tired"
)

// Moods lists the moods a driver can be sampled with, in sampling order.
var Moods = []Mood{MoodCalm, MoodNervous, MoodRelaxed, MoodAngry, MoodTired}

// AttentionFactor is the attention multiplier the mood applies.
func (m Mood) AttentionFactor() float64 {
	switch m {
	case MoodNervous:
		return 0.8
	case MoodAngry:
		return 0.7
	case MoodTired:
		return 0.6
	case MoodRelaxed:
		return 1.0
	case MoodCalm:
		return 1.1
	default:
		return 1.0
	}
}

// Severity is a cosmetic accident magnitude.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Severities lists the severities an accident can be drawn with.
var Severities = []Severity{SeverityMinor, SeverityModerate, SeveritySevere}

// DriverProfile holds the behavioural parameters of a vehicle's driver.
type DriverProfile struct {
	Age        int     `json:"age" bson:"age"`
	Experience int     `json:"experience" bson:"experience"`
	Mood       Mood    `json:"mood" bson:"mood"`
	Aggression float64 `json:"aggression" bson:"aggression"`
	Attention  float64 `json:"attention" bson:"attention"`
	Reaction   float64 `json:"reaction" bson:"reaction"`
	// SpeedFactor scales the global max speed for this driver.
	SpeedFactor float64 `json:"speed_factor" bson:"speed_factor"`
}

// VehicleCondition holds the mechanical state of a vehicle.
type VehicleCondition struct {
	Age         int     `json:"age" bson:"age"`
	BadTires    bool    `json:"bad_tires" bson:"bad_tires"`
	BadBrakes   bool    `json:"bad_brakes" bson:"bad_brakes"`
	EnginePower float64 `json:"engine_power" bson:"engine_power"`
}

// Color is an RGB triple used by renderers.
type Color struct {
	R uint8 `json:"r" bson:"r"`
	G uint8 `json:"g" bson:"g"`
	B uint8 `json:"b" bson:"b"`
}
