// Package config holds every tunable of the traffic simulation and loads
// overrides from a .env file, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Grid is the static road layout.
type Grid struct {
	Width            float64    `yaml:"width"`
	Height           float64    `yaml:"height"`
	HorizontalRoads  []float64  `yaml:"horizontal_roads"`
	VerticalRoads    []float64  `yaml:"vertical_roads"`
	RoadWidth        float64    `yaml:"road_width"`
	HLaneOffsets     [4]float64 `yaml:"h_lane_offsets"`
	VLaneOffsets     [4]float64 `yaml:"v_lane_offsets"`
	StopLineDistance float64    `yaml:"stop_line_distance"`
	// RoadTolerance is how far an intersection may sit from a vehicle's base road and still count as on it.
	RoadTolerance float64 `yaml:"road_tolerance"`
	SpawnOffset   float64 `yaml:"spawn_offset"`
	DespawnMargin float64 `yaml:"despawn_margin"`
}

// Vehicle holds car geometry and base kinematics.
type Vehicle struct {
	CarSize         float64 `yaml:"car_size"`
	FollowDistance  float64 `yaml:"follow_distance"`
	MaxSpeed        float64 `yaml:"max_speed"`
	MaxSpeedKmh     float64 `yaml:"max_speed_kmh"`
	Acceleration    float64 `yaml:"acceleration"`
	Deceleration    float64 `yaml:"deceleration"`
	BadBrakesFactor float64 `yaml:"bad_brakes_factor"`
	// MovingSpeed is the speed above which a vehicle counts as moving for turn logic.
	MovingSpeed        float64 `yaml:"moving_speed"`
	PreTurnDistance    float64 `yaml:"pre_turn_distance"`
	TurnDistance       float64 `yaml:"turn_distance"`
	RedLightZone       float64 `yaml:"red_light_zone"`
	HardStopDistance   float64 `yaml:"hard_stop_distance"`
	TurnProbability    float64 `yaml:"turn_probability"`
	LaneChangeStep     float64 `yaml:"lane_change_step"`
	LaneChangeCooldown int     `yaml:"lane_change_cooldown"`
	LaneChangeRate     float64 `yaml:"lane_change_rate"`
}

// Driver holds the driver and defect thresholds of the profile generator.
type Driver struct {
	MinAge               int     `yaml:"min_age"`
	MaxAge               int     `yaml:"max_age"`
	YoungAge             int     `yaml:"young_age"`
	OldAge               int     `yaml:"old_age"`
	InattentivePercent   float64 `yaml:"inattentive_percent"`
	VeryAttentivePercent float64 `yaml:"very_attentive_percent"`
	BadTiresPercent      float64 `yaml:"bad_tires_percent"`
	BadBrakesPercent     float64 `yaml:"bad_brakes_percent"`
	MaxCarAge            int     `yaml:"max_car_age"`
}

// Simulation holds the timing, population and accident parameters.
type Simulation struct {
	Seed        int64         `yaml:"seed"`
	FPS         int           `yaml:"fps"`
	CycleLength int           `yaml:"cycle_length"`
	MaxVehicles int           `yaml:"max_vehicles"`
	SoftCap     float64       `yaml:"soft_cap"`
	Intensity   []float64     `yaml:"intensity"`
	StartTime   time.Time     `yaml:"start_time"`
	TimeSpeed   time.Duration `yaml:"time_speed"`
	// AccidentDuration is how many ticks an accident and its vehicles stay frozen.
	AccidentDuration  int     `yaml:"accident_duration"`
	CollisionBase     float64 `yaml:"collision_base"`
	CollisionDampener float64 `yaml:"collision_dampener"`
	Strict            bool    `yaml:"strict"`
	StatsEvery        int     `yaml:"stats_every"`
}

// Server holds the outer surfaces: HTTP, MongoDB, MQTT and operator auth.
type Server struct {
	Port                 string        `yaml:"port"`
	MongoURI             string        `yaml:"mongo_uri"`
	MongoDB              string        `yaml:"mongo_db"`
	MQTTBroker           string        `yaml:"mqtt_broker"`
	MQTTTopic            string        `yaml:"mqtt_topic"`
	MQTTEvery            int           `yaml:"mqtt_every"`
	JWTSecret            string        `yaml:"jwt_secret"`
	JWTExpiry            time.Duration `yaml:"jwt_expiry"`
	OperatorUser         string        `yaml:"operator_user"`
	OperatorPasswordHash string        `yaml:"operator_password_hash"`
}

// Config is the complete configuration of a run.
type Config struct {
	Grid       Grid       `yaml:"grid"`
	Vehicle    Vehicle    `yaml:"vehicle"`
	Driver     Driver     `yaml:"driver"`
	Simulation Simulation `yaml:"simulation"`
	Server     Server     `yaml:"server"`
}

// DefaultIntensity is the per-hour spawn probability per entry point.
var DefaultIntensity = []float64{
	0.003, 0.002, 0.001, 0.001, 0.001, 0.002,
	0.005, 0.015, 0.03, 0.02, 0.015, 0.015,
	0.015, 0.015, 0.015, 0.015, 0.02, 0.025,
	0.03, 0.02, 0.01, 0.005, 0.003, 0.002,
}

// Default returns the stock city layout and behaviour.
func Default() Config {
	const fps = 30
	const carSize = 16.0
	return Config{
		Grid: Grid{
			Width:            1920,
			Height:           1080,
			HorizontalRoads:  []float64{200, 500, 800, 950, 1400},
			VerticalRoads:    []float64{250, 750, 1050, 1650},
			RoadWidth:        60,
			HLaneOffsets:     [4]float64{15, 5, -5, -15},
			VLaneOffsets:     [4]float64{-15, -5, 5, 15},
			StopLineDistance: 20,
			RoadTolerance:    10,
			SpawnOffset:      50,
			DespawnMargin:    100,
		},
		Vehicle: Vehicle{
			CarSize:            carSize,
			FollowDistance:     carSize * 1.5,
			MaxSpeed:           1.8,
			MaxSpeedKmh:        80,
			Acceleration:       0.07,
			Deceleration:       0.15,
			BadBrakesFactor:    0.7,
			MovingSpeed:        0.1,
			PreTurnDistance:    40,
			TurnDistance:       20,
			RedLightZone:       3,
			HardStopDistance:   5,
			TurnProbability:    0.4,
			LaneChangeStep:     0.1,
			LaneChangeCooldown: 30,
			LaneChangeRate:     0.02,
		},
		Driver: Driver{
			MinAge:               18,
			MaxAge:               75,
			YoungAge:             25,
			OldAge:               60,
			InattentivePercent:   60,
			VeryAttentivePercent: 20,
			BadTiresPercent:      7,
			BadBrakesPercent:     3,
			MaxCarAge:            20,
		},
		Simulation: Simulation{
			Seed:              time.Now().UnixNano(),
			FPS:               fps,
			CycleLength:       4 * fps,
			MaxVehicles:       1400,
			SoftCap:           0.8,
			Intensity:         append([]float64(nil), DefaultIntensity...),
			StartTime:         time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC),
			TimeSpeed:         10 * time.Minute,
			AccidentDuration:  1 * fps,
			CollisionBase:     0.01,
			CollisionDampener: 0.02,
			StatsEvery:        10 * fps,
		},
		Server: Server{
			Port:         "8080",
			MongoDB:      "traffic",
			MQTTTopic:    "citytraffic",
			MQTTEvery:    fps,
			JWTSecret:    "default-secret-key-change-in-production",
			JWTExpiry:    12 * time.Hour,
			OperatorUser: "operator",
		},
	}
}

// Load builds a Config from defaults, .env, SIM_CONFIG_FILE and the environment.
func Load() (Config, error) {
	cfg := Default()

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if path := os.Getenv("SIM_CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.overlayEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	envInt64("SIM_SEED", &c.Simulation.Seed)
	envInt("SIM_FPS", &c.Simulation.FPS)
	envInt("SIM_CYCLE_TICKS", &c.Simulation.CycleLength)
	envInt("SIM_MAX_VEHICLES", &c.Simulation.MaxVehicles)
	envInt("SIM_ACCIDENT_TICKS", &c.Simulation.AccidentDuration)
	envInt("SIM_STATS_EVERY", &c.Simulation.StatsEvery)
	envBool("SIM_STRICT", &c.Simulation.Strict)
	envFloat("SIM_TURN_PROBABILITY", &c.Vehicle.TurnProbability)
	envFloat("SIM_MAX_SPEED", &c.Vehicle.MaxSpeed)
	if v := os.Getenv("SIM_TIME_SPEED"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Simulation.TimeSpeed = time.Duration(n) * time.Minute
		}
	}

	envString("PORT", &c.Server.Port)
	envString("MONGO_URI", &c.Server.MongoURI)
	envString("MONGO_DB", &c.Server.MongoDB)
	envString("MQTT_BROKER", &c.Server.MQTTBroker)
	envString("MQTT_TOPIC", &c.Server.MQTTTopic)
	envInt("MQTT_EVERY", &c.Server.MQTTEvery)
	envString("JWT_SECRET", &c.Server.JWTSecret)
	envString("OPERATOR_USER", &c.Server.OperatorUser)
	envString("OPERATOR_PASSWORD_HASH", &c.Server.OperatorPasswordHash)
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Server.JWTExpiry = parsed
		}
	}
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case len(c.Grid.HorizontalRoads) == 0 || len(c.Grid.VerticalRoads) == 0:
		return errors.New("grid needs at least one horizontal and one vertical road")
	case c.Grid.Width <= 0 || c.Grid.Height <= 0:
		return errors.New("grid dimensions must be positive")
	case len(c.Simulation.Intensity) != 24:
		return fmt.Errorf("intensity table must have 24 entries, got %d", len(c.Simulation.Intensity))
	case c.Simulation.CycleLength <= 0:
		return errors.New("signal cycle length must be positive")
	case c.Simulation.FPS <= 0:
		return errors.New("fps must be positive")
	case c.Simulation.MaxVehicles <= 0:
		return errors.New("max vehicles must be positive")
	case c.Simulation.AccidentDuration <= 0:
		return errors.New("accident duration must be positive")
	case c.Vehicle.MaxSpeed <= 0:
		return errors.New("max speed must be positive")
	case c.Driver.MinAge > c.Driver.MaxAge:
		return errors.New("driver min age exceeds max age")
	case c.Driver.MaxCarAge < 0:
		return errors.New("max car age must not be negative")
	case c.Vehicle.Acceleration < 0 || c.Vehicle.Deceleration < 0:
		return errors.New("acceleration and deceleration must not be negative")
	case c.Vehicle.LaneChangeCooldown < 0:
		return errors.New("lane change cooldown must not be negative")
	}
	for name, p := range map[string]float64{
		"turn probability": c.Vehicle.TurnProbability,
		"soft cap":         c.Simulation.SoftCap,
		"lane change step": c.Vehicle.LaneChangeStep,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, p)
		}
	}
	for hour, p := range c.Simulation.Intensity {
		if p < 0 || p > 1 {
			return fmt.Errorf("intensity for hour %d must be within [0,1], got %v", hour, p)
		}
	}
	if c.Vehicle.LaneChangeStep == 0 {
		return errors.New("lane change step must be positive")
	}
	return nil
}

// TickInterval is the wall-clock time between two ticks.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Simulation.FPS)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
