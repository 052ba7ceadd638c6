package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccidentReasonCollision is the reason recorded for a rear-end collision.
const AccidentReasonCollision = "collision"

// AccidentRecord is a journal entry written when an accident happens.
type AccidentRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunID      string             `bson:"run_id" json:"run_id"`
	AccidentID uint64             `bson:"accident_id" json:"accident_id"`
	Tick       uint64             `bson:"tick" json:"tick"`
	SimTime    time.Time          `bson:"sim_time" json:"sim_time"`
	Location   Point              `bson:"location" json:"location"`
	Reason     string             `bson:"reason" json:"reason"`
	Severity   Severity           `bson:"severity" json:"severity"`
	Vehicles   []AccidentParty    `bson:"vehicles" json:"vehicles"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// AccidentParty describes one vehicle involved in an accident.
type AccidentParty struct {
	VehicleID uint64           `bson:"vehicle_id" json:"vehicle_id"`
	Direction Direction        `bson:"direction" json:"direction"`
	Lane      Lane             `bson:"lane" json:"lane"`
	Speed     float64          `bson:"speed" json:"speed"`
	Driver    DriverProfile    `bson:"driver" json:"driver"`
	Condition VehicleCondition `bson:"condition" json:"condition"`
}
