package models

// VehicleView is the read-only state of a vehicle exposed to renderers and the API.
type VehicleView struct {
	ID         uint64           `json:"id"`
	Position   Point            `json:"position"`
	Direction  Direction        `json:"direction"`
	Lane       Lane             `json:"lane"`
	Speed      float64          `json:"speed"`
	SpeedKmh   float64          `json:"speed_kmh"`
	Color      Color            `json:"color"`
	Selected   bool             `json:"selected"`
	InAccident bool             `json:"in_accident"`
	Blinking   bool             `json:"blinking"`
	Turning    bool             `json:"turning"`
	Changing   bool             `json:"changing_lane"`
	Driver     DriverProfile    `json:"driver"`
	Condition  VehicleCondition `json:"condition"`
}
