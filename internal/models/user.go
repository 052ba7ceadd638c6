package models

// Role represents operator roles on the control API
type Role string

const (
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Actions an operator may be permitted to perform.
const (
	ActionToggleSignal  = "toggle_signal"
	ActionSelectVehicle = "select_vehicle"
	ActionPause         = "pause"
)

// TokenRequest is the body of an operator token request
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned after a successful token request
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Role      Role   `json:"role"`
}

// Claims represents JWT claims
type Claims struct {
	Subject string `json:"sub"`
	Role    Role   `json:"role"`
	Exp     int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a role may perform a specific action
func (r Role) HasPermission(action string) bool {
	switch r {
	case RoleOperator:
		return action == ActionToggleSignal || action == ActionSelectVehicle || action == ActionPause
	case RoleViewer:
		return action == ActionSelectVehicle
	default:
		return false
	}
}
