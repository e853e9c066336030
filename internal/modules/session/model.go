// README: Active-session policy constants and the enriched active-driver view.
package session

import (
	"time"

	"luba/internal/types"
)

const (
	// OnlineLimit is the maximum continuous online duration; past it the
	// monitor forces the driver offline.
	OnlineLimit = 20 * time.Hour
	// ApproachWindow is the threshold past which an online driver is flagged
	// as approaching the limit (no state change, display only).
	ApproachWindow = 18 * time.Hour
	// ForcedOfflineReason is the reason string written on automatic cutoff.
	ForcedOfflineReason = "Exceeded 20 hours of continuous driving"
)

// ActiveDriver is one entry of the active set: an approved driver currently
// online, enriched with session duration and the warning flag.
type ActiveDriver struct {
	ID               types.ID `json:"id"`
	FullName         string   `json:"fullName"`
	VehicleType      string   `json:"vehicleType"`
	HoursOnline      float64  `json:"hoursOnline"`
	ApproachingLimit bool     `json:"approachingLimit"`
}
