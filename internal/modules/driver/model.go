// README: Driver application, profile, status, and notification records.
package driver

import (
	"luba/internal/types"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusApproved ApplicationStatus = "Approved"
	StatusRejected ApplicationStatus = "Rejected"
)

// AllowedTransitions: an application leaves Pending exactly once, to either
// terminal state. Approved and Rejected have no outgoing transitions.
var AllowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending: {StatusApproved, StatusRejected},
}

func CanTransition(from, to ApplicationStatus) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Images holds the document photo URLs uploaded with an application.
type Images struct {
	Driver  string `json:"driverPhoto,omitempty"`
	License string `json:"licensePhoto,omitempty"`
	Vehicle string `json:"vehiclePhoto,omitempty"`
	IDDoc   string `json:"idPhoto,omitempty"`
}

// Application is the applicant-submitted record under driverApplications/{id}.
// CreatedAt/ApprovedAt/RejectedAt are RFC 3339 strings.
type Application struct {
	ID           types.ID          `json:"-"`
	FullName     string            `json:"fullName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	IDNumber     string            `json:"idNumber"`
	VehicleType  string            `json:"vehicleType"`
	Registration string            `json:"registration"`
	Helpers      int               `json:"helpers"`
	Status       ApplicationStatus `json:"status"`
	Images       Images            `json:"images"`
	CreatedAt    string            `json:"createdAt"`
	ApprovedAt   string            `json:"approvedAt,omitempty"`
	RejectedAt   string            `json:"rejectedAt,omitempty"`
}

// Profile is the operational driver record under drivers/{id}. It is a
// projection of the approved application and is overwritten whole at
// approval time, never edited field by field from here.
type Profile struct {
	ID             types.ID `json:"-"`
	FullName       string   `json:"fullName"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	IDNumber       string   `json:"idNumber"`
	VehicleType    string   `json:"vehicleType"`
	Registration   string   `json:"registration"`
	Helpers        int      `json:"helpers"`
	Rating         float64  `json:"rating"`
	TripsCompleted int      `json:"tripsCompleted"`
	ProfileImage   string   `json:"profileImage,omitempty"`
	LicenseImage   string   `json:"licenseImage,omitempty"`
	VehicleImage   string   `json:"vehicleImage,omitempty"`
	IDImage        string   `json:"idImage,omitempty"`
	CreatedAt      string   `json:"createdAt"`
}

// Status is the online-session record under driverStatus/{id}.
// LastStatusChange is epoch milliseconds; while IsOnline is true it marks
// the start of the current session.
type Status struct {
	IsOnline            bool         `json:"isOnline"`
	Status              string       `json:"status,omitempty"`
	LastStatusChange    types.Millis `json:"lastStatusChange"`
	ForcedOffline       bool         `json:"forcedOffline,omitempty"`
	ForcedOfflineReason string       `json:"forcedOfflineReason,omitempty"`
}

const (
	NotificationApproval  = "approval"
	NotificationRejection = "rejection"
)

// Notification lives under notifications/{driverID}/{millis}.
type Notification struct {
	Message   string       `json:"message"`
	Read      bool         `json:"read"`
	Type      string       `json:"type"`
	CreatedAt types.Millis `json:"createdAt"`
}

// NewProfile projects an approved application onto a fresh driver profile.
// Rating and trip counters start at zero; image URLs carry over verbatim.
func NewProfile(app *Application, createdAt string) *Profile {
	return &Profile{
		ID:             app.ID,
		FullName:       app.FullName,
		Email:          app.Email,
		Phone:          app.Phone,
		Address:        app.Address,
		IDNumber:       app.IDNumber,
		VehicleType:    app.VehicleType,
		Registration:   app.Registration,
		Helpers:        app.Helpers,
		Rating:         0,
		TripsCompleted: 0,
		ProfileImage:   app.Images.Driver,
		LicenseImage:   app.Images.License,
		VehicleImage:   app.Images.Vehicle,
		IDImage:        app.Images.IDDoc,
		CreatedAt:      createdAt,
	}
}
