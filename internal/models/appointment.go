package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusApproved  AppointmentStatus = "APPROVED"
	StatusRejected  AppointmentStatus = "REJECTED"
	StatusCanceled  AppointmentStatus = "CANCELED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

// IsTerminal reports whether no further transition is possible.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCanceled || s == StatusCompleted
}

// HoldsSlot reports whether an appointment in this status keeps its slot consumed.
func (s AppointmentStatus) HoldsSlot() bool {
	return s != StatusRejected && s != StatusCanceled
}

// Appointment is created only by booking and never deleted.
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;not null;index" json:"patientId"`
	DoctorID        string            `gorm:"size:36;not null;index" json:"doctorId"`
	DoctorProfileID string            `gorm:"size:36;not null;index" json:"doctorProfileId"`
	AvailabilityID  *string           `gorm:"size:36;index" json:"availabilityId,omitempty"`
	HealthPackageID *string           `gorm:"size:36;index" json:"healthPackageId,omitempty"`
	Date            time.Time         `gorm:"type:date;not null;index" json:"date"`
	StartTime       time.Time         `gorm:"not null" json:"startTime"`
	EndTime         time.Time         `gorm:"not null" json:"endTime"`
	Status          AppointmentStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes"`

	// Relations
	Patient       *User          `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor        *User          `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	DoctorProfile *DoctorProfile `gorm:"foreignKey:DoctorProfileID" json:"doctorProfile,omitempty"`
	HealthPackage *HealthPackage `gorm:"foreignKey:HealthPackageID" json:"healthPackage,omitempty"`
}
