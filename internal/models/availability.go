package models

import "time"

// Availability is a single bookable slot owned by a doctor profile.
// IsBooked is only ever flipped by the booking transaction (and by the
// optional release on reject/cancel).
type Availability struct {
	BaseModel
	DoctorProfileID string    `gorm:"size:36;not null;index:idx_availability_doctor_date,priority:1" json:"doctorProfileId"`
	Date            time.Time `gorm:"type:date;not null;index:idx_availability_doctor_date,priority:2" json:"date"`
	StartTime       time.Time `gorm:"not null" json:"startTime"`
	EndTime         time.Time `gorm:"not null" json:"endTime"`
	IsBooked        bool      `gorm:"not null;default:false;index" json:"isBooked"`
}

// ValidRange reports whether the slot starts strictly before it ends.
func (a *Availability) ValidRange() bool {
	return a.StartTime.Before(a.EndTime)
}
