package models

// DefaultSpecialty is assigned to profiles created during doctor registration.
const DefaultSpecialty = "General"

// DoctorProfile is the bookable side of a DOCTOR user. Only admins flip IsApproved.
type DoctorProfile struct {
	BaseModel
	UserID     string `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	Specialty  string `gorm:"size:100;not null" json:"specialty"`
	Bio        string `gorm:"type:text" json:"bio"`
	IsApproved bool   `gorm:"not null;default:false;index" json:"isApproved"`

	// Relations (not always preloaded)
	User           *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Availabilities []Availability `gorm:"foreignKey:DoctorProfileID" json:"availabilities,omitempty"`
}
