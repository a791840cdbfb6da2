package models

// HealthPackage is a catalog item an appointment may optionally reference.
type HealthPackage struct {
	BaseModel
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int     `gorm:"not null" json:"duration"` // minutes
}
