package db

import "time"

// CheckInModel is one admitted ticket. The unique index makes a second
// admission of the same ticket to the same event a no-op insert.
type CheckInModel struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	EventID        string    `gorm:"not null;uniqueIndex:ux_checkins_ticket,priority:1"`
	EventIDNumeric bool      `gorm:"not null;uniqueIndex:ux_checkins_ticket,priority:2"`
	AssetID        int64     `gorm:"not null;uniqueIndex:ux_checkins_ticket,priority:3"`
	HolderAddress  string    `gorm:"not null;index"`
	Gate           string    `gorm:"not null;default:''"`
	CheckedInAt    time.Time `gorm:"not null"`
}

func (CheckInModel) TableName() string {
	return "checkins"
}
