package models

import "time"

// AbstractStatusHistory tracks historical status changes for abstracts.
type AbstractStatusHistory struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	AbstractID uint      `gorm:"column:abstract_id;not null;index" json:"abstract_id"`
	OldStatus  string    `gorm:"column:old_status;size:32" json:"old_status"`
	NewStatus  string    `gorm:"column:new_status;size:32;not null" json:"new_status"`
	ChangedBy  string    `gorm:"column:changed_by;size:255" json:"changed_by"`
	Notes      *string   `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for AbstractStatusHistory.
func (AbstractStatusHistory) TableName() string {
	return "abstract_status_history"
}
