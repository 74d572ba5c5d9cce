package models

import (
	"time"

	"gorm.io/datatypes"
)

// Review is one reviewer's assessment of one abstract. A reviewer email may
// appear at most once per abstract.
type Review struct {
	ID               uint           `gorm:"primaryKey;column:id" json:"id"`
	AbstractID       uint           `gorm:"column:abstract_id;not null;uniqueIndex:idx_reviews_abstract_reviewer" json:"abstract_id"`
	ReviewerName     string         `gorm:"column:reviewer_name;size:255;not null" json:"reviewer_name"`
	ReviewerEmail    string         `gorm:"column:reviewer_email;size:255;not null;uniqueIndex:idx_reviews_abstract_reviewer" json:"reviewer_email"`
	Score            int            `gorm:"column:score;not null" json:"score"`
	Recommendation   string         `gorm:"column:recommendation;size:32;not null;index" json:"recommendation"`
	Comments         *string        `gorm:"column:comments;type:text" json:"comments"`
	DetailedFeedback datatypes.JSON `gorm:"column:detailed_feedback" json:"detailed_feedback"`
	CreatedAt        time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at" json:"updated_at"`

	Abstract *Abstract `gorm:"foreignKey:AbstractID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Review.
func (Review) TableName() string {
	return "reviews"
}
