package models

import (
	"time"

	"gorm.io/datatypes"
)

// Form types recorded in the form_submissions queue. Only abstracts are written
// here; registration and sponsorship rows come from the intake services that
// share the queue table.
const (
	FormTypeAbstract     = "abstract"
	FormTypeRegistration = "registration"
	FormTypeSponsorship  = "sponsorship"
)

// FormSubmission is the audit row written alongside every externally submitted
// form. It mirrors the entity status on a best-effort basis only.
type FormSubmission struct {
	ID             uint           `gorm:"primaryKey;column:id" json:"id"`
	FormType       string         `gorm:"column:form_type;size:32;not null;index:idx_form_submissions_entity" json:"form_type"`
	EntityID       uint           `gorm:"column:entity_id;not null;index:idx_form_submissions_entity" json:"entity_id"`
	SubmittedBy    string         `gorm:"column:submitted_by;size:255" json:"submitted_by"`
	SubmissionData datatypes.JSON `gorm:"column:submission_data" json:"submission_data"`
	Status         string         `gorm:"column:status;size:32;not null;index" json:"status"`
	AdminNotes     *string        `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	ReviewComments *string        `gorm:"column:review_comments;type:text" json:"review_comments"`
	ReviewedAt     *time.Time     `gorm:"column:reviewed_at" json:"reviewed_at"`
	CreatedAt      time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (FormSubmission) TableName() string {
	return "form_submissions"
}
