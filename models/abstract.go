package models

import (
	"time"

	"gorm.io/datatypes"
)

// Author is one entry of an abstract's ordered author list.
type Author struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
}

// Abstract represents the abstracts table.
type Abstract struct {
	ID                       uint                        `gorm:"primaryKey;column:id" json:"id"`
	Title                    string                      `gorm:"column:title;size:500;not null" json:"title"`
	Abstract                 string                      `gorm:"column:abstract;type:text;not null" json:"abstract"`
	Keywords                 datatypes.JSONSlice[string] `gorm:"column:keywords" json:"keywords"`
	Authors                  datatypes.JSONSlice[Author] `gorm:"column:authors" json:"authors"`
	CorrespondingAuthorEmail string                      `gorm:"column:corresponding_author_email;size:255;index" json:"corresponding_author_email"`
	SubmissionType           string                      `gorm:"column:submission_type;size:32;not null" json:"submission_type"`
	Track                    string                      `gorm:"column:track;size:100;index" json:"track"`
	Subcategory              string                      `gorm:"column:subcategory;size:500" json:"subcategory"`
	CrossCuttingThemes       datatypes.JSONSlice[string] `gorm:"column:cross_cutting_themes" json:"cross_cutting_themes"`
	Format                   string                      `gorm:"column:format;size:16;not null" json:"format"`
	FileURL                  *string                     `gorm:"column:file_url;size:1000" json:"file_url"`
	SubmittedBy              *string                     `gorm:"column:submitted_by;size:255" json:"submitted_by"`
	Status                   string                      `gorm:"column:status;size:32;not null;index" json:"status"`
	AdminNotes               *string                     `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	ReviewerComments         *string                     `gorm:"column:reviewer_comments;type:text" json:"reviewer_comments"`
	CreatedAt                time.Time                   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                time.Time                   `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name used by gorm.
func (Abstract) TableName() string {
	return "abstracts"
}
