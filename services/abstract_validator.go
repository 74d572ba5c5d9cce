package services

import (
	"regexp"
	"strings"

	"conference-api/models"
	"conference-api/utils"
)

const (
	titleMinLen      = 5
	titleMaxLen      = 500
	abstractMinLen   = 100
	abstractMaxLen   = 5000
	abstractMaxWords = 300
)

// The four section markers must appear in this order; section boundaries are not checked.
var abstractStructure = regexp.MustCompile(`(?is)\bbackground\b.*?\bmethods\b.*?\bfindings\b.*?\bconclusion`)

// AbstractInput is the client payload for creating or replacing an abstract.
type AbstractInput struct {
	Title                    string          `json:"title"`
	Abstract                 string          `json:"abstract"`
	Keywords                 []string        `json:"keywords"`
	Authors                  []models.Author `json:"authors"`
	CorrespondingAuthorEmail string          `json:"corresponding_author_email"`
	SubmissionType           string          `json:"submission_type"`
	Track                    string          `json:"track"`
	Subcategory              string          `json:"subcategory"`
	CrossCuttingThemes       []string        `json:"cross_cutting_themes"`
	FileURL                  *string         `json:"file_url"`
	SubmittedBy              *string         `json:"submitted_by"`
	Format                   string          `json:"format"`

	// Status is only honoured by full updates; creation always starts at submitted.
	Status string `json:"status"`
}

// AbstractValidator checks abstract payloads against the input rules and the taxonomy.
type AbstractValidator struct {
	taxonomy *Taxonomy
}

func NewAbstractValidator(taxonomy *Taxonomy) *AbstractValidator {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &AbstractValidator{taxonomy: taxonomy}
}

// Validate runs the checks in order and reports the first failure as a
// *ValidationError. On success it returns a normalized, unsaved abstract whose
// Track holds the canonical track value.
func (v *AbstractValidator) Validate(in AbstractInput) (*models.Abstract, error) {
	title := utils.SanitizeInput(in.Title)
	body := utils.SanitizeInput(in.Abstract)
	email := utils.SanitizeInput(in.CorrespondingAuthorEmail)
	trackID := utils.SanitizeInput(in.Track)
	subcategory := utils.SanitizeInput(in.Subcategory)
	format := strings.ToLower(utils.SanitizeInput(in.Format))
	submissionType := strings.ToLower(utils.SanitizeInput(in.SubmissionType))

	if title == "" || body == "" || len(in.Authors) == 0 || email == "" || trackID == "" || subcategory == "" || format == "" {
		return nil, invalid(KindMissingField, "", "Title, abstract, authors, corresponding author email, track, subcategory, and format are required")
	}

	if !utils.LengthBetween(title, titleMinLen, titleMaxLen) {
		return nil, invalid(KindInvalidField, "title", "Title must be between 5 and 500 characters")
	}
	if !utils.LengthBetween(body, abstractMinLen, abstractMaxLen) {
		return nil, invalid(KindInvalidField, "abstract", "Abstract must be between 100 and 5000 characters")
	}
	if !models.IsValidFormat(format) {
		return nil, invalid(KindInvalidField, "format", "Format must be oral or poster")
	}
	if submissionType == "" {
		submissionType = models.SubmissionTypeAbstract
	}
	if !models.IsValidSubmissionType(submissionType) {
		return nil, invalid(KindInvalidField, "submission_type", "Invalid submission type")
	}

	track, ok := v.taxonomy.ResolveTrack(trackID)
	if !ok {
		return nil, invalid(KindInvalidTrack, "track", "Invalid track")
	}
	if !v.taxonomy.IsValidSubcategory(track, subcategory) {
		return nil, invalid(KindInvalidSubcategory, "subcategory", "Invalid subcategory for selected track")
	}

	themes := utils.CleanList(in.CrossCuttingThemes)
	for _, theme := range themes {
		if !v.taxonomy.IsValidTheme(theme) {
			return nil, invalid(KindInvalidTheme, "cross_cutting_themes", "Invalid cross-cutting theme: "+theme)
		}
	}

	if !abstractStructure.MatchString(body) {
		return nil, invalid(KindMissingStructure, "abstract", "Abstract must include Background, Methods, Findings, and Conclusion sections.")
	}
	if CountWords(body) > abstractMaxWords {
		return nil, invalid(KindTooLong, "abstract", "Abstract must not exceed 300 words.")
	}

	authors := make([]models.Author, 0, len(in.Authors))
	for _, a := range in.Authors {
		author := models.Author{
			Name:        utils.SanitizeInput(a.Name),
			Email:       utils.SanitizeInput(a.Email),
			Affiliation: utils.SanitizeInput(a.Affiliation),
		}
		if author.Name == "" || author.Affiliation == "" {
			return nil, invalid(KindInvalidAuthor, "authors", "Each author must have name, email, and affiliation")
		}
		if !utils.ValidateEmail(author.Email) {
			return nil, invalid(KindInvalidAuthor, "authors", "Author emails must be valid")
		}
		authors = append(authors, author)
	}

	if !utils.ValidateEmail(email) {
		return nil, invalid(KindInvalidEmail, "corresponding_author_email", "Valid corresponding author email is required")
	}

	return &models.Abstract{
		Title:                    title,
		Abstract:                 body,
		Keywords:                 utils.CleanList(in.Keywords),
		Authors:                  authors,
		CorrespondingAuthorEmail: utils.NormalizeEmail(email),
		SubmissionType:           submissionType,
		Track:                    track.Value,
		Subcategory:              subcategory,
		CrossCuttingThemes:       themes,
		Format:                   format,
		FileURL:                  trimmedOrNil(in.FileURL),
		SubmittedBy:              trimmedOrNil(in.SubmittedBy),
	}, nil
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := utils.SanitizeInput(*s)
	if v == "" {
		return nil
	}
	return &v
}
