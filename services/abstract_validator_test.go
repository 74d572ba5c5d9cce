package services

import (
	"strings"
	"testing"

	"conference-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsCompleteSubmission(t *testing.T) {
	v := NewAbstractValidator(nil)

	got, err := v.Validate(validInput())
	require.NoError(t, err)

	assert.Equal(t, "track_1", got.Track)
	assert.Equal(t, models.SubmissionTypeAbstract, got.SubmissionType)
	assert.Equal(t, "amina@example.org", got.CorrespondingAuthorEmail)
	assert.Equal(t, []string{"diagnostics", "referral"}, []string(got.Keywords))
	assert.Empty(t, got.Status)
}

func TestValidateStoresTrackValueForTrackName(t *testing.T) {
	in := validInput()
	in.Track = "Integrated Diagnostics, AMR, and Epidemic Readiness"

	got, err := NewAbstractValidator(nil).Validate(in)
	require.NoError(t, err)
	assert.Equal(t, "track_1", got.Track)
}

func TestValidateReportsEachRule(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AbstractInput)
		kind   ValidationKind
	}{
		{"missing title", func(in *AbstractInput) { in.Title = "  " }, KindMissingField},
		{"missing authors", func(in *AbstractInput) { in.Authors = nil }, KindMissingField},
		{"missing format", func(in *AbstractInput) { in.Format = "" }, KindMissingField},
		{"short title", func(in *AbstractInput) { in.Title = "Tiny" }, KindInvalidField},
		{"short abstract", func(in *AbstractInput) { in.Abstract = "Background Methods Findings Conclusion" }, KindInvalidField},
		{"bad format", func(in *AbstractInput) { in.Format = "workshop" }, KindInvalidField},
		{"bad submission type", func(in *AbstractInput) { in.SubmissionType = "essay" }, KindInvalidField},
		{"unknown track", func(in *AbstractInput) { in.Track = "track_99" }, KindInvalidTrack},
		{"subcategory of another track", func(in *AbstractInput) { in.Subcategory = "Nutrition and lifestyle for health" }, KindInvalidSubcategory},
		{"unknown theme", func(in *AbstractInput) { in.CrossCuttingThemes = []string{"Space medicine"} }, KindInvalidTheme},
		{"missing marker", func(in *AbstractInput) { in.Abstract = strings.Replace(testBody, "Findings", "Results", 1) }, KindMissingStructure},
		{"too many words", func(in *AbstractInput) { in.Abstract = bodyWithWords(301) }, KindTooLong},
		{"author without affiliation", func(in *AbstractInput) { in.Authors[0].Affiliation = "" }, KindInvalidAuthor},
		{"author with bad email", func(in *AbstractInput) { in.Authors[0].Email = "not-an-email" }, KindInvalidAuthor},
		{"bad corresponding email", func(in *AbstractInput) { in.CorrespondingAuthorEmail = "nobody@" }, KindInvalidEmail},
	}

	v := NewAbstractValidator(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := v.Validate(in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, ValidationKindOf(err))
		})
	}
}

func TestValidateWordLimitBoundary(t *testing.T) {
	v := NewAbstractValidator(nil)

	in := validInput()
	in.Abstract = bodyWithWords(300)
	require.Equal(t, 300, CountWords(in.Abstract))
	_, err := v.Validate(in)
	assert.NoError(t, err)

	in.Abstract = bodyWithWords(301)
	_, err = v.Validate(in)
	assert.Equal(t, KindTooLong, ValidationKindOf(err))
}

func TestValidateEnforcesMarkerOrder(t *testing.T) {
	in := validInput()
	in.Abstract = "Conclusion first, then Background and Methods and Findings. " + strings.Repeat("Padding text for length. ", 5)

	_, err := NewAbstractValidator(nil).Validate(in)
	assert.Equal(t, KindMissingStructure, ValidationKindOf(err))
}

func TestValidateMarkersAreCaseInsensitive(t *testing.T) {
	in := validInput()
	in.Abstract = strings.ToLower(testBody)

	_, err := NewAbstractValidator(nil).Validate(in)
	assert.NoError(t, err)
}

func TestValidateStopsAtFirstFailure(t *testing.T) {
	in := validInput()
	in.Track = "nope"
	in.CorrespondingAuthorEmail = "bad"

	_, err := NewAbstractValidator(nil).Validate(in)
	assert.Equal(t, KindInvalidTrack, ValidationKindOf(err))
}
