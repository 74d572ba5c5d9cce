package models

// Abstract lifecycle statuses. This is the only vocabulary accepted by the store.
const (
	StatusSubmitted        = "submitted"
	StatusUnderReview      = "under_review"
	StatusAccepted         = "accepted"
	StatusRejected         = "rejected"
	StatusRevisionRequired = "revision_required"
	StatusApproved         = "approved"
)

// CanonicalStatuses lists the abstract statuses in workflow order.
var CanonicalStatuses = []string{
	StatusSubmitted,
	StatusUnderReview,
	StatusAccepted,
	StatusRejected,
	StatusRevisionRequired,
	StatusApproved,
}

// IsCanonicalStatus reports whether status belongs to CanonicalStatuses.
func IsCanonicalStatus(status string) bool {
	for _, s := range CanonicalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsDecisionStatus reports whether status is an admin decision that the
// corresponding author should be told about.
func IsDecisionStatus(status string) bool {
	switch status {
	case StatusAccepted, StatusRejected, StatusRevisionRequired, StatusApproved:
		return true
	}
	return false
}

// Review recommendations.
const (
	RecommendationAccept        = "accept"
	RecommendationReject        = "reject"
	RecommendationMinorRevision = "minor_revision"
	RecommendationMajorRevision = "major_revision"
)

var Recommendations = []string{
	RecommendationAccept,
	RecommendationReject,
	RecommendationMinorRevision,
	RecommendationMajorRevision,
}

func IsValidRecommendation(r string) bool {
	for _, v := range Recommendations {
		if v == r {
			return true
		}
	}
	return false
}

// Submission types and presentation formats.
const (
	SubmissionTypeAbstract  = "abstract"
	SubmissionTypeFullPaper = "full_paper"
	SubmissionTypePoster    = "poster"
	SubmissionTypeDemo      = "demo"

	FormatOral   = "oral"
	FormatPoster = "poster"
)

var SubmissionTypes = []string{
	SubmissionTypeAbstract,
	SubmissionTypeFullPaper,
	SubmissionTypePoster,
	SubmissionTypeDemo,
}

func IsValidSubmissionType(t string) bool {
	for _, v := range SubmissionTypes {
		if v == t {
			return true
		}
	}
	return false
}

func IsValidFormat(f string) bool {
	return f == FormatOral || f == FormatPoster
}
