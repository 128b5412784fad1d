package lifecycle

import (
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

// submissionRank orders submission statuses along the only legal path.
// The three terminal outcomes share the highest rank.
var submissionRank = map[models.SubmissionStatus]int{
	models.SubmissionNotSubmitted: 0,
	models.SubmissionSubmitted:    1,
	models.SubmissionUnderReview:  2,
	models.SubmissionGraded:       3,
	models.SubmissionWinner:       4,
	models.SubmissionRunnerUp:     4,
	models.SubmissionNotSelected:  4,
}

// IsFinal reports whether a submission status is a terminal outcome.
func IsFinal(s models.SubmissionStatus) bool {
	switch s {
	case models.SubmissionWinner, models.SubmissionRunnerUp, models.SubmissionNotSelected:
		return true
	}
	return false
}

// CanAdvance reports whether moving from one submission status to another
// keeps the status monotonic. Staying on graded is allowed (re-grading);
// leaving a terminal outcome is not.
func CanAdvance(from, to models.SubmissionStatus) bool {
	fromRank, ok := submissionRank[from]
	if !ok {
		return false
	}
	toRank, ok := submissionRank[to]
	if !ok {
		return false
	}
	if IsFinal(from) {
		return false
	}
	if from == to {
		return from == models.SubmissionGraded
	}
	return toRank > fromRank
}
