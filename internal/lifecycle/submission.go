package lifecycle

import (
	"math"
	"strings"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"gorm.io/datatypes"
)

// MaxRankedPosition is the number of podium slots a campaign offers.
const MaxRankedPosition = 3

// ValidateSubmissionPayload checks the actor-authored project fields.
func ValidateSubmissionPayload(payload models.SubmitProjectRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(payload.ProjectTitle) == "" {
		fields["project_title"] = "project title is required"
	}
	if strings.TrimSpace(payload.ProjectDescription) == "" {
		fields["project_description"] = "project description is required"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}
	return nil
}

// NewSubmission builds a submitted project for an approved participation.
func NewSubmission(id string, p *models.Participation, payload models.SubmitProjectRequest, now time.Time) models.Submission {
	screenshots := make([]string, 0, len(payload.ProjectScreenshots))
	for _, u := range payload.ProjectScreenshots {
		if u = strings.TrimSpace(u); u != "" {
			screenshots = append(screenshots, u)
		}
	}
	links := models.ProjectLinks{
		DemoURL:   strings.TrimSpace(payload.ProjectLinks.DemoURL),
		GithubURL: strings.TrimSpace(payload.ProjectLinks.GithubURL),
		FilesURL:  strings.TrimSpace(payload.ProjectLinks.FilesURL),
	}
	return models.Submission{
		ID:                 id,
		CampaignID:         p.CampaignID,
		ActorID:            p.ActorID,
		ParticipationID:    p.ID,
		ProjectTitle:       strings.TrimSpace(payload.ProjectTitle),
		ProjectDescription: strings.TrimSpace(payload.ProjectDescription),
		ProjectScreenshots: datatypes.JSONSlice[string](screenshots),
		ProjectLinks:       datatypes.NewJSONType(links),
		PitchDeckURL:       strings.TrimSpace(payload.PitchDeckURL),
		Status:             models.SubmissionSubmitted,
		SubmissionDate:     now,
	}
}

// StartReview moves a submitted project to under_review.
func StartReview(s models.Submission, reviewer *Actor) (models.Submission, error) {
	if !reviewer.CanReview() {
		return s, ErrForbidden
	}
	if IsFinal(s.Status) {
		return s, NewError(CodeAlreadyFinalized, "submission %s is already %s", s.ID, s.Status)
	}
	if s.Status != models.SubmissionSubmitted {
		return s, NewError(CodeValidation, "invalid status transition from %s to %s", s.Status, models.SubmissionUnderReview)
	}
	s.Status = models.SubmissionUnderReview
	return s, nil
}

// ApplyGrade returns s with the reviewer's grading decision applied. The
// campaign supplies the default prize for a ranked position. Position
// exclusivity across submissions is the caller's concern.
func ApplyGrade(s models.Submission, reviewer *Actor, campaign *models.Campaign, in models.GradeSubmissionRequest, now time.Time) (models.Submission, error) {
	if !reviewer.CanReview() {
		return s, ErrForbidden
	}
	if IsFinal(s.Status) {
		return s, NewError(CodeAlreadyFinalized, "submission %s is already %s", s.ID, s.Status)
	}
	switch s.Status {
	case models.SubmissionSubmitted, models.SubmissionUnderReview, models.SubmissionGraded:
	default:
		return s, NewError(CodeValidation, "submission %s cannot be graded from status %q", s.ID, s.Status)
	}

	if in.Score == nil {
		return s, validationError(map[string]string{"score": "score is required"})
	}
	score := *in.Score
	if math.IsNaN(score) || score < 0 || score > 100 {
		return s, NewError(CodeInvalidScore, "score %v is outside 0..100", score)
	}

	target := in.Status
	if target == "" {
		target = models.SubmissionGraded
	}
	position, err := resolvePosition(target, in.Position)
	if err != nil {
		return s, err
	}
	if !CanAdvance(s.Status, target) {
		return s, NewError(CodeValidation, "invalid status transition from %s to %s", s.Status, target)
	}

	grade := strings.ToUpper(strings.TrimSpace(in.Grade))
	if grade == "" {
		grade = LetterGrade(score)
	} else if !ValidGrade(grade) {
		return s, validationError(map[string]string{"grade": "grade must be one of A+, A, B+, B, C+, C, D, F"})
	}

	prize, err := resolvePrize(campaign, position, in.PrizeAmount)
	if err != nil {
		return s, err
	}

	gradedAt := now
	s.Score = &score
	s.Grade = grade
	s.Feedback = strings.TrimSpace(in.Feedback)
	s.Status = target
	s.Position = position
	s.PrizeAmount = prize
	s.GradedAt = &gradedAt
	s.GradedBy = reviewer.ID
	return s, nil
}

func resolvePosition(target models.SubmissionStatus, requested *int) (*int, error) {
	invalid := func(msg string) error {
		return validationError(map[string]string{"position": msg})
	}
	switch target {
	case models.SubmissionWinner:
		if requested == nil {
			return intPtr(1), nil
		}
		if *requested != 1 {
			return nil, invalid("a winner must hold position 1")
		}
		return intPtr(1), nil
	case models.SubmissionRunnerUp:
		if requested == nil {
			return intPtr(2), nil
		}
		if *requested != 2 && *requested != 3 {
			return nil, invalid("a runner-up must hold position 2 or 3")
		}
		return intPtr(*requested), nil
	case models.SubmissionGraded:
		if requested == nil {
			return nil, nil
		}
		if *requested < 1 || *requested > MaxRankedPosition {
			return nil, invalid("position must be between 1 and 3")
		}
		return intPtr(*requested), nil
	case models.SubmissionNotSelected:
		if requested != nil {
			return nil, invalid("a not selected submission cannot hold a position")
		}
		return nil, nil
	}
	return nil, validationError(map[string]string{"status": "status must be graded, winner, runner_up or not_selected"})
}

func resolvePrize(campaign *models.Campaign, position *int, requested *float64) (*float64, error) {
	if requested != nil {
		if position == nil {
			return nil, validationError(map[string]string{"prize_amount": "a prize requires a ranked position"})
		}
		if math.IsNaN(*requested) || *requested < 0 {
			return nil, validationError(map[string]string{"prize_amount": "prize amount cannot be negative"})
		}
		v := *requested
		return &v, nil
	}
	if position == nil || campaign == nil {
		return nil, nil
	}
	return campaign.PrizeForPosition(*position), nil
}

var gradeThresholds = []struct {
	min   float64
	grade string
}{
	{95, "A+"},
	{90, "A"},
	{85, "B+"},
	{80, "B"},
	{75, "C+"},
	{70, "C"},
	{60, "D"},
}

// LetterGrade derives a letter grade from a 0..100 score.
func LetterGrade(score float64) string {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.grade
		}
	}
	return "F"
}

// ValidGrade reports whether g is one of the allowed letter grades.
func ValidGrade(g string) bool {
	if g == "F" {
		return true
	}
	for _, t := range gradeThresholds {
		if t.grade == g {
			return true
		}
	}
	return false
}

func intPtr(v int) *int {
	return &v
}
