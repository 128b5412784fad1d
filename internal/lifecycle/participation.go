package lifecycle

import (
	"strings"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

// ValidateRegistrationForm checks the actor-authored participation fields.
func ValidateRegistrationForm(form models.RegisterParticipationRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(form.Motivation) == "" {
		fields["motivation"] = "motivation is required"
	}
	if strings.TrimSpace(form.Experience) == "" {
		fields["experience"] = "experience is required"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}
	return nil
}

// NewParticipation builds a pending participation for the actor.
func NewParticipation(id string, actor *Actor, campaign *models.Campaign, form models.RegisterParticipationRequest, now time.Time) models.Participation {
	return models.Participation{
		ID:             id,
		CampaignID:     campaign.ID,
		ActorID:        actor.ID,
		Status:         models.ParticipationPending,
		Motivation:     strings.TrimSpace(form.Motivation),
		Experience:     strings.TrimSpace(form.Experience),
		Portfolio:      strings.TrimSpace(form.Portfolio),
		AdditionalInfo: strings.TrimSpace(form.AdditionalInfo),
		SubmittedAt:    now,
	}
}

// ApplyReview returns p with the reviewer's outcome applied. Only a pending
// participation can be reviewed, and only to approved or rejected.
func ApplyReview(p models.Participation, reviewer *Actor, outcome models.ParticipationStatus, notes string, now time.Time) (models.Participation, error) {
	if !reviewer.CanReview() {
		return p, ErrForbidden
	}
	if outcome != models.ParticipationApproved && outcome != models.ParticipationRejected {
		return p, validationError(map[string]string{"status": "status must be approved or rejected"})
	}
	if p.Status != models.ParticipationPending {
		return p, NewError(CodeAlreadyReviewed, "participation %s is already %s", p.ID, p.Status)
	}

	reviewedAt := now
	p.Status = outcome
	p.ReviewedAt = &reviewedAt
	p.ReviewedBy = reviewer.ID
	p.ReviewNotes = strings.TrimSpace(notes)
	if outcome == models.ParticipationApproved {
		p.SubmissionStatus = models.SubmissionNotSubmitted
	}
	return p, nil
}
