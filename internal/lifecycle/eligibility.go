package lifecycle

import (
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

// Input is the state snapshot a decision is derived from. Participation and
// Submission are nil when the actor has none.
type Input struct {
	Actor         *Actor
	Campaign      *models.Campaign
	Participation *models.Participation
	Submission    *models.Submission
	Now           time.Time
}

// Decide evaluates the rules in a fixed order and returns the first that
// matches. It returns an error only for malformed input (missing campaign,
// out-of-enum statuses, records from another campaign, invalid windows).
func Decide(in Input) (Decision, error) {
	if err := validateInput(in); err != nil {
		return Decision{}, err
	}

	actor := in.Actor
	if actor == nil {
		return notAuthenticated(), nil
	}
	if !actor.IsParticipant() {
		return notEligibleRole(), nil
	}
	if actor.VerificationStatus != models.VerificationApproved {
		if !actor.VerificationStatus.Valid() {
			return Decision{}, NewError(CodeValidation, "unknown verification status %q", actor.VerificationStatus)
		}
		return verificationRequired(actor.VerificationStatus), nil
	}

	c := in.Campaign
	if c.Status != models.CampaignActive {
		return campaignNotOpen(c.Status), nil
	}

	p := in.Participation
	if p == nil {
		phase, err := Classify(in.Now, Window{Start: c.RegistrationStartDate, End: c.RegistrationEndDate})
		if err != nil {
			return Decision{}, err
		}
		switch phase {
		case Before:
			return registrationNotStarted(c.RegistrationStartDate), nil
		case After:
			return registrationEnded(c.RegistrationEndDate), nil
		}
		return canRegister(), nil
	}

	switch p.Status {
	case models.ParticipationPending:
		return awaitingApproval(), nil
	case models.ParticipationRejected:
		return participationRejected(), nil
	}

	status, err := effectiveSubmissionStatus(p, in.Submission)
	if err != nil {
		return Decision{}, err
	}
	switch status {
	case models.SubmissionNotSubmitted:
		phase, err := Classify(in.Now, Window{Start: c.SubmissionStartDate, End: c.SubmissionEndDate})
		if err != nil {
			return Decision{}, err
		}
		switch phase {
		case Before:
			return submissionNotStarted(c.SubmissionStartDate), nil
		case After:
			return submissionEnded(c.SubmissionEndDate), nil
		}
		return canSubmit(), nil
	case models.SubmissionSubmitted, models.SubmissionUnderReview:
		return underReview(), nil
	case models.SubmissionGraded:
		return graded(), nil
	case models.SubmissionWinner:
		return winner(), nil
	case models.SubmissionRunnerUp:
		return runnerUp(), nil
	default:
		return notSelected(), nil
	}
}

func validateInput(in Input) error {
	if in.Now.IsZero() {
		return NewError(CodeValidation, "decision time is required")
	}
	c := in.Campaign
	if c == nil {
		return NewError(CodeValidation, "campaign is required")
	}
	if !c.Status.Valid() {
		return NewError(CodeValidation, "unknown campaign status %q", c.Status)
	}
	if p := in.Participation; p != nil {
		if !p.Status.Valid() {
			return NewError(CodeValidation, "unknown participation status %q", p.Status)
		}
		if p.CampaignID != c.ID {
			return NewError(CodeValidation, "participation %s belongs to another campaign", p.ID)
		}
		if in.Actor != nil && p.ActorID != in.Actor.ID {
			return NewError(CodeValidation, "participation %s belongs to another actor", p.ID)
		}
	}
	if s := in.Submission; s != nil {
		if in.Participation == nil {
			return NewError(CodeValidation, "submission %s supplied without its participation", s.ID)
		}
		if s.ParticipationID != in.Participation.ID {
			return NewError(CodeValidation, "submission %s belongs to another participation", s.ID)
		}
	}
	return nil
}

// effectiveSubmissionStatus prefers the submission record over the
// participation mirror, since the submission is the source of truth.
func effectiveSubmissionStatus(p *models.Participation, s *models.Submission) (models.SubmissionStatus, error) {
	if s != nil {
		if !s.Status.Valid() || s.Status == models.SubmissionNotSubmitted {
			return "", NewError(CodeValidation, "unknown submission status %q", s.Status)
		}
		return s.Status, nil
	}
	status := p.SubmissionStatus
	if status == "" {
		status = models.SubmissionNotSubmitted
	}
	if !status.Valid() {
		return "", NewError(CodeValidation, "unknown submission status %q", status)
	}
	return status, nil
}

// RegistrationError translates a decision evaluated at write time into the
// error a register command must fail with, or nil when CanRegister.
func RegistrationError(d Decision) error {
	switch d.Kind {
	case DecisionCanRegister:
		return nil
	case DecisionNotAuthenticated, DecisionNotEligibleRole, DecisionVerificationRequired:
		return NewError(CodeForbidden, "%s", d.Reason)
	case DecisionCampaignNotOpen, DecisionRegistrationNotStarted, DecisionRegistrationEnded:
		return NewError(CodeCampaignClosed, "%s", d.Reason)
	}
	return ErrDuplicateParticipation
}

// SubmissionError translates a decision evaluated at write time into the
// error a submit command must fail with, or nil when CanSubmit.
func SubmissionError(d Decision) error {
	switch d.Kind {
	case DecisionCanSubmit:
		return nil
	case DecisionNotAuthenticated, DecisionNotEligibleRole, DecisionVerificationRequired:
		return NewError(CodeForbidden, "%s", d.Reason)
	case DecisionCampaignNotOpen:
		return NewError(CodeCampaignClosed, "%s", d.Reason)
	case DecisionRegistrationNotStarted, DecisionRegistrationEnded, DecisionCanRegister,
		DecisionAwaitingApproval, DecisionParticipationRejected:
		return ErrNotApproved
	case DecisionSubmissionNotStarted, DecisionSubmissionEnded:
		return NewError(CodeSubmissionWindowClosed, "%s", d.Reason)
	}
	return ErrAlreadySubmitted
}
