package lifecycle

import (
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

// DecisionKind names the single outcome of an eligibility evaluation.
type DecisionKind string

const (
	DecisionNotAuthenticated       DecisionKind = "not_authenticated"
	DecisionNotEligibleRole        DecisionKind = "not_eligible_role"
	DecisionVerificationRequired   DecisionKind = "verification_required"
	DecisionCampaignNotOpen        DecisionKind = "campaign_not_open"
	DecisionRegistrationNotStarted DecisionKind = "registration_not_started"
	DecisionRegistrationEnded      DecisionKind = "registration_ended"
	DecisionCanRegister            DecisionKind = "can_register"
	DecisionAwaitingApproval       DecisionKind = "awaiting_approval"
	DecisionParticipationRejected  DecisionKind = "participation_rejected"
	DecisionSubmissionNotStarted   DecisionKind = "submission_not_started"
	DecisionSubmissionEnded        DecisionKind = "submission_ended"
	DecisionCanSubmit              DecisionKind = "can_submit"
	DecisionUnderReview            DecisionKind = "under_review"
	DecisionGraded                 DecisionKind = "graded"
	DecisionWinner                 DecisionKind = "winner"
	DecisionRunnerUp               DecisionKind = "runner_up"
	DecisionNotSelected            DecisionKind = "not_selected"
)

// Action is the primary command a decision enables.
type Action string

const (
	ActionNone     Action = ""
	ActionRegister Action = "register"
	ActionSubmit   Action = "submit"
)

// Decision is the one authoritative answer to "what can this actor do next".
// Exactly one Kind is set. Action is non-empty only for CanRegister and
// CanSubmit; every other kind is a disabled affordance explained by Reason.
type Decision struct {
	Kind           DecisionKind              `json:"kind"`
	Action         Action                    `json:"action,omitempty"`
	Reason         string                    `json:"reason"`
	OpensAt        *time.Time                `json:"opens_at,omitempty"`
	EndedAt        *time.Time                `json:"ended_at,omitempty"`
	Verification   models.VerificationStatus `json:"verification_status,omitempty"`
	CampaignStatus models.CampaignStatus     `json:"campaign_status,omitempty"`
}

// Enabled reports whether the decision carries an executable action.
func (d Decision) Enabled() bool {
	return d.Action != ActionNone
}

// RegistrationNotOpen reports whether the decision is one of the
// registration window sub-cases.
func (d Decision) RegistrationNotOpen() bool {
	return d.Kind == DecisionRegistrationNotStarted || d.Kind == DecisionRegistrationEnded
}

// SubmissionWindowNotOpen reports whether the decision is one of the
// submission window sub-cases.
func (d Decision) SubmissionWindowNotOpen() bool {
	return d.Kind == DecisionSubmissionNotStarted || d.Kind == DecisionSubmissionEnded
}

// Terminal reports whether the decision is a final result for the actor.
func (d Decision) Terminal() bool {
	switch d.Kind {
	case DecisionParticipationRejected, DecisionWinner, DecisionRunnerUp, DecisionNotSelected:
		return true
	}
	return false
}

func notAuthenticated() Decision {
	return Decision{Kind: DecisionNotAuthenticated, Reason: "sign in to take part in this campaign"}
}

func notEligibleRole() Decision {
	return Decision{Kind: DecisionNotEligibleRole, Reason: "only student accounts can take part in campaigns"}
}

func verificationRequired(status models.VerificationStatus) Decision {
	reason := "verify your student account to take part"
	switch status {
	case models.VerificationPending:
		reason = "your verification is pending review"
	case models.VerificationRejected:
		reason = "your verification was rejected"
	}
	return Decision{Kind: DecisionVerificationRequired, Reason: reason, Verification: status}
}

func campaignNotOpen(status models.CampaignStatus) Decision {
	return Decision{Kind: DecisionCampaignNotOpen, Reason: "campaign is not active", CampaignStatus: status}
}

func registrationNotStarted(opensAt *time.Time) Decision {
	return Decision{Kind: DecisionRegistrationNotStarted, Reason: "registration has not opened yet", OpensAt: copyTime(opensAt)}
}

func registrationEnded(endedAt *time.Time) Decision {
	return Decision{Kind: DecisionRegistrationEnded, Reason: "registration has closed", EndedAt: copyTime(endedAt)}
}

func canRegister() Decision {
	return Decision{Kind: DecisionCanRegister, Action: ActionRegister, Reason: "registration is open"}
}

func awaitingApproval() Decision {
	return Decision{Kind: DecisionAwaitingApproval, Reason: "your participation request is awaiting review"}
}

func participationRejected() Decision {
	return Decision{Kind: DecisionParticipationRejected, Reason: "your participation request was not approved"}
}

func submissionNotStarted(opensAt *time.Time) Decision {
	return Decision{Kind: DecisionSubmissionNotStarted, Reason: "submissions have not opened yet", OpensAt: copyTime(opensAt)}
}

func submissionEnded(endedAt *time.Time) Decision {
	return Decision{Kind: DecisionSubmissionEnded, Reason: "the submission window has closed", EndedAt: copyTime(endedAt)}
}

func canSubmit() Decision {
	return Decision{Kind: DecisionCanSubmit, Action: ActionSubmit, Reason: "you can submit your project"}
}

func underReview() Decision {
	return Decision{Kind: DecisionUnderReview, Reason: "your project is being reviewed"}
}

func graded() Decision {
	return Decision{Kind: DecisionGraded, Reason: "your project has been graded"}
}

func winner() Decision {
	return Decision{Kind: DecisionWinner, Reason: "your project won this campaign"}
}

func runnerUp() Decision {
	return Decision{Kind: DecisionRunnerUp, Reason: "your project placed as runner-up"}
}

func notSelected() Decision {
	return Decision{Kind: DecisionNotSelected, Reason: "your project was not selected"}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
