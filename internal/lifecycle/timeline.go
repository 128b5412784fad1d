package lifecycle

import (
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

// Timeline issue severities. Errors block a save; warnings are surfaced only.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// TimelinePolicy tunes which ordering rules are hard failures.
type TimelinePolicy struct {
	// StrictWindowOrdering makes "submission opens before registration
	// closes" an error instead of a warning.
	StrictWindowOrdering bool
}

// ValidateTimeline checks every date invariant of a campaign and returns all
// violations at once, in a stable order.
func ValidateTimeline(c *models.Campaign, policy TimelinePolicy) []models.TimelineIssue {
	var issues []models.TimelineIssue
	add := func(field, code, severity, msg string) {
		issues = append(issues, models.TimelineIssue{Field: field, Code: code, Message: msg, Severity: severity})
	}

	if c.CampaignType != "" && !c.CampaignType.Valid() {
		add("campaign_type", "INVALID_CAMPAIGN_TYPE", SeverityError, "campaign type must be custom or mini")
	}

	if c.StartDate.IsZero() {
		add("start_date", "START_DATE_REQUIRED", SeverityError, "start date is required")
	}
	if c.EndDate.IsZero() {
		add("end_date", "END_DATE_REQUIRED", SeverityError, "end date is required")
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && !c.StartDate.Before(c.EndDate) {
		add("end_date", "END_NOT_AFTER_START", SeverityError, "end date must be after start date")
	}

	optional := []struct {
		field string
		value *time.Time
	}{
		{"registration_start_date", c.RegistrationStartDate},
		{"registration_end_date", c.RegistrationEndDate},
		{"submission_start_date", c.SubmissionStartDate},
		{"submission_end_date", c.SubmissionEndDate},
		{"results_announcement_date", c.ResultsAnnouncementDate},
		{"award_distribution_date", c.AwardDistributionDate},
	}
	for _, o := range optional {
		if o.value != nil && o.value.IsZero() {
			add(o.field, "INVALID_DATE", SeverityError, "date is not valid")
		}
	}

	regStart, regEnd := validDate(c.RegistrationStartDate), validDate(c.RegistrationEndDate)
	subStart, subEnd := validDate(c.SubmissionStartDate), validDate(c.SubmissionEndDate)
	results, award := validDate(c.ResultsAnnouncementDate), validDate(c.AwardDistributionDate)
	end := validDate(&c.EndDate)

	if regStart != nil && regEnd != nil && !regStart.Before(*regEnd) {
		add("registration_end_date", "REGISTRATION_END_NOT_AFTER_START", SeverityError,
			"registration end must be after registration start")
	}
	if subStart != nil && subEnd != nil && !subStart.Before(*subEnd) {
		add("submission_end_date", "SUBMISSION_END_NOT_AFTER_START", SeverityError,
			"submission end must be after submission start")
	}

	if end != nil {
		if regEnd != nil && regEnd.After(*end) {
			add("registration_end_date", "REGISTRATION_AFTER_CAMPAIGN_END", SeverityError,
				"registration must close by the campaign end date")
		} else if regEnd == nil && regStart != nil && regStart.After(*end) {
			add("registration_start_date", "REGISTRATION_AFTER_CAMPAIGN_END", SeverityError,
				"registration must open before the campaign end date")
		}
		if subEnd != nil && subEnd.After(*end) {
			add("submission_end_date", "SUBMISSION_AFTER_CAMPAIGN_END", SeverityWarning,
				"submissions close after the campaign ends")
		}
	}

	if subStart != nil && regEnd != nil && subStart.Before(*regEnd) {
		severity := SeverityWarning
		if policy.StrictWindowOrdering {
			severity = SeverityError
		}
		add("submission_start_date", "SUBMISSION_BEFORE_REGISTRATION_END", severity,
			"submissions open before registration closes")
	}

	if results != nil && subEnd != nil && results.Before(*subEnd) {
		add("results_announcement_date", "RESULTS_BEFORE_SUBMISSION_END", SeverityWarning,
			"results are announced before submissions close")
	}
	if award != nil && results != nil && award.Before(*results) {
		add("award_distribution_date", "AWARD_BEFORE_RESULTS", SeverityWarning,
			"awards are distributed before results are announced")
	}

	return issues
}

// TimelineErrors returns a validation error carrying every blocking issue, or
// nil. Fields joins the messages of a field that breaks several rules.
func TimelineErrors(issues []models.TimelineIssue) error {
	var blocking []models.TimelineIssue
	fields := map[string]string{}
	for _, issue := range issues {
		if issue.Severity != SeverityError {
			continue
		}
		blocking = append(blocking, issue)
		if prev, seen := fields[issue.Field]; seen {
			fields[issue.Field] = prev + "; " + issue.Message
		} else {
			fields[issue.Field] = issue.Message
		}
	}
	if len(blocking) == 0 {
		return nil
	}
	err := validationError(fields)
	err.Issues = blocking
	return err
}

// TimelineWarnings filters issues down to the non-blocking ones.
func TimelineWarnings(issues []models.TimelineIssue) []models.TimelineIssue {
	var warnings []models.TimelineIssue
	for _, issue := range issues {
		if issue.Severity == SeverityWarning {
			warnings = append(warnings, issue)
		}
	}
	return warnings
}

func validDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}
