package excel

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/xuri/excelize/v2"
)

const (
	participationsSheet = "Participations"
	submissionsSheet    = "Submissions"

	// exportPageSize bounds each store read while collecting a full campaign
	exportPageSize = 100
)

var (
	participationColumns = []string{
		"id", "actor_id", "status", "submission_status",
		"motivation", "experience", "portfolio",
		"submitted_at", "reviewed_at", "reviewed_by", "review_notes",
	}
	submissionColumns = []string{
		"id", "actor_id", "project_title", "status",
		"score", "grade", "position", "prize_amount",
		"demo_url", "github_url", "files_url",
		"submission_date", "graded_at", "graded_by", "feedback",
	}
)

// Service exports campaign participation and results to Excel workbooks
type Service struct {
	store store.Reader
}

// NewExcelService creates a new Excel service instance
func NewExcelService(st store.Reader) *Service {
	return &Service{store: st}
}

// ExportResult is a generated workbook
type ExportResult struct {
	Filename string
	Content  []byte
}

// ExportCampaign builds a workbook with one sheet of participations and one
// of submissions for a campaign.
func (s *Service) ExportCampaign(ctx context.Context, reviewer *lifecycle.Actor, campaignID string) (*ExportResult, error) {
	if !reviewer.CanReview() {
		return nil, lifecycle.NewError(lifecycle.CodeForbidden, "reviewer or admin role required")
	}

	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	participations, err := s.allParticipations(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.allSubmissions(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), participationsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(submissionsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := writeHeader(f, participationsSheet, participationColumns); err != nil {
		return nil, err
	}
	if err := writeHeader(f, submissionsSheet, submissionColumns); err != nil {
		return nil, err
	}

	styles, err := newStatusStyles(f)
	if err != nil {
		return nil, err
	}

	for i, p := range participations {
		row := i + 2
		values := []interface{}{
			p.ID, p.ActorID, string(p.Status), string(p.SubmissionStatus),
			p.Motivation, p.Experience, p.Portfolio,
			formatTime(&p.SubmittedAt), formatTime(p.ReviewedAt), p.ReviewedBy, p.ReviewNotes,
		}
		if err := writeRow(f, participationsSheet, row, values, styles[string(p.Status)]); err != nil {
			return nil, err
		}
	}

	for i, sub := range submissions {
		row := i + 2
		links := sub.ProjectLinks.Data()
		values := []interface{}{
			sub.ID, sub.ActorID, sub.ProjectTitle, string(sub.Status),
			floatCell(sub.Score), sub.Grade, intCell(sub.Position), floatCell(sub.PrizeAmount),
			links.DemoURL, links.GithubURL, links.FilesURL,
			formatTime(&sub.SubmissionDate), formatTime(sub.GradedAt), sub.GradedBy, sub.Feedback,
		}
		if err := writeRow(f, submissionsSheet, row, values, styles[string(sub.Status)]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return &ExportResult{
		Filename: fmt.Sprintf("campaign_%s_%d.xlsx", campaign.Slug, time.Now().Unix()),
		Content:  buf.Bytes(),
	}, nil
}

func (s *Service) allParticipations(ctx context.Context, campaignID string) ([]models.Participation, error) {
	var all []models.Participation
	for page := 1; ; page++ {
		batch, total, err := s.store.ListParticipations(ctx, store.ParticipationFilter{
			CampaignID: campaignID,
			PageRequest: utils.PageRequest{Page: page, PageSize: exportPageSize},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list participations: %w", err)
		}
		all = append(all, batch...)
		if len(batch) == 0 || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func (s *Service) allSubmissions(ctx context.Context, campaignID string) ([]models.Submission, error) {
	var all []models.Submission
	for page := 1; ; page++ {
		batch, total, err := s.store.ListSubmissions(ctx, store.SubmissionFilter{
			CampaignID: campaignID,
			PageRequest: utils.PageRequest{Page: page, PageSize: exportPageSize},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list submissions: %w", err)
		}
		all = append(all, batch...)
		if len(batch) == 0 || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err == nil {
		f.SetCellStyle(sheet, "A1", columnToLetter(len(columns))+"1", headerStyle)
	}

	for i, col := range columns {
		letter := columnToLetter(i + 1)
		width := 20.0
		switch col {
		case "id", "actor_id", "reviewed_by", "graded_by":
			width = 38.0
		case "motivation", "experience", "review_notes", "feedback":
			width = 50.0
		case "project_title", "portfolio", "demo_url", "github_url", "files_url":
			width = 30.0
		case "status", "submission_status", "score", "grade", "position":
			width = 15.0
		}
		f.SetColWidth(sheet, letter, letter, width)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	cell := "A" + strconv.Itoa(row)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	if style != 0 {
		f.SetCellStyle(sheet, cell, columnToLetter(len(values))+strconv.Itoa(row), style)
	}
	return nil
}

// newStatusStyles returns a fill style per status worth highlighting
func newStatusStyles(f *excelize.File) (map[string]int, error) {
	colors := map[string]string{
		string(models.ParticipationRejected): "D9D9D9", // Gray
		string(models.ParticipationPending):  "FFF2CC", // Pale yellow
		string(models.SubmissionWinner):      "FFC000", // Gold
		string(models.SubmissionRunnerUp):    "B4C6E7", // Light blue
		string(models.SubmissionNotSelected): "D9D9D9", // Gray
	}
	styles := make(map[string]int, len(colors))
	for status, color := range colors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create style: %w", err)
		}
		styles[status] = id
	}
	return styles, nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

// Helper function to convert column number to Excel column letter
func columnToLetter(col int) string {
	var result string
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
