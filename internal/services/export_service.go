package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/analytics"
	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	responsesSheet    = "Responses"
	summarySheet      = "Summary"
	maxHeaderTextSize = 40
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportResponses writes one row per response, oldest first, with a score
// column per question, plus a summary sheet holding the form analytics.
func (s *exportService) ExportResponses(ctx context.Context, formID string) (*ExportFile, error) {
	oid, err := parseFormID(formID)
	if err != nil {
		return nil, err
	}

	form, err := s.repo.Forms().GetByID(ctx, oid)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	responses, err := s.repo.Responses().ListAllByForm(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to get form responses: %w", err)
	}

	s.logger.InfoContext(ctx, "Exporting responses", "form_id", formID, "responses", len(responses))

	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet
	if err := f.SetSheetName("Sheet1", responsesSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{"Submitted By", "Submitted At", "Score", "Max Score", "Percentage", "Time Spent (min)"}
	for i := range form.Questions {
		headers = append(headers, questionHeader(i, &form.Questions[i]))
	}
	headers = append(headers, "Feedback")

	if err := setRow(f, responsesSheet, 1, headers); err != nil {
		return nil, err
	}

	summaries := make([]models.FormResponse, 0, len(responses))
	for rowIndex, response := range responses {
		row := []interface{}{
			response.SubmittedBy,
			response.SubmittedAt.UTC().Format(time.RFC3339),
			response.Score,
			response.MaxScore,
			response.PercentageScore(),
			response.TimeSpentMinutes(),
		}
		earned := questionEarned(response.Breakdown)
		for i := range form.Questions {
			if points, ok := earned[form.Questions[i].ID]; ok {
				row = append(row, points)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, response.Feedback)

		if err := setRow(f, responsesSheet, rowIndex+2, row); err != nil {
			return nil, err
		}
		summaries = append(summaries, *response)
	}

	if err := writeSummarySheet(f, form, analytics.Summarize(summaries).Rounded()); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return &ExportFile{
		Filename:    exportFilename(form),
		ContentType: xlsxContentType,
		Content:     buf.Bytes(),
	}, nil
}

func writeSummarySheet(f *excelize.File, form *models.Form, summary analytics.Analytics) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Form", form.Title},
		{"Questions", len(form.Questions)},
		{"Total Points", form.TotalPoints()},
		{"Total Responses", summary.TotalResponses},
		{"Average Score (%)", summary.AverageScore},
		{"Average Time (min)", summary.AverageTime},
	}
	for i, row := range rows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// questionEarned maps question id to the points earned, from the stored
// breakdown. Responses stored without one yield an empty map.
func questionEarned(breakdown *models.ScoreBreakdown) map[string]float64 {
	earned := make(map[string]float64)
	if breakdown == nil {
		return earned
	}
	for _, q := range breakdown.Questions {
		earned[q.QuestionID] = q.Earned
	}
	return earned
}

func questionHeader(index int, q *models.Question) string {
	text := strings.TrimSpace(q.QuestionText)
	if runes := []rune(text); len(runes) > maxHeaderTextSize {
		text = string(runes[:maxHeaderTextSize]) + "..."
	}
	return fmt.Sprintf("Q%d (%s): %s", index+1, q.Type, text)
}

func exportFilename(form *models.Form) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.ToLower(form.Title), "-"), "-")
	if name == "" {
		name = "form"
	}
	return fmt.Sprintf("%s-responses-%s.xlsx", name, form.ID.Hex())
}
