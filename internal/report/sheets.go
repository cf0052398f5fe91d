package report

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"jobfinder/internal/classify"
)

const defaultSheetName = "Job Finder Results"

// 1-based columns driving the conditional formatting rules.
const (
	colMatch   = 4
	colSponsor = 5
	colNotable = 6
	colLarge   = 7
)

var sheetColumns = []interface{}{
	"Date", "Job Title", "Company", "Match %", "H1B Sponsor",
	"MAANG", "Fortune 500", "Job URL", "Application Portal",
	"Key Skills Matched", "ATS Keywords", "Location", "Source", "Posted Date",
}

var (
	colorGreen  = &sheets.Color{Red: 0.57, Green: 0.82, Blue: 0.58}
	colorRed    = &sheets.Color{Red: 0.96, Green: 0.49, Blue: 0.49}
	colorYellow = &sheets.Color{Red: 1.0, Green: 0.93, Blue: 0.60}
	colorTeal   = &sheets.Color{Red: 0.40, Green: 0.80, Blue: 0.80}
)

// SheetsConfig locates the spreadsheet and the service-account credentials.
type SheetsConfig struct {
	// SpreadsheetID of the target sheet; empty auto-creates a new one.
	SpreadsheetID   string
	CredentialsPath string
	SheetName       string
}

// Sheets appends qualified postings to a Google Sheet with a header row,
// duplicate detection against rows already present, and conditional
// formatting on the boolean and match columns.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	sheetID       int64
	existing      map[string]bool
	now           func() time.Time
	log           *zap.Logger
}

// NewSheets authenticates with the service account and prepares the target
// worksheet: resolves the sheet, writes the header row when missing, and
// caches existing company|title keys for duplicate detection.
func NewSheets(ctx context.Context, cfg SheetsConfig, log *zap.Logger) (*Sheets, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SheetName == "" {
		cfg.SheetName = defaultSheetName
	}
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("google credentials path is not configured")
	}
	if _, err := os.Stat(cfg.CredentialsPath); err != nil {
		return nil, fmt.Errorf("google credentials file %q: %w", cfg.CredentialsPath, err)
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope, sheets.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	s := &Sheets{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		now:           time.Now,
		log:           log,
	}

	if s.spreadsheetID == "" {
		if err := s.create(ctx); err != nil {
			return nil, err
		}
	} else if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	s.existing = s.loadExistingKeys(ctx)

	return s, nil
}

// SpreadsheetID returns the spreadsheet being written, useful after
// auto-creation.
func (s *Sheets) SpreadsheetID() string { return s.spreadsheetID }

func (s *Sheets) create(ctx context.Context) error {
	created, err := s.svc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: s.sheetName},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: s.sheetName}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating spreadsheet: %w", err)
	}

	s.spreadsheetID = created.SpreadsheetId
	if len(created.Sheets) > 0 {
		s.sheetID = created.Sheets[0].Properties.SheetId
	}

	s.log.Info("created new spreadsheet", zap.String("spreadsheet_id", s.spreadsheetID))

	return s.writeHeader(ctx)
}

func (s *Sheets) ensure(ctx context.Context) error {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("cannot access spreadsheet %q: %w", s.spreadsheetID, err)
	}
	if len(meta.Sheets) == 0 {
		return fmt.Errorf("spreadsheet %q has no sheets", s.spreadsheetID)
	}

	target := meta.Sheets[0]
	for _, sheet := range meta.Sheets {
		if sheet.Properties.Title == s.sheetName {
			target = sheet
			break
		}
	}
	s.sheetID = target.Properties.SheetId
	s.sheetName = target.Properties.Title

	head, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.sheetName+"!A1:A1").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading header row: %w", err)
	}
	if len(head.Values) == 0 {
		return s.writeHeader(ctx)
	}

	return nil
}

func (s *Sheets) writeHeader(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.sheetName+"!A1", &sheets.ValueRange{
			Values: [][]interface{}{sheetColumns},
		}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:       s.sheetID,
					StartRowIndex: 0,
					EndRowIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:          &sheets.TextFormat{Bold: true},
						BackgroundColor:     &sheets.Color{Red: 0.2, Green: 0.4, Blue: 0.7},
						HorizontalAlignment: "CENTER",
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor,horizontalAlignment)",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        s.sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err = s.svc.Spreadsheets.
		BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("formatting header row: %w", err)
	}

	s.log.Info("header row written to sheet")

	return nil
}

// loadExistingKeys reads title/company pairs already on the sheet. Failing
// to read them is not fatal, it just disables duplicate detection for this
// run.
func (s *Sheets) loadExistingKeys(ctx context.Context) map[string]bool {
	keys := make(map[string]bool)

	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.sheetName+"!B2:C").
		Context(ctx).Do()
	if err != nil {
		s.log.Warn("reading existing rows failed", zap.Error(err))
		return keys
	}

	for _, row := range resp.Values {
		if len(row) < 2 {
			continue
		}
		title := strings.ToLower(strings.TrimSpace(fmt.Sprint(row[0])))
		company := strings.ToLower(strings.TrimSpace(fmt.Sprint(row[1])))
		keys[company+"|"+title] = true
	}

	return keys
}

// Log appends one row per result, skipping postings whose company|title is
// already on the sheet. Returns the number of rows written.
func (s *Sheets) Log(ctx context.Context, results classify.Results) (int, error) {
	rows := make([][]interface{}, 0, results.Len())
	skipped := 0

	for _, r := range results {
		key := r.Posting.Key()
		if s.existing[key] {
			s.log.Debug("duplicate skipped",
				zap.String("title", r.Posting.Title),
				zap.String("company", r.Posting.Company),
			)
			skipped++
			continue
		}
		rows = append(rows, rowForResult(s.now(), r))
		s.existing[key] = true
	}

	if len(rows) == 0 {
		s.log.Info("no new postings to log", zap.Int("duplicates_skipped", skipped))
		return 0, nil
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName+"!A1", &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("appending rows: %w", err)
	}

	s.log.Info("postings logged to sheet",
		zap.Int("rows", len(rows)),
		zap.Int("duplicates_skipped", skipped),
	)

	// Formatting is cosmetic, a failure only warns.
	if err := s.applyFormatting(ctx); err != nil {
		s.log.Warn("conditional formatting failed", zap.Error(err))
	}

	return len(rows), nil
}

func (s *Sheets) applyFormatting(ctx context.Context) error {
	requests := []*sheets.Request{
		colorRule(s.sheetID, colSponsor, "TRUE", colorGreen),
		colorRule(s.sheetID, colSponsor, "FALSE", colorRed),
		colorRule(s.sheetID, colNotable, "TRUE", colorGreen),
		colorRule(s.sheetID, colNotable, "FALSE", colorRed),
		colorRule(s.sheetID, colLarge, "TRUE", colorGreen),
		colorRule(s.sheetID, colLarge, "FALSE", colorRed),
		gradientRule(s.sheetID, colMatch),
	}

	_, err := s.svc.Spreadsheets.
		BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	return err
}

func rowForResult(now time.Time, r *classify.Result) []interface{} {
	return []interface{}{
		now.Format(timestampFormat),
		r.Posting.Title,
		r.Posting.Company,
		r.Score,
		sponsorshipCell(r.Sponsorship),
		boolCell(r.NotableEmployer),
		boolCell(r.LargeCompany),
		r.Posting.URL,
		r.Portal,
		strings.Join(firstN(r.MatchedSkills, 10), ", "),
		strings.Join(firstN(r.Suggestions, 10), ", "),
		r.Posting.Location,
		r.Posting.Source,
		r.Posting.Posted,
	}
}

func sponsorshipCell(s classify.Sponsorship) string {
	switch s {
	case classify.SponsorshipYes:
		return "TRUE"
	case classify.SponsorshipNo:
		return "FALSE"
	default:
		return "Unknown"
	}
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func colorRule(sheetID, col int64, match string, color *sheets.Color) *sheets.Request {
	return &sheets.Request{
		AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
			Rule: &sheets.ConditionalFormatRule{
				Ranges: []*sheets.GridRange{{
					SheetId:          sheetID,
					StartRowIndex:    1,
					StartColumnIndex: col - 1,
					EndColumnIndex:   col,
				}},
				BooleanRule: &sheets.BooleanRule{
					Condition: &sheets.BooleanCondition{
						Type:   "TEXT_EQ",
						Values: []*sheets.ConditionValue{{UserEnteredValue: match}},
					},
					Format: &sheets.CellFormat{BackgroundColor: color},
				},
			},
			Index: 0,
		},
	}
}

func gradientRule(sheetID, col int64) *sheets.Request {
	return &sheets.Request{
		AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
			Rule: &sheets.ConditionalFormatRule{
				Ranges: []*sheets.GridRange{{
					SheetId:          sheetID,
					StartRowIndex:    1,
					StartColumnIndex: col - 1,
					EndColumnIndex:   col,
				}},
				GradientRule: &sheets.GradientRule{
					Minpoint: &sheets.InterpolationPoint{Color: colorRed, Type: "NUMBER", Value: "0"},
					Midpoint: &sheets.InterpolationPoint{Color: colorYellow, Type: "NUMBER", Value: "72"},
					Maxpoint: &sheets.InterpolationPoint{Color: colorTeal, Type: "NUMBER", Value: "100"},
				},
			},
			Index: 0,
		},
	}
}
