package storage

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"leadscout/models"
)

// sheetHeader is the column layout used on every worksheet.
var sheetHeader = []interface{}{
	"Name", "City", "Address", "Website",
	"Instagram Handle", "Instagram URL", "TikTok Handle", "TikTok URL",
	"Followers", "Source", "Date Added", "Notes",
}

// SheetsWriter mirrors saved leads into a Google Spreadsheet. Mirroring is
// best effort; callers log failures instead of aborting a run on them.
type SheetsWriter struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsWriter authenticates with a service-account credentials file and
// returns a writer bound to one spreadsheet.
func NewSheetsWriter(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsWriter, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &SheetsWriter{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Write appends leads to the first worksheet, creating the header row when
// the sheet is still empty. It reports how many rows were appended.
func (s *SheetsWriter) Write(leads []*models.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	if err := s.ensureHeader(); err != nil {
		return 0, err
	}

	values := make([][]interface{}, 0, len(leads))
	for _, l := range leads {
		values = append(values, leadRow(l))
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, "A1",
		&sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return 0, fmt.Errorf("sheets: append leads: %w", err)
	}
	return len(values), nil
}

// ExportToTab writes leads to a freshly created worksheet named after the
// query and source, and returns the tab title.
func (s *SheetsWriter) ExportToTab(leads []*models.Lead, query, source string) (string, error) {
	title := tabTitle(query, source)

	resp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Do()
	if err != nil {
		return "", fmt.Errorf("sheets: create tab %q: %w", title, err)
	}

	values := [][]interface{}{sheetHeader}
	for _, l := range leads {
		values = append(values, leadRow(l))
	}

	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID,
		fmt.Sprintf("'%s'!A1", title),
		&sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Do()
	if err != nil {
		return "", fmt.Errorf("sheets: write tab %q: %w", title, err)
	}

	// Formatting is cosmetic; the data is already on the tab.
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
		_ = s.formatHeader(resp.Replies[0].AddSheet.Properties.SheetId)
	}
	return title, nil
}

// formatHeader styles a tab's header row and sizes its columns to fit.
func (s *SheetsWriter) formatHeader(sheetID int64) error {
	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:       sheetID,
						StartRowIndex: 0,
						EndRowIndex:   1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							BackgroundColor: &sheets.Color{Red: 0.2, Green: 0.6, Blue: 0.86},
							TextFormat: &sheets.TextFormat{
								Bold:            true,
								ForegroundColor: &sheets.Color{Red: 1, Green: 1, Blue: 1},
							},
							HorizontalAlignment: "CENTER",
						},
					},
					Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
				},
			},
			{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "COLUMNS",
						StartIndex: 0,
						EndIndex:   int64(len(sheetHeader)),
					},
				},
			},
		},
	}).Do()
	return err
}

// Close satisfies the LeadWriter interface; the sheets service holds no
// resources that need releasing.
func (s *SheetsWriter) Close() error { return nil }

// ensureHeader writes the header row when the first worksheet is empty.
func (s *SheetsWriter) ensureHeader() error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, "A1:L1").Do()
	if err != nil {
		return fmt.Errorf("sheets: read header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, "A1",
		&sheets.ValueRange{Values: [][]interface{}{sheetHeader}}).
		ValueInputOption("USER_ENTERED").
		Do()
	if err != nil {
		return fmt.Errorf("sheets: write header: %w", err)
	}
	return nil
}

func leadRow(l *models.Lead) []interface{} {
	added := l.CreatedAt
	if added.IsZero() {
		added = time.Now()
	}
	return []interface{}{
		l.Name, l.City, l.Address, l.Website,
		l.InstagramHandle, l.InstagramURL, l.TikTokHandle, l.TikTokURL,
		l.FollowerCount, l.Source, added.Format("2006-01-02 15:04"), l.Notes,
	}
}

// tabTitle builds "query - source (HHMM)", dropping whichever labels are
// absent and keeping the whole title under the 100-character sheet limit.
func tabTitle(query, source string) string {
	stamp := time.Now().Format("1504")

	var title string
	switch {
	case query != "" && source != "":
		title = fmt.Sprintf("%s - %s (%s)", clipRunes(query, 30), source, stamp)
	case query != "":
		title = fmt.Sprintf("%s (%s)", clipRunes(query, 40), stamp)
	case source != "":
		title = fmt.Sprintf("%s (%s)", source, stamp)
	default:
		title = fmt.Sprintf("Export (%s)", stamp)
	}
	return clipRunes(title, 100)
}

func clipRunes(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		r = r[:max]
	}
	return string(r)
}
