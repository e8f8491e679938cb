package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/audreymhoughton/lead-lab/internal/config"
	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/logging"
	"github.com/audreymhoughton/lead-lab/internal/secrets"
)

// Live talks to the configured Google spreadsheet. Rows are keyed by the Key
// column; upsert is find-row-by-key-or-append.
type Live struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	worksheet     string
}

func NewLive(ctx context.Context, settings config.Settings) (*Live, error) {
	if settings.SpreadsheetID == "" {
		return nil, fmt.Errorf("GOOGLE_SHEETS_SPREADSHEET_ID is not set")
	}

	creds, err := secrets.GoogleCredentials(settings.ServiceAccountJSON)
	if err != nil {
		return nil, err
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Live{
		svc:           svc,
		spreadsheetID: settings.SpreadsheetID,
		worksheet:     settings.WorksheetName,
	}, nil
}

func (l *Live) FetchAll(ctx context.Context) (map[string]domain.Lead, error) {
	out := map[string]domain.Lead{}

	rng := fmt.Sprintf("%s!A1:%s", l.worksheet, colLetter(len(domain.Columns)))
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", l.worksheet, err)
	}
	if len(resp.Values) == 0 {
		return out, nil
	}

	header := toStrings(resp.Values[0])
	for _, rec := range resp.Values[1:] {
		vals := toStrings(rec)
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(vals) {
				row[h] = vals[i]
			}
		}
		lead := domain.FromRowMap(row)
		if lead.Key != "" {
			out[lead.Key] = lead
		}
	}
	return out, nil
}

// Upsert finds each lead's row by key, overwrites it in one batch update, and
// appends the rest in one append call. Any API error aborts the whole commit
// upstream; there is no per-row retry.
func (l *Live) Upsert(ctx context.Context, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	rowByKey, nextRow, err := l.keyIndex(ctx)
	if err != nil {
		return err
	}

	var updates []*sheetsapi.ValueRange
	var appends [][]any
	for _, lead := range leads {
		values := toAnys(lead.Record())
		if rowNum, ok := rowByKey[lead.Key]; ok {
			updates = append(updates, &sheetsapi.ValueRange{
				Range:  fmt.Sprintf("%s!A%d:%s%d", l.worksheet, rowNum, colLetter(len(domain.Columns)), rowNum),
				Values: [][]any{values},
			})
		} else {
			appends = append(appends, values)
		}
	}

	if len(updates) > 0 {
		req := &sheetsapi.BatchUpdateValuesRequest{
			ValueInputOption: "RAW",
			Data:             updates,
		}
		if _, err := l.svc.Spreadsheets.Values.BatchUpdate(l.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("update rows: %w", err)
		}
	}
	if len(appends) > 0 {
		vr := &sheetsapi.ValueRange{Values: appends}
		_, err := l.svc.Spreadsheets.Values.
			Append(l.spreadsheetID, fmt.Sprintf("%s!A%d", l.worksheet, nextRow), vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("append rows: %w", err)
		}
	}

	logging.Info().
		Int("updated", len(updates)).
		Int("appended", len(appends)).
		Str("worksheet", l.worksheet).
		Msg("exported rows to Google Sheets")
	return nil
}

// keyIndex maps Key -> 1-based sheet row, plus the first free row.
func (l *Live) keyIndex(ctx context.Context) (map[string]int64, int64, error) {
	rng := fmt.Sprintf("%s!A1:%s", l.worksheet, colLetter(len(domain.Columns)))
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("index %s: %w", l.worksheet, err)
	}

	index := map[string]int64{}
	if len(resp.Values) == 0 {
		return index, 2, nil
	}

	header := toStrings(resp.Values[0])
	keyCol := -1
	for i, h := range header {
		if h == "Key" {
			keyCol = i
		}
	}

	for i, rec := range resp.Values[1:] {
		vals := toStrings(rec)
		if keyCol >= 0 && keyCol < len(vals) && vals[keyCol] != "" {
			index[vals[keyCol]] = int64(i + 2)
		}
	}
	return index, int64(len(resp.Values) + 1), nil
}

// SetupSchema ensures the worksheet exists with the canonical header, a
// frozen header row, and dropdown validation on Status and Category.
func (l *Live) SetupSchema(ctx context.Context) error {
	sheetID, err := l.ensureWorksheet(ctx, l.worksheet)
	if err != nil {
		return err
	}

	headerVR := &sheetsapi.ValueRange{Values: [][]any{toAnys(domain.Columns)}}
	_, err = l.svc.Spreadsheets.Values.
		Update(l.spreadsheetID, fmt.Sprintf("%s!A1", l.worksheet), headerVR).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var reqs []*sheetsapi.Request

	reqs = append(reqs, &sheetsapi.Request{
		UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
			Properties: &sheetsapi.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheetsapi.GridProperties{FrozenRowCount: 1},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	})

	reqs = append(reqs, dropdownRequest(sheetID, columnIndex("Status"), statusValues()))
	reqs = append(reqs, dropdownRequest(sheetID, columnIndex("Category"), categoryValues()))

	_, err = l.svc.Spreadsheets.BatchUpdate(l.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	logging.Info().Str("worksheet", l.worksheet).Msg("sheet schema configured")
	return nil
}

// EnsureBucketsTab creates/refreshes the Buckets tab with summary formulas
// over the Leads sheet.
func (l *Live) EnsureBucketsTab(ctx context.Context) error {
	if _, err := l.ensureWorksheet(ctx, "Buckets"); err != nil {
		return err
	}

	catCol := colLetter(columnIndex("Category") + 1)
	statusCol := colLetter(columnIndex("Status") + 1)

	vr := &sheetsapi.ValueRange{Values: [][]any{
		{"Counts by Category", "", "", "Counts by Status"},
		{"Category", "Count", "", "Status", "Count"},
		{
			fmt.Sprintf("=UNIQUE(%s!%s2:%s)", l.worksheet, catCol, catCol),
			fmt.Sprintf("=ARRAYFORMULA(COUNTIF(%s!%s2:%s, A3:A))", l.worksheet, catCol, catCol),
			"",
			fmt.Sprintf("=UNIQUE(%s!%s2:%s)", l.worksheet, statusCol, statusCol),
			fmt.Sprintf("=ARRAYFORMULA(COUNTIF(%s!%s2:%s, D3:D))", l.worksheet, statusCol, statusCol),
		},
	}}

	_, err := l.svc.Spreadsheets.Values.
		Update(l.spreadsheetID, "Buckets!A1", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("buckets tab: %w", err)
	}

	logging.Info().Msg("buckets tab ensured")
	return nil
}

func (l *Live) ensureWorksheet(ctx context.Context, title string) (int64, error) {
	ss, err := l.svc.Spreadsheets.Get(l.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("open spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, nil
		}
	}

	resp, err := l.svc.Spreadsheets.BatchUpdate(l.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("create worksheet %q: %w", title, err)
	}

	props := resp.Replies[0].AddSheet.Properties
	logging.Info().Str("worksheet", title).Msg("created worksheet")
	return props.SheetId, nil
}

func dropdownRequest(sheetID int64, colIdx int, values []*sheetsapi.ConditionValue) *sheetsapi.Request {
	return &sheetsapi.Request{
		SetDataValidation: &sheetsapi.SetDataValidationRequest{
			Range: &sheetsapi.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    1,
				StartColumnIndex: int64(colIdx),
				EndColumnIndex:   int64(colIdx + 1),
			},
			Rule: &sheetsapi.DataValidationRule{
				Condition: &sheetsapi.BooleanCondition{
					Type:   "ONE_OF_LIST",
					Values: values,
				},
				ShowCustomUi: true,
				Strict:       false,
			},
		},
	}
}

func statusValues() []*sheetsapi.ConditionValue {
	var out []*sheetsapi.ConditionValue
	for _, s := range domain.Statuses() {
		out = append(out, &sheetsapi.ConditionValue{UserEnteredValue: string(s)})
	}
	return out
}

func categoryValues() []*sheetsapi.ConditionValue {
	var out []*sheetsapi.ConditionValue
	for _, c := range domain.Categories() {
		out = append(out, &sheetsapi.ConditionValue{UserEnteredValue: string(c)})
	}
	return out
}

func columnIndex(name string) int {
	for i, c := range domain.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// colLetter converts a 1-based column count to an A1 column label.
func colLetter(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}
	return s
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toAnys(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
