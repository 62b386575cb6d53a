package sink

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink appends finished questionnaires to a Google Sheet. The
// header row is written once, on the first record into an empty sheet.
type SheetsSink struct {
	svc       *sheets.Service
	sheetID   string
	sheetName string
}

// NewSheetsSink builds a sink from a service-account credentials file
func NewSheetsSink(ctx context.Context, credentialsFile, sheetID, sheetName string) (*SheetsSink, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &SheetsSink{svc: svc, sheetID: sheetID, sheetName: sheetName}, nil
}

func (s *SheetsSink) AppendRecord(ctx context.Context, header []string, row []string) error {
	empty, err := s.sheetEmpty(ctx)
	if err != nil {
		return fmt.Errorf("check sheet header: %w", err)
	}
	if empty {
		if err := s.appendRow(ctx, header); err != nil {
			return fmt.Errorf("write sheet header: %w", err)
		}
	}
	if err := s.appendRow(ctx, row); err != nil {
		return fmt.Errorf("append sheet row: %w", err)
	}
	return nil
}

func (s *SheetsSink) sheetEmpty(ctx context.Context) (bool, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.sheetID, s.sheetName+"!A1:A1").
		Context(ctx).Do()
	if err != nil {
		return false, err
	}
	return len(resp.Values) == 0, nil
}

func (s *SheetsSink) appendRow(ctx context.Context, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{values}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.sheetID, s.sheetName+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return err
}
