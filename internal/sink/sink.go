package sink

import "context"

// Sink receives one finished questionnaire as a flat row. The header
// describes the row's columns and is identical for every record of the
// same catalog.
type Sink interface {
	AppendRecord(ctx context.Context, header []string, row []string) error
}
