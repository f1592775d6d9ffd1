package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/model"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink appends rows to the shared recruitment spreadsheet.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
}

// NewSheetsSink returns an unconfigured sink, whose appends fail with ErrSinkNotConfigured,
// when no spreadsheet id is set. The chain then falls back to the next sink.
func NewSheetsSink(ctx context.Context, cfg *config.SheetsConfig, opts ...option.ClientOption) (*SheetsSink, error) {
	s := &SheetsSink{spreadsheetID: cfg.SpreadsheetID, writeRange: cfg.Range}
	if cfg.SpreadsheetID == "" {
		slog.Warn("spreadsheet id is not set. The sheets sink is disabled.")
		return s, nil
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return s, fmt.Errorf("failed to create sheets service: %w", err)
	}
	s.svc = svc

	return s, nil
}

func (s *SheetsSink) Name() string {
	return "sheets"
}

func (s *SheetsSink) Append(ctx context.Context, app *model.ScoredApplication) error {
	if s.svc == nil {
		return ErrSinkNotConfigured
	}
	row := app.Row()
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.writeRange,
		&sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to spreadsheet: %w", err)
	}

	return nil
}
