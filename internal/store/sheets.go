package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/kopaska88/pengaduan-jokerbola/internal/config"
)

// SheetsStore persists complaint rows in a Google Sheets worksheet, the
// back office's working surface.
type SheetsStore struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsStore builds a Sheets-backed store from service-account
// credentials, either inline JSON or a file path.
func NewSheetsStore(ctx context.Context, cfg config.SheetsConfig) (*SheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("SHEETS_SPREADSHEET_ID is required for the sheets store backend")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse google credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, errors.New("GOOGLE_CREDENTIALS or GOOGLE_CREDENTIALS_FILE is required for the sheets store backend")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}

	return &SheetsStore{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// AppendRecord appends one row below the existing data.
func (s *SheetsStore) AppendRecord(ctx context.Context, row []string) error {
	cells := make([]any, len(row))
	for i, cell := range row {
		cells[i] = cell
	}
	valueRange := &sheets.ValueRange{Values: [][]any{cells}}
	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// ReadAllRecords returns every populated row, header included if the
// sheet carries one. Cells come back as raw strings.
func (s *SheetsStore) ReadAllRecords(ctx context.Context) ([][]string, error) {
	resp, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, s.sheetName).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		cells := make([]string, 0, len(raw))
		for _, cell := range raw {
			cells = append(cells, fmt.Sprint(cell))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// Ping fetches the spreadsheet metadata to verify reachability.
func (s *SheetsStore) Ping(ctx context.Context) error {
	_, err := s.service.Spreadsheets.
		Get(s.spreadsheetID).
		Fields("spreadsheetId").
		Context(ctx).
		Do()
	return err
}
