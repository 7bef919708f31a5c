package storage

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/thedittmer/intel-hub/internal/models"
)

// bookmarkColumns is the A1 column span of a bookmark row.
const bookmarkColumns = "A:F"

// Services holds authenticated Sheets and Drive clients.
type Services struct {
	Sheets *sheets.Service
	Drive  *drive.Service
	// ClientEmail is the service account address, used in error hints.
	ClientEmail string
}

// NewServices authenticates with a service account key.
func NewServices(ctx context.Context, credentialsJSON []byte) (*Services, error) {
	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON,
		sheets.SpreadsheetsScope,
		drive.DriveScope,
		drive.DriveFileScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := jwtConfig.Client(ctx)
	return NewServicesWithOptions(ctx, jwtConfig.Email, option.WithHTTPClient(client))
}

// NewServicesWithOptions builds the clients from explicit options.
func NewServicesWithOptions(ctx context.Context, clientEmail string, opts ...option.ClientOption) (*Services, error) {
	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets client: %w", err)
	}
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create drive client: %w", err)
	}
	return &Services{Sheets: sheetsService, Drive: driveService, ClientEmail: clientEmail}, nil
}

// SheetsTable is a Table backed by one sheet of a spreadsheet.
type SheetsTable struct {
	service       *sheets.Service
	SpreadsheetID string
	SheetName     string

	sheetID *int64
}

// NewSheetsTable returns a table over sheetName in spreadsheetID.
func NewSheetsTable(service *sheets.Service, spreadsheetID, sheetName string) *SheetsTable {
	if sheetName == "" {
		sheetName = "Bookmarks"
	}
	return &SheetsTable{service: service, SpreadsheetID: spreadsheetID, SheetName: sheetName}
}

func (t *SheetsTable) span() string {
	return t.SheetName + "!" + bookmarkColumns
}

func (t *SheetsTable) ReadAll(ctx context.Context) ([][]string, error) {
	resp, err := t.service.Spreadsheets.Values.Get(t.SpreadsheetID, t.span()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s: %w", t.SheetName, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *SheetsTable) Append(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}

	_, err := t.service.Spreadsheets.Values.Append(
		t.SpreadsheetID,
		t.span(),
		&sheets.ValueRange{Values: [][]interface{}{values}},
	).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to append row: %w", err)
	}
	return nil
}

func (t *SheetsTable) FindRow(ctx context.Context, column int, value string) (int, error) {
	rows, err := t.ReadAll(ctx)
	if err != nil {
		return -1, err
	}
	return findIn(rows, column, value), nil
}

func (t *SheetsTable) DeleteRow(ctx context.Context, position int) error {
	sheetID, err := t.lookupSheetID(ctx)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: int64(position),
						EndIndex:   int64(position + 1),
						// Sheet 0 and row 0 are valid values and must not be omitted.
						ForceSendFields: []string{"SheetId", "StartIndex"},
					},
				},
			},
		},
	}

	if _, err := t.service.Spreadsheets.BatchUpdate(t.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete row %d: %w", position, err)
	}
	return nil
}

// EnsureHeader writes the bookmark header into an empty sheet and freezes it.
func (t *SheetsTable) EnsureHeader(ctx context.Context) error {
	rows, err := t.ReadAll(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	header := make([]interface{}, len(models.BookmarkHeader))
	for i, h := range models.BookmarkHeader {
		header[i] = h
	}
	_, err = t.service.Spreadsheets.Values.Update(
		t.SpreadsheetID,
		t.SheetName+"!A1:F1",
		&sheets.ValueRange{Values: [][]interface{}{header}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to write header: %w", err)
	}

	sheetID, err := t.lookupSheetID(ctx)
	if err != nil {
		return err
	}

	freeze := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId: sheetID,
						GridProperties: &sheets.GridProperties{
							FrozenRowCount: 1,
						},
						ForceSendFields: []string{"SheetId"},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}
	if _, err := t.service.Spreadsheets.BatchUpdate(t.SpreadsheetID, freeze).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to freeze first row: %w", err)
	}
	return nil
}

func (t *SheetsTable) lookupSheetID(ctx context.Context) (int64, error) {
	if t.sheetID != nil {
		return *t.sheetID, nil
	}

	spreadsheet, err := t.service.Spreadsheets.Get(t.SpreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to get spreadsheet: %w", err)
	}
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil && sh.Properties.Title == t.SheetName {
			id := sh.Properties.SheetId
			t.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("spreadsheet has no sheet named %q", t.SheetName)
}

// CreateResult describes a spreadsheet created for bookmarks.
type CreateResult struct {
	SpreadsheetID string
	URL           string
}

// CreateSpreadsheet creates a new bookmark spreadsheet with a header row.
// When folderID is set the file is moved into that Drive folder, and when
// shareWith is set that address gets writer access.
func (s *Services) CreateSpreadsheet(ctx context.Context, sheetName, folderID, shareWith string) (CreateResult, error) {
	if sheetName == "" {
		sheetName = "Bookmarks"
	}

	if folderID != "" {
		if _, err := s.Drive.Files.Get(folderID).Fields("id").SupportsAllDrives(true).Context(ctx).Do(); err != nil {
			return CreateResult{}, fmt.Errorf("service account cannot access folder %s; share it with %s as Content Manager: %w",
				folderID, s.ClientEmail, err)
		}
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: fmt.Sprintf("Intel Hub Bookmarks - %s", time.Now().Format("2006-01-02")),
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetName}},
		},
	}

	created, err := s.Sheets.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return CreateResult{}, fmt.Errorf("unable to create spreadsheet: %w", err)
	}
	id := created.SpreadsheetId

	if folderID != "" {
		_, err = s.Drive.Files.Update(id, nil).AddParents(folderID).Fields("id, parents").SupportsAllDrives(true).Context(ctx).Do()
		if err != nil {
			return CreateResult{}, fmt.Errorf("unable to move spreadsheet to folder: %w", err)
		}
	}

	if shareWith != "" {
		permission := &drive.Permission{
			Type:         "user",
			Role:         "writer",
			EmailAddress: shareWith,
		}
		if _, err := s.Drive.Permissions.Create(id, permission).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
			return CreateResult{}, fmt.Errorf("unable to share spreadsheet with %s: %w", shareWith, err)
		}
	}

	table := NewSheetsTable(s.Sheets, id, sheetName)
	if err := table.EnsureHeader(ctx); err != nil {
		return CreateResult{}, err
	}

	return CreateResult{
		SpreadsheetID: id,
		URL:           fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", id),
	}, nil
}
