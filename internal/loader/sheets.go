package loader

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"itemqueue/internal/item"
	"itemqueue/internal/logging"
)

// DefaultSheet is the tab created when the spreadsheet has none to offer.
const DefaultSheet = "Queue"

// SheetsClient is the slice of the spreadsheet API the sheets backend uses.
// Rows are addressed by sheet (tab) title.
type SheetsClient interface {
	SheetTitles(ctx context.Context) ([]string, error)
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
	ClearSheet(ctx context.Context, sheet string) error
	WriteRows(ctx context.Context, sheet string, rows [][]any) error
	AddSheet(ctx context.Context, sheet string) error
}

// Credentials is the local credentials artifact. It carries either an API
// key or a service-account key pair, and optionally the spreadsheet id.
type Credentials struct {
	APIKey        string `json:"api_key"`
	ClientEmail   string `json:"client_email"`
	PrivateKey    string `json:"private_key"`
	PrivateKeyID  string `json:"private_key_id"`
	TokenURI      string `json:"token_uri"`
	SpreadsheetID string `json:"spreadsheet_id"`
}

// ServiceAccount reports whether the credentials hold a key pair.
func (c Credentials) ServiceAccount() bool {
	return c.ClientEmail != "" && c.PrivateKey != ""
}

// LoadCredentials reads and checks a credentials file.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, newError("load credentials", path, ErrAuth, errors.New("credentials file not found"))
		}
		return Credentials{}, newError("load credentials", path, ErrAuth, err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, newError("load credentials", path, ErrAuth, fmt.Errorf("parse: %w", err))
	}
	switch {
	case creds.ServiceAccount():
		if block, _ := pem.Decode([]byte(creds.PrivateKey)); block == nil {
			return Credentials{}, newError("load credentials", path, ErrAuth, errors.New("private_key is not PEM encoded"))
		}
	case strings.TrimSpace(creds.APIKey) != "":
	default:
		return Credentials{}, newError("load credentials", path, ErrAuth, errors.New("need api_key or client_email and private_key"))
	}
	return creds, nil
}

// SheetsConfig configures the spreadsheet backend.
type SheetsConfig struct {
	CredentialsPath string
	// SpreadsheetID overrides the id carried by the credentials file.
	SpreadsheetID string
	// ActiveSheet names the tab backing the queue. Empty selects the first
	// tab, else DefaultSheet.
	ActiveSheet string
	Schema      item.Template
	Logger      *slog.Logger
}

type sheetsClientFactory func(ctx context.Context, creds Credentials, spreadsheetID string) (SheetsClient, error)

// Sheets stores templates as tabs of one spreadsheet. The first row of a tab
// holds the headers.
type Sheets struct {
	cfg           SheetsConfig
	client        SheetsClient
	newClient     sheetsClientFactory
	schema        schemaTracker
	logger        *slog.Logger
	titles        []string
	active        string
	spreadsheetID string
	readOnly      bool
	initialized   bool
}

// NewSheets builds a spreadsheet loader backed by the Google Sheets API.
// Credentials are read at Initialize.
func NewSheets(cfg SheetsConfig) *Sheets {
	s := newSheets(cfg)
	s.newClient = newGoogleSheetsClient
	return s
}

// NewSheetsWithClient builds a spreadsheet loader over an existing client.
// No credentials file is read.
func NewSheetsWithClient(cfg SheetsConfig, client SheetsClient) *Sheets {
	s := newSheets(cfg)
	s.client = client
	return s
}

func newSheets(cfg SheetsConfig) *Sheets {
	return &Sheets{
		cfg:           cfg,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		schema:        newSchemaTracker(cfg.Schema),
		logger:        logging.NewComponentLogger(cfg.Logger, "loader").With(slog.String(logging.FieldBackend, "sheets")),
	}
}

func (s *Sheets) Initialize(ctx context.Context) error {
	if s.initialized {
		return nil
	}
	if s.client == nil {
		creds, err := LoadCredentials(s.cfg.CredentialsPath)
		if err != nil {
			return err
		}
		spreadsheetID := strings.TrimSpace(s.cfg.SpreadsheetID)
		if spreadsheetID == "" {
			spreadsheetID = strings.TrimSpace(creds.SpreadsheetID)
		}
		if spreadsheetID == "" {
			return newError("initialize", s.cfg.CredentialsPath, ErrConfiguration, errors.New("spreadsheet id is not set"))
		}
		client, err := s.newClient(ctx, creds, spreadsheetID)
		if err != nil {
			return newError("initialize", spreadsheetID, ErrAuth, err)
		}
		s.client = client
		s.spreadsheetID = spreadsheetID
		s.readOnly = !creds.ServiceAccount()
	}

	if err := s.refreshTitles(ctx); err != nil {
		return err
	}
	s.active = strings.TrimSpace(s.cfg.ActiveSheet)
	switch {
	case s.active != "":
	case len(s.titles) > 0:
		s.active = s.titles[0]
	default:
		s.active = DefaultSheet
	}

	s.initialized = true
	s.logger.Info("sheets loader initialized",
		slog.String("active_sheet", s.active),
		slog.Int("sheets", len(s.titles)),
		slog.Bool("read_only", s.readOnly),
	)
	return nil
}

func (s *Sheets) ItemSchema() item.Template { return s.schema.schema() }

func (s *Sheets) HasTemplate(ctx context.Context, templateID string) (bool, error) {
	if err := s.Initialize(ctx); err != nil {
		return false, err
	}
	if err := s.refreshTitles(ctx); err != nil {
		return false, err
	}
	return slices.Contains(s.titles, templateID), nil
}

func (s *Sheets) LoadTemplate(ctx context.Context, templateID string) ([]item.Item, error) {
	exists, err := s.HasTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newError("load template", templateID, ErrNotFound, nil)
	}
	items, err := s.readSheet(ctx, templateID)
	if err != nil {
		return nil, err
	}
	s.schema.observe(items)
	s.logger.Debug("template loaded", slog.String(logging.FieldTemplateID, templateID), slog.Int("items", len(items)))
	return items, nil
}

func (s *Sheets) Templates(ctx context.Context) ([]string, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	if err := s.refreshTitles(ctx); err != nil {
		return nil, err
	}
	out := slices.Clone(s.titles)
	slices.Sort(out)
	return out, nil
}

func (s *Sheets) GetItems(ctx context.Context) ([]item.Item, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s.readActive(ctx)
}

func (s *Sheets) SaveItems(ctx context.Context, items []item.Item) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	return s.writeActive(ctx, items)
}

func (s *Sheets) AddItemFront(ctx context.Context, it item.Item) error { return addFront(ctx, s, it) }

func (s *Sheets) AddItemBack(ctx context.Context, it item.Item) error { return addBack(ctx, s, it) }

func (s *Sheets) RemoveItemFront(ctx context.Context) (item.Item, bool, error) {
	return removeFront(ctx, s)
}

func (s *Sheets) RemoveItemBack(ctx context.Context) (item.Item, bool, error) {
	return removeBack(ctx, s)
}

func (s *Sheets) Close() error { return nil }

func (s *Sheets) Backend() string { return "sheets" }

// Location returns the active sheet title.
func (s *Sheets) Location() string {
	if !s.initialized {
		return s.cfg.ActiveSheet
	}
	return s.active
}

func (s *Sheets) mutate(ctx context.Context, op string, fn func([]item.Item) ([]item.Item, bool)) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	if s.readOnly {
		return newError(op, s.active, ErrAuth, errors.New("api key credentials are read-only"))
	}
	items, err := s.readActive(ctx)
	if err != nil {
		return err
	}
	next, changed := fn(items)
	if !changed {
		return nil
	}
	if err := s.writeActive(ctx, next); err != nil {
		return err
	}
	s.logger.Debug("active sheet rewritten", slog.String(logging.FieldOperation, op), slog.Int("items", len(next)))
	return nil
}

func (s *Sheets) refreshTitles(ctx context.Context) error {
	titles, err := s.client.SheetTitles(ctx)
	if err != nil {
		return newError("list sheets", s.spreadsheetID, sheetsErrorKind(err), err)
	}
	s.titles = titles
	return nil
}

// readActive reads the active sheet; a sheet that does not exist yet reads as
// an empty list.
func (s *Sheets) readActive(ctx context.Context) ([]item.Item, error) {
	if !slices.Contains(s.titles, s.active) {
		if err := s.refreshTitles(ctx); err != nil {
			return nil, err
		}
		if !slices.Contains(s.titles, s.active) {
			return []item.Item{}, nil
		}
	}
	return s.readSheet(ctx, s.active)
}

func (s *Sheets) readSheet(ctx context.Context, sheet string) ([]item.Item, error) {
	rows, err := s.client.ReadRows(ctx, sheet)
	if err != nil {
		return nil, newError("read sheet", sheet, sheetsErrorKind(err), err)
	}
	if len(rows) == 0 {
		return []item.Item{}, nil
	}
	headers := rows[0]
	items := make([]item.Item, 0, len(rows)-1)
	for _, row := range rows[1:] {
		items = append(items, item.RowItem(headers, row))
	}
	return items, nil
}

func (s *Sheets) writeActive(ctx context.Context, items []item.Item) error {
	if s.readOnly {
		return newError("save items", s.active, ErrAuth, errors.New("api key credentials are read-only"))
	}
	if !slices.Contains(s.titles, s.active) {
		if err := s.client.AddSheet(ctx, s.active); err != nil {
			return newError("add sheet", s.active, sheetsErrorKind(err), err)
		}
		s.titles = append(s.titles, s.active)
	}
	if err := s.client.ClearSheet(ctx, s.active); err != nil {
		return newError("clear sheet", s.active, sheetsErrorKind(err), err)
	}
	rows := sheetRows(items)
	if len(rows) == 0 {
		return nil
	}
	if err := s.client.WriteRows(ctx, s.active, rows); err != nil {
		return newError("write sheet", s.active, sheetsErrorKind(err), err)
	}
	return nil
}

// sheetRows lays items out as a header row plus data rows. Primitive values
// are written as-is; objects and arrays are written as JSON text.
func sheetRows(items []item.Item) [][]any {
	headers := item.Headers(items)
	if len(headers) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(items)+1)
	headerRow := make([]any, len(headers))
	for i, header := range headers {
		headerRow[i] = header
	}
	rows = append(rows, headerRow)
	for _, it := range items {
		row := make([]any, len(headers))
		for i, header := range headers {
			value, _ := it.Get(header)
			row[i] = sheetCell(value)
		}
		rows = append(rows, row)
	}
	return rows
}

func sheetCell(value any) any {
	switch value.(type) {
	case nil:
		return ""
	case string, bool:
		return value
	}
	if kind, ok := item.KindOf(value); ok && kind == item.KindNumber {
		return value
	}
	return item.CellString(value)
}
