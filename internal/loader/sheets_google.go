package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// googleSheetsClient implements SheetsClient over the Sheets v4 API.
type googleSheetsClient struct {
	svc           *sheets.Service
	spreadsheetID string
}

func newGoogleSheetsClient(ctx context.Context, creds Credentials, spreadsheetID string) (SheetsClient, error) {
	var opts []option.ClientOption
	if creds.ServiceAccount() {
		tokenURL := creds.TokenURI
		if tokenURL == "" {
			tokenURL = google.JWTTokenURL
		}
		conf := &jwt.Config{
			Email:        creds.ClientEmail,
			PrivateKey:   []byte(creds.PrivateKey),
			PrivateKeyID: creds.PrivateKeyID,
			Scopes:       []string{sheets.SpreadsheetsScope},
			TokenURL:     tokenURL,
		}
		// The token source outlives the initializing call.
		opts = append(opts, option.WithTokenSource(conf.TokenSource(context.WithoutCancel(ctx))))
	} else {
		opts = append(opts, option.WithAPIKey(creds.APIKey))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &googleSheetsClient{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *googleSheetsClient) SheetTitles(ctx context.Context) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}
	return titles, nil
}

func (c *googleSheetsClient) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheet(sheet)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if text, ok := cell.(string); ok {
				row[i] = text
			} else {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *googleSheetsClient) ClearSheet(ctx context.Context, sheet string) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoteSheet(sheet), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	return err
}

func (c *googleSheetsClient) WriteRows(ctx context.Context, sheet string, rows [][]any) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteSheet(sheet)+"!A1", &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (c *googleSheetsClient) AddSheet(ctx context.Context, sheet string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheet},
			},
		}},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return err
}

// quoteSheet renders a sheet title as an A1 range reference.
func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// sheetsErrorKind classifies an API failure by HTTP status.
func sheetsErrorKind(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusNotFound:
			return ErrNotFound
		}
	}
	return ErrIO
}
