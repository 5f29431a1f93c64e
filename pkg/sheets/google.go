package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// OAuth scopes requested for the service account.
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

var (
	sheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	sheetIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{20,}$`)
)

// SpreadsheetID extracts the spreadsheet id from a docs URL. A bare id is
// accepted as is.
func SpreadsheetID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if m := sheetURLPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}

	if sheetIDPattern.MatchString(raw) {
		return raw, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidSheetURL, raw)
}

// api is the subset of the Sheets service used here.
type api interface {
	Titles(ctx context.Context, spreadsheetID string) ([]string, error)
	Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

type serviceAPI struct {
	svc *gsheets.Service
}

func (s serviceAPI) Titles(ctx context.Context, spreadsheetID string) ([]string, error) {
	doc, err := s.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(doc.Sheets))

	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}

	return titles, nil
}

func (s serviceAPI) Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	return resp.Values, nil
}

func (s serviceAPI) Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}

// Client talks to Google Sheets with a service account.
type Client struct {
	api api
}

// NewClient creates a Sheets client from service-account JSON. Extra options
// are passed to the API client, e.g. a custom endpoint.
func NewClient(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*Client, error) {
	all := append([]option.ClientOption{
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(Scopes...),
	}, opts...)

	svc, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("connect to google sheets: %w", err)
	}

	return &Client{api: serviceAPI{svc: svc}}, nil
}

// Open binds a worksheet of the spreadsheet behind url. The worksheet title
// is resolved lazily on first use.
func (c *Client) Open(url string, ws Worksheet) (*Sheet, error) {
	id, err := SpreadsheetID(url)
	if err != nil {
		return nil, err
	}

	return &Sheet{api: c.api, id: id, ws: ws}, nil
}

// Sheet is one worksheet. It implements Reader and Appender.
type Sheet struct {
	api   api
	id    string
	ws    Worksheet
	title string
}

// Title resolves and returns the worksheet title.
func (s *Sheet) Title(ctx context.Context) (string, error) {
	if s.title != "" {
		return s.title, nil
	}

	titles, err := s.api.Titles(ctx, s.id)
	if err != nil {
		return "", fmt.Errorf("open spreadsheet %s: %w", s.id, err)
	}

	title, err := s.ws.Resolve(titles)
	if err != nil {
		return "", fmt.Errorf("spreadsheet %s: %w", s.id, err)
	}

	s.title = title

	return title, nil
}

// ReadRecords implements Reader.
func (s *Sheet) ReadRecords(ctx context.Context) (Table, error) {
	title, err := s.Title(ctx)
	if err != nil {
		return Table{}, err
	}

	values, err := s.api.Values(ctx, s.id, quoteRange(title))
	if err != nil {
		return Table{}, fmt.Errorf("read worksheet %q: %w", title, err)
	}

	return TableFromGrid(stringGrid(values))
}

// AppendRows implements Appender. The API appends the whole batch in one call.
func (s *Sheet) AppendRows(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	title, err := s.Title(ctx)
	if err != nil {
		return err
	}

	values := make([][]any, len(rows))

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}

		values[i] = cells
	}

	err = s.api.Append(ctx, s.id, quoteRange(title), values)
	if err != nil {
		return fmt.Errorf("append to worksheet %q: %w", title, err)
	}

	return nil
}

func quoteRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func stringGrid(values [][]any) [][]string {
	grid := make([][]string, len(values))

	for i, row := range values {
		cells := make([]string, len(row))

		for j, v := range row {
			if v == nil {
				continue
			}

			cells[j] = fmt.Sprint(v)
		}

		grid[i] = cells
	}

	return grid
}
