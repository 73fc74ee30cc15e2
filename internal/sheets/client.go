// Package sheets is the Google Sheets and Drive backend of the bot: it
// appends and flags game rows, reads and extends the name rosters, renders
// the stats tables and provisions a workbook per guild.
//
// A pod-stats workbook has three worksheets, identified by position:
// the stats tables, the raw game data, and the validation lists that hold
// the rosters.
package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client holds authenticated Sheets and Drive services.
type Client struct {
	sheets     *gsheets.Service
	drive      *drive.Service
	templateID string
}

// NewClient authenticates with a service-account key file.
func NewClient(ctx context.Context, credentialsFile, templateID string) (*Client, error) {
	key, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, eris.Wrapf(err, "read credentials %s", credentialsFile)
	}
	conf, err := google.JWTConfigFromJSON(key, gsheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return nil, eris.Wrap(err, "parse service account key")
	}
	return NewClientWithOptions(ctx, templateID, option.WithHTTPClient(conf.Client(ctx)))
}

// NewClientWithOptions builds a client from explicit API options, such as a
// custom endpoint in tests.
func NewClientWithOptions(ctx context.Context, templateID string, opts ...option.ClientOption) (*Client, error) {
	ss, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "create sheets service")
	}
	ds, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "create drive service")
	}
	return &Client{sheets: ss, drive: ds, templateID: templateID}, nil
}

// Open resolves the worksheet titles of a workbook.
func (c *Client) Open(ctx context.Context, spreadsheetID string) (*Workbook, error) {
	meta, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrapf(err, "get spreadsheet %s", spreadsheetID)
	}
	if len(meta.Sheets) < 3 {
		return nil, eris.Errorf("spreadsheet %s has %d worksheets, want 3", spreadsheetID, len(meta.Sheets))
	}
	return &Workbook{
		values:      c.sheets.Spreadsheets.Values,
		id:          spreadsheetID,
		tables:      meta.Sheets[0].Properties.Title,
		rawData:     meta.Sheets[1].Properties.Title,
		validations: meta.Sheets[2].Properties.Title,
	}, nil
}

// Provision copies the template workbook for a guild, shares it with
// anyone holding the link and returns the copy's id.
func (c *Client) Provision(ctx context.Context, guildName string) (string, error) {
	copied, err := c.drive.Files.Copy(c.templateID, &drive.File{
		Name: fmt.Sprintf("Pod Stats for: %s", guildName),
	}).Context(ctx).Do()
	if err != nil {
		return "", eris.Wrap(err, "copy template spreadsheet")
	}
	_, err = c.drive.Permissions.Create(copied.Id, &drive.Permission{
		Type: "anyone",
		Role: "writer",
	}).Context(ctx).Do()
	if err != nil {
		return copied.Id, eris.Wrapf(err, "share spreadsheet %s", copied.Id)
	}
	return copied.Id, nil
}

// EditLink is the link handed out after setup.
func EditLink(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", spreadsheetID)
}

// ShareLink is the link posted by /link.
func ShareLink(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/?usp=sharing", spreadsheetID)
}
