package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"oseplatform/client"
	"oseplatform/models"
	"oseplatform/workflow"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const usage = `usage: notifyctl <command> [flags]

commands:
  login     open a session and print the token
  send      load, validate and send a batch of serials
  history   list past notifications
  resend    send a past notification again, optionally changing location, format or recipients

environment:
  NOTIFYCTL_API_URL, NOTIFYCTL_TOKEN, NOTIFYCTL_EMAIL, NOTIFYCTL_PASSWORD, NOTIFYCTL_OUT_DIR`

type settings struct {
	APIURL   string
	Token    string
	Email    string
	Password string
	OutDir   string
}

func loadSettings() settings {
	v := viper.New()
	v.SetEnvPrefix("NOTIFYCTL")
	v.AutomaticEnv()
	v.SetDefault("API_URL", "http://localhost:8080/api/v1")
	v.SetDefault("OUT_DIR", ".")
	return settings{
		APIURL:   v.GetString("API_URL"),
		Token:    v.GetString("TOKEN"),
		Email:    v.GetString("EMAIL"),
		Password: v.GetString("PASSWORD"),
		OutDir:   v.GetString("OUT_DIR"),
	}
}

func run(ctx context.Context, args []string, out io.Writer, logger *zap.Logger) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	s := loadSettings()
	api, err := client.New(client.Config{BaseURL: s.APIURL}, logger.Named("client"))
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	if cmd == "login" {
		return runLogin(ctx, api, s, rest, out)
	}
	if err := authenticate(ctx, api, s); err != nil {
		return err
	}

	switch cmd {
	case "send":
		return runSend(ctx, api, s, rest, out, logger)
	case "history":
		return runHistory(ctx, api, rest, out)
	case "resend":
		return runResend(ctx, api, s, rest, out, logger)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func authenticate(ctx context.Context, api *client.Client, s settings) error {
	if s.Token != "" {
		api.Session().SetToken(s.Token)
		return nil
	}
	if s.Email == "" || s.Password == "" {
		return errors.New("set NOTIFYCTL_TOKEN or NOTIFYCTL_EMAIL and NOTIFYCTL_PASSWORD")
	}
	_, err := api.Login(ctx, s.Email, s.Password)
	return err
}

func runLogin(ctx context.Context, api *client.Client, s settings, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", s.Email, "Operator email")
	password := fs.String("password", s.Password, "Operator password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, err := api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "logged in as %s until %s\n%s\n", resp.Operator.Name, resp.ExpiresAt.Format("2006-01-02 15:04"), resp.Token)
	return nil
}

func runSend(ctx context.Context, api *client.Client, s settings, args []string, out io.Writer, logger *zap.Logger) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	file := fs.String("file", "", "Text or CSV file with one serial per line")
	scan := fs.String("scan", "", "Comma-separated codes of any kind (smart scan)")
	pallets := fs.String("pallets", "", "Comma-separated pallet ids")
	cartons := fs.String("cartons", "", "Comma-separated carton ids")
	lots := fs.String("lots", "", "Comma-separated lot references")
	location := fs.String("location", "", "Location / lot reference of the batch")
	emailTo := fs.String("to", "", "Recipient email")
	cc := fs.String("cc", "", "Comma-separated CC emails")
	format := fs.String("format", string(models.FormatSeparated), "CSV format")
	customer := fs.String("customer", "", "Customer name")
	customerID := fs.String("customer-id", "", "Customer id")
	notes := fs.String("notes", "", "Notes for the email body")
	dryRun := fs.Bool("dry-run", false, "Validate and print the CSV without sending")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wf := workflow.New(api, workflow.DirDownloader{Dir: s.OutDir}, logger.Named("workflow"))

	if *file != "" {
		res, err := wf.LoadFile(*file)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "loaded %d serials from %s (%d duplicates)\n", res.Added, *file, res.Duplicates)
		for _, l := range res.Invalid {
			fmt.Fprintf(out, "  invalid: %q: %s\n", l.Input, l.Error)
		}
	}
	for _, batch := range []struct {
		scanType string
		codes    string
	}{
		{"", *scan},
		{models.ScanTypePallet, *pallets},
		{models.ScanTypeCarton, *cartons},
		{models.ScanTypeLot, *lots},
	} {
		codes := splitList(batch.codes)
		if len(codes) == 0 {
			continue
		}
		outcome, err := wf.ResolveCodes(ctx, batch.scanType, codes)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "resolved %d codes: %d found, %d failed, %d serials added (%d duplicates)\n",
			len(codes), outcome.Found, outcome.Failed, outcome.Added, outcome.Duplicates)
		for _, f := range outcome.Failures {
			fmt.Fprintf(out, "  %s: %s\n", f.Code, f.Reason)
		}
	}

	result, err := wf.Validate(ctx)
	if err != nil {
		return err
	}
	printValidation(out, result)

	wf.Configure(workflow.Settings{
		Location:     *location,
		CustomerID:   *customerID,
		CustomerName: *customer,
		Format:       models.CSVFormat(*format),
		EmailTo:      *emailTo,
		EmailCC:      splitList(*cc),
		Notes:        *notes,
	})

	if *dryRun {
		csv, err := wf.Preview()
		if err != nil {
			return err
		}
		fmt.Fprint(out, csv)
		return nil
	}
	return send(ctx, wf, out)
}

func runResend(ctx context.Context, api *client.Client, s settings, args []string, out io.Writer, logger *zap.Logger) error {
	fs := flag.NewFlagSet("resend", flag.ContinueOnError)
	id := fs.String("id", "", "History item id")
	location := fs.String("location", "", "Override the location / lot reference")
	format := fs.String("format", "", "Override the CSV format")
	emailTo := fs.String("to", "", "Override the recipient email")
	cc := fs.String("cc", "", "Override the comma-separated CC emails")
	notes := fs.String("notes", "", "Override the notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("--id required")
	}
	item, err := api.HistoryItem(ctx, *id)
	if err != nil {
		return err
	}
	wf := workflow.New(api, workflow.DirDownloader{Dir: s.OutDir}, logger.Named("workflow"))
	wf.Replay(*item)

	settings := wf.Settings()
	if *location != "" {
		settings.Location = *location
	}
	if *format != "" {
		settings.Format = models.CSVFormat(*format)
	}
	if *emailTo != "" {
		settings.EmailTo = *emailTo
	}
	if *cc != "" {
		settings.EmailCC = splitList(*cc)
	}
	if *notes != "" {
		settings.Notes = *notes
	}
	wf.Configure(settings)
	return send(ctx, wf, out)
}

func send(ctx context.Context, wf *workflow.Workflow, out io.Writer) error {
	resp, err := wf.Send(ctx)
	if resp == nil {
		return err
	}
	fmt.Fprintf(out, "notified %d devices, csv %s, email sent: %t\n", resp.NotifiedCount, resp.CSVFilename, resp.EmailSent)
	for _, s := range resp.FailedSerials {
		fmt.Fprintf(out, "  not in inventory: %s\n", s)
	}
	for _, e := range resp.Errors {
		fmt.Fprintf(out, "  warning: %s\n", e)
	}
	return err
}

func runHistory(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	page := fs.Int("page", 1, "Page number")
	limit := fs.Int("limit", 20, "Items per page")
	email := fs.String("email", "", "Filter by recipient")
	customer := fs.String("customer", "", "Filter by customer")
	location := fs.String("location", "", "Filter by location")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := api.History(ctx, models.HistoryFilter{Email: *email, Customer: *customer, Location: *location}, *page, *limit)
	if err != nil {
		return err
	}
	for _, it := range p.Items {
		fmt.Fprintf(out, "%s  %s  %-20s %-24s %4d  %s\n",
			it.ID, it.Date.Format("2006-01-02 15:04"), it.Location, it.EmailTo, it.DeviceCount, it.CSVFormat)
	}
	fmt.Fprintf(out, "page %d of %d (%d total)\n", *page, p.Pages, p.Total)
	return nil
}

func printValidation(out io.Writer, r *models.BulkValidationResult) {
	fmt.Fprintf(out, "validated %d: %d valid, %d invalid (%d already notified)\n", r.Total, r.Valid, r.Invalid, r.AlreadyNotified)
	for _, res := range r.Results {
		if !res.Valid {
			fmt.Fprintf(out, "  %s: %s\n", res.Serial.Identifier(), res.Error)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
