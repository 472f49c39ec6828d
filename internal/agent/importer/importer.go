// Package importer loads agent records from CSV exports of the legacy capture sheets.
//
// Every row goes through the agent service, so imported records pass the same identity
// and profile checks as records captured through the HTTP API. Rows that fail validation
// are reported with their line number and field errors; the import carries on with the
// next row.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"fieldforce/internal/agent/models"
	"fieldforce/internal/agent/service"
	"fieldforce/internal/platform/metrics"
	id "fieldforce/pkg/domain"
	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/validation"
)

// Service is the subset of the agent service the importer drives.
type Service interface {
	CreateAgent(ctx context.Context, cmd *service.AgentCommand) (*models.Agent, error)
	UpdateAgent(ctx context.Context, agentID id.AgentID, cmd *service.AgentCommand) (*models.Agent, error)
	FindAgentByIdentity(ctx context.Context, t identity.Type, number string) (*models.Agent, error)
}

// Action records what happened to a row.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionFailed  Action = "failed"
)

// RowResult is the outcome of one data row. Line is the 1-based line in the file.
type RowResult struct {
	Line    int
	Action  Action
	AgentID id.AgentID
	Error   string
	Fields  map[string]string
}

// Report summarises an import.
type Report struct {
	Rows    []RowResult
	Created int
	Updated int
	Failed  int
}

func (r *Report) add(row RowResult) {
	r.Rows = append(r.Rows, row)
	switch row.Action {
	case ActionCreated:
		r.Created++
	case ActionUpdated:
		r.Updated++
	case ActionFailed:
		r.Failed++
	}
}

// Importer reads CSV rows into agent commands.
type Importer struct {
	svc            Service
	metrics        *metrics.Metrics
	logger         *slog.Logger
	updateExisting bool
	maxRows        int
}

type Option func(*Importer)

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) { i.logger = logger }
}

// WithUpdateExisting replaces the profile of an agent whose identity number is already
// on file instead of reporting the row as a conflict.
func WithUpdateExisting(update bool) Option {
	return func(i *Importer) { i.updateExisting = update }
}

// WithMaxRows caps the number of data rows; zero or less keeps the default.
func WithMaxRows(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.maxRows = n
		}
	}
}

func New(svc Service, opts ...Option) *Importer {
	i := &Importer{
		svc:     svc,
		logger:  slog.New(slog.DiscardHandler),
		maxRows: validation.MaxImportRows,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import reads a header row followed by data rows from r.
// It fails without importing anything when the header is unusable, and stops early
// when ctx is cancelled, the row cap is exceeded, or the service fails for a reason
// other than the row's own data. The report covers every row handled so far.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for rows := 0; ; rows++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if rows >= i.maxRows {
			return report, dErrors.New(dErrors.CodeBadRequest,
				fmt.Sprintf("csv file exceeds %d rows", i.maxRows))
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) || !errors.Is(parseErr.Err, csv.ErrFieldCount) {
				return report, fmt.Errorf("read csv: %w", err)
			}
			i.record(ctx, report, RowResult{
				Line:   parseErr.StartLine,
				Action: ActionFailed,
				Error:  fmt.Sprintf("expected %d columns, got %d", len(header), len(record)),
			})
			continue
		}

		line, _ := reader.FieldPos(0)
		row, err := i.importRow(ctx, cols.command(record))
		row.Line = line
		if err != nil {
			return report, fmt.Errorf("import line %d: %w", line, err)
		}
		i.record(ctx, report, row)
	}
}

// importRow returns an error only for failures unrelated to the row's content.
func (i *Importer) importRow(ctx context.Context, cmd *service.AgentCommand) (RowResult, error) {
	agent, err := i.svc.CreateAgent(ctx, cmd)
	if err == nil {
		return RowResult{Action: ActionCreated, AgentID: agent.ID}, nil
	}
	if i.updateExisting && dErrors.HasCode(err, dErrors.CodeConflict) {
		return i.updateRow(ctx, cmd)
	}
	return rowFailure(err)
}

func (i *Importer) updateRow(ctx context.Context, cmd *service.AgentCommand) (RowResult, error) {
	t := identity.Type(cmd.IDType)
	number := cmd.SAIDNumber
	if t == identity.TypePassport {
		number = cmd.PassportNumber
	}
	existing, err := i.svc.FindAgentByIdentity(ctx, t, number)
	if err != nil {
		return rowFailure(err)
	}
	agent, err := i.svc.UpdateAgent(ctx, existing.ID, cmd)
	if err != nil {
		return rowFailure(err)
	}
	return RowResult{Action: ActionUpdated, AgentID: agent.ID}, nil
}

func rowFailure(err error) (RowResult, error) {
	var de *dErrors.Error
	if !errors.As(err, &de) || de.Code == dErrors.CodeInternal || de.Code == dErrors.CodeUnavailable {
		return RowResult{}, err
	}
	return RowResult{Action: ActionFailed, Error: de.Message, Fields: de.Fields}, nil
}

func (i *Importer) record(ctx context.Context, report *Report, row RowResult) {
	report.add(row)
	if i.metrics != nil {
		i.metrics.RecordImportRow(row.Action != ActionFailed)
	}
	if row.Action == ActionFailed {
		i.logger.WarnContext(ctx, "import row rejected", "line", row.Line, "error", row.Error)
		return
	}
	i.logger.DebugContext(ctx, "import row applied", "line", row.Line, "action", string(row.Action), "agent_id", row.AgentID)
}

// columnSetters maps a canonical column name to the command field it fills.
var columnSetters = map[string]func(*service.AgentCommand, string){
	"first_name":     func(c *service.AgentCommand, v string) { c.FirstName = v },
	"surname":        func(c *service.AgentCommand, v string) { c.Surname = v },
	"initials":       func(c *service.AgentCommand, v string) { c.Initials = v },
	"gender":         func(c *service.AgentCommand, v string) { c.Gender = v },
	"date_of_birth":  func(c *service.AgentCommand, v string) { c.DateOfBirth = v },
	"nationality":    func(c *service.AgentCommand, v string) { c.Nationality = v },
	"id_type":        func(c *service.AgentCommand, v string) { c.IDType = v },
	"sa_id_no":       func(c *service.AgentCommand, v string) { c.SAIDNumber = v },
	"passport_no":    func(c *service.AgentCommand, v string) { c.PassportNumber = v },
	"email":          func(c *service.AgentCommand, v string) { c.Email = v },
	"phone":          func(c *service.AgentCommand, v string) { c.Phone = v },
	"address_line1":  func(c *service.AgentCommand, v string) { c.Address.Line1 = v },
	"address_line2":  func(c *service.AgentCommand, v string) { c.Address.Line2 = v },
	"city":           func(c *service.AgentCommand, v string) { c.Address.City = v },
	"province":       func(c *service.AgentCommand, v string) { c.Address.Province = v },
	"postal_code":    func(c *service.AgentCommand, v string) { c.Address.PostalCode = v },
	"bank_name":      func(c *service.AgentCommand, v string) { c.Bank.BankName = v },
	"account_holder": func(c *service.AgentCommand, v string) { c.Bank.AccountHolder = v },
	"account_number": func(c *service.AgentCommand, v string) { c.Bank.AccountNumber = v },
	"branch_code":    func(c *service.AgentCommand, v string) { c.Bank.BranchCode = v },
	"account_type":   func(c *service.AgentCommand, v string) { c.Bank.AccountType = v },
}

// columnAliases covers the headings used by older capture sheets.
var columnAliases = map[string]string{
	"name":                "first_name",
	"first_names":         "first_name",
	"firstname":           "first_name",
	"last_name":           "surname",
	"lastname":            "surname",
	"dob":                 "date_of_birth",
	"birth_date":          "date_of_birth",
	"identification_type": "id_type",
	"id_no":               "sa_id_no",
	"id_number":           "sa_id_no",
	"sa_id":               "sa_id_no",
	"passport":            "passport_no",
	"passport_number":     "passport_no",
	"mobile":              "phone",
	"cell":                "phone",
	"line1":               "address_line1",
	"line2":               "address_line2",
	"postcode":            "postal_code",
	"branch":              "branch_code",
}

var requiredColumns = []string{"first_name", "surname", "id_type"}

type columns []func(*service.AgentCommand, string)

func (cols columns) command(record []string) *service.AgentCommand {
	cmd := &service.AgentCommand{}
	for idx, set := range cols {
		if idx < len(record) {
			set(cmd, record[idx])
		}
	}
	return cmd
}

func mapHeader(header []string) (columns, error) {
	cols := make(columns, len(header))
	seen := make(map[string]bool, len(header))
	fields := map[string]string{}
	for idx, raw := range header {
		name := canonicalColumn(raw)
		set, ok := columnSetters[name]
		if !ok {
			fields[strings.TrimSpace(raw)] = "unknown column"
			continue
		}
		if seen[name] {
			fields[name] = "duplicate column"
			continue
		}
		seen[name] = true
		cols[idx] = set
	}
	for _, name := range requiredColumns {
		if !seen[name] {
			fields[name] = "column is required"
		}
	}
	if len(fields) > 0 {
		return nil, dErrors.NewFields(dErrors.CodeBadRequest, "invalid csv header", fields)
	}
	return cols, nil
}

func canonicalColumn(raw string) string {
	name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	if alias, ok := columnAliases[name]; ok {
		return alias
	}
	return name
}
