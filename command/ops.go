package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-school-export/export"
)

// BatchRequest is one export in a batch run. Key overrides the stored
// document path; by default it is "<date>/<filename>".
type BatchRequest struct {
	Request export.ExportRequest `json:"request"`
	Key     string               `json:"key,omitempty"`
}

// BatchLoader loads batch requests from a source.
type BatchLoader func(ctx context.Context) ([]BatchRequest, error)

// DocumentStore persists rendered documents.
type DocumentStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

// BatchReport summarizes a batch run.
type BatchReport struct {
	Completed int
	Failed    int
	Paths     []string
	Errors    []string
}

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// BatchCommand renders a list of exports from CLI, cron or the dispatcher.
// One failed export is reported and the batch moves on.
type BatchCommand struct {
	exporter   Exporter
	store      DocumentStore
	loader     BatchLoader
	logger     export.Logger
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	now        func() time.Time
	sleep      func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// WithBatchLogger sets the logger.
func WithBatchLogger(logger export.Logger) BatchOption {
	return func(cmd *BatchCommand) {
		if logger != nil {
			cmd.logger = logger
		}
	}
}

// WithBatchClock sets the clock used for default document keys.
func WithBatchClock(now func() time.Time) BatchOption {
	return func(cmd *BatchCommand) {
		if now != nil {
			cmd.now = now
		}
	}
}

// NewBatchCommand creates a batch CLI/Cron command.
func NewBatchCommand(exporter Exporter, store DocumentStore, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		exporter: exporter,
		store:    store,
		loader:   loader,
		logger:   export.NopLogger{},
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"exports-batch"},
			Description: "Render batch exports to the document store",
			Group:       "exports",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 2 * * *"},
		now:        time.Now,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// Execute runs the batch as a command message.
func (c *BatchCommand) Execute(ctx context.Context, msg RunBatch) error {
	report, err := c.run(ctx, msg.From)
	if msg.Result != nil {
		*msg.Result = report
	}
	if res := gcmd.ResultFromContext[BatchReport](ctx); res != nil {
		res.Store(report)
	}
	return err
}

// CronHandler executes scheduled batch exports.
func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

func (c *BatchCommand) run(ctx context.Context, from string) (BatchReport, error) {
	if c == nil {
		return BatchReport{}, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.exporter == nil {
		return BatchReport{}, errors.New("batch exporter is required", errors.CategoryValidation).
			WithTextCode("EXPORTER_REQUIRED")
	}
	if c.store == nil {
		return BatchReport{}, errors.New("batch document store is required", errors.CategoryValidation).
			WithTextCode("STORE_REQUIRED")
	}

	requests, err := c.loadRequests(ctx, from)
	if err != nil {
		return BatchReport{}, err
	}

	var report BatchReport
	for i, item := range requests {
		if c.limits.MaxRequests > 0 && i >= c.limits.MaxRequests {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if i > 0 && c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}

		stored, err := c.runOne(ctx, item)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, item.Request.Dataset+": "+err.Error())
			c.logger.Errorf("batch export failed dataset=%s format=%s: %v", item.Request.Dataset, item.Request.Format, err)
			continue
		}
		report.Completed++
		report.Paths = append(report.Paths, stored)
	}

	if report.Failed > 0 && report.Completed == 0 {
		return report, errors.New("all batch exports failed", errors.CategoryOperation).
			WithTextCode("BATCH_FAILED")
	}
	return report, nil
}

func (c *BatchCommand) runOne(ctx context.Context, item BatchRequest) (string, error) {
	result, err := c.exporter.Export(ctx, item.Request)
	if err != nil {
		return "", err
	}
	key := strings.TrimSpace(item.Key)
	if key == "" {
		key = path.Join(c.now().Format("2006-01-02"), result.Filename)
	}
	return c.store.Put(ctx, key, bytes.NewReader(result.Data))
}

func (c *BatchCommand) loadRequests(ctx context.Context, from string) ([]BatchRequest, error) {
	if strings.TrimSpace(from) != "" {
		return loadBatchRequestsFromFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to JSON batch export requests'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.run(context.Background(), c.From)
	return err
}

func loadBatchRequestsFromFile(path string) ([]BatchRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var requests []BatchRequest
	if err := json.Unmarshal(content, &requests); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return requests, nil
}

// BuildBatchRequests returns one request per dataset sharing the template's
// format, locale, direction and params. The format defaults to PDF.
func BuildBatchRequests(datasets []string, template export.ExportRequest) []BatchRequest {
	format := template.Format
	if format == "" {
		format = export.FormatPDF
	}

	requests := make([]BatchRequest, 0, len(datasets))
	for _, dataset := range datasets {
		dataset = strings.TrimSpace(dataset)
		if dataset == "" {
			continue
		}
		params := make(map[string]string, len(template.Params))
		for key, value := range template.Params {
			params[key] = value
		}
		requests = append(requests, BatchRequest{
			Request: export.ExportRequest{
				Dataset:   dataset,
				Format:    format,
				Locale:    template.Locale,
				Direction: template.Direction,
				Params:    params,
			},
		})
	}
	return requests
}
