package exportapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-school-export/export"
)

// DefaultBasePath is where the export endpoints are mounted.
const DefaultBasePath = "/admin/exports"

// Config configures the shared export API controller.
type Config struct {
	Service  export.Service
	BasePath string
	Logger   export.Logger
	Decoder  RequestDecoder
}

// Controller exposes export API handlers for multiple transports.
type Controller struct {
	service  export.Service
	basePath string
	logger   export.Logger
	decoder  RequestDecoder
}

// NewController creates a shared export API controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	decoder := cfg.Decoder
	if decoder == nil {
		decoder = QueryRequestDecoder{}
	}
	return &Controller{
		service:  cfg.Service,
		basePath: basePath,
		logger:   logger,
		decoder:  decoder,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes export endpoints using the shared controller.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, export.NewError(export.KindInternal, "request is nil", nil))
		return
	}
	path := req.Path()
	if path != c.basePath && !strings.HasPrefix(path, c.basePath+"/") {
		writeNotFound(res)
		return
	}

	suffix := strings.Trim(strings.TrimPrefix(path, c.basePath), "/")
	if suffix == "" || strings.Contains(suffix, "/") {
		writeNotFound(res)
		return
	}
	if req.Method() != http.MethodGet && req.Method() != http.MethodHead {
		res.SetHeader("Allow", "GET, HEAD")
		WriteError(res, export.NewError(export.KindValidation, "method not allowed", nil), http.StatusMethodNotAllowed)
		return
	}

	switch suffix {
	case "datasets":
		c.handleDatasets(res)
	case "history":
		c.handleHistory(req, res)
	default:
		c.handleDownload(req, res, suffix)
	}
}

func (c *Controller) handleDatasets(res Response) {
	if c.service == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "export service not configured", nil))
		return
	}
	writeJSON(res, http.StatusOK, DatasetsResponse{
		Datasets: c.service.Datasets(),
		Formats:  c.service.Formats(),
	})
}

func (c *Controller) handleHistory(req Request, res Response) {
	if c.service == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "export service not configured", nil))
		return
	}
	filter, err := parseFilter(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	records, err := c.service.History(req.Context(), filter)
	if err != nil {
		WriteError(res, err)
		return
	}
	if records == nil {
		records = []export.ExportRecord{}
	}
	writeJSON(res, http.StatusOK, HistoryResponse{Records: records})
}

func (c *Controller) handleDownload(req Request, res Response, dataset string) {
	if c.service == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "export service not configured", nil))
		return
	}
	exportReq, err := c.decoder.Decode(req, dataset)
	if err != nil {
		WriteError(res, err)
		return
	}

	result, err := c.service.Export(req.Context(), exportReq)
	if err != nil {
		WriteError(res, err)
		return
	}

	setDownloadHeaders(res, result)
	res.WriteHeader(http.StatusOK)
	if req.Method() == http.MethodHead {
		return
	}
	if _, err := res.Write(result.Data); err != nil {
		c.logger.Errorf("export download write failed id=%s: %v", result.ID, err)
	}
}

func writeNotFound(res Response) {
	WriteError(res, export.NewError(export.KindNotFound, "route not found", nil))
}

// WriteError writes err as a JSON error body. An explicit status overrides
// the one derived from the error category.
func WriteError(res Response, err error, status ...int) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := export.AsGoError(err)
	code := StatusForError(ge)
	if len(status) > 0 && status[0] > 0 {
		code = status[0]
	}
	writeJSON(res, code, ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	})
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

// StatusForError maps an error category to an HTTP status.
func StatusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func parseFilter(req Request) (export.ProgressFilter, error) {
	filter := export.ProgressFilter{
		Dataset: strings.TrimSpace(req.Query("dataset")),
		State:   export.ExportState(strings.ToLower(strings.TrimSpace(req.Query("state")))),
	}
	if since := strings.TrimSpace(req.Query("since")); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return export.ProgressFilter{}, export.NewError(export.KindValidation, "invalid since timestamp", err)
		}
		filter.Since = ts
	}
	if limit := strings.TrimSpace(req.Query("limit")); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return export.ProgressFilter{}, export.NewError(export.KindValidation, "invalid limit", err)
		}
		filter.Limit = n
	}
	return filter, nil
}

func setDownloadHeaders(res Response, result export.ExportResult) {
	contentType := result.ContentType
	if contentType == "" {
		contentType = export.ContentType(result.Format)
	}
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Disposition", ContentDisposition(result.Filename, result.Format))
	res.SetHeader("Content-Length", strconv.Itoa(len(result.Data)))
	res.SetHeader("Cache-Control", "no-store")
	if result.ID != "" {
		res.SetHeader("X-Export-ID", result.ID)
	}
}

// ContentDisposition builds an attachment header with an ASCII fallback
// filename and an RFC 5987 encoded UTF-8 filename.
func ContentDisposition(filename string, format export.Format) string {
	name := strings.TrimSpace(filename)
	name = strings.NewReplacer("\"", "", "/", "_", "\\", "_", "\r", "", "\n", "").Replace(name)
	if name == "" {
		name = fmt.Sprintf("export.%s", export.Extension(format))
	}
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", asciiFallback(name, format), encodeRFC5987(name))
}

func asciiFallback(name string, format export.Format) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if strings.Trim(out, "_.- ") == "" {
		return fmt.Sprintf("export.%s", export.Extension(format))
	}
	return out
}

func encodeRFC5987(value string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if isAttrChar(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0f])
	}
	return b.String()
}

func isAttrChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", ch) >= 0
}
