package exportpdf

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-school-export/export"
)

// PDFOptions are print settings handed to HTML-to-PDF engines.
// Lengths accept in, cm, mm, pt and px units; a bare number is inches.
type PDFOptions struct {
	PageSize            string
	Landscape           *bool
	PrintBackground     *bool
	Scale               float64
	MarginTop           string
	MarginBottom        string
	MarginLeft          string
	MarginRight         string
	BaseURL             string
	BlockExternalAssets bool
}

// paper sizes in inches, portrait.
var paperSizes = map[string][2]float64{
	"A3":     {11.69, 16.54},
	"A4":     {8.27, 11.69},
	"A5":     {5.83, 8.27},
	"LETTER": {8.5, 11},
	"LEGAL":  {8.5, 14},
}

var inchesPerUnit = map[string]float64{
	"":   1,
	"in": 1,
	"cm": 1 / 2.54,
	"mm": 1 / 25.4,
	"pt": 1 / 72.0,
	"px": 1 / 96.0,
}

// ChromiumEngine prints HTML with a shared headless Chromium instance.
// The browser starts on first use and lives until Close.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string
	// Defaults apply under per-request options; zero values mean landscape A4.
	Defaults PDFOptions

	once          sync.Once
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

// Render prints the HTML document to PDF.
func (e *ChromiumEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if e == nil {
		return nil, export.NewError(export.KindInternal, "chromium engine is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.start(); err != nil {
		return nil, export.NewError(export.KindInternal, "chromium engine init failed", err)
	}

	options := e.options(req.Options)
	params, err := printParams(options)
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(e.browserCtx)
	defer cancelTab()
	runCtx, cancelRun := context.WithCancel(tabCtx)
	defer cancelRun()
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()
	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, e.Timeout)
		defer cancelTimeout()
	}

	document := withBaseURL(string(req.HTML), options.BaseURL)
	var out []byte
	var actions []chromedp.Action
	if options.BlockExternalAssets {
		actions = append(actions, network.Enable(), network.SetBlockedURLs([]string{"http://*", "https://*"}))
	}
	actions = append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			out, _, err = params.Do(ctx)
			return err
		}),
	)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, export.NewError(export.KindInternal, "chromium pdf render failed", err)
	}
	return out, nil
}

// Close stops the browser if it was started.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	if e.cancelBrowser != nil {
		e.cancelBrowser()
	}
	if e.cancelAlloc != nil {
		e.cancelAlloc()
	}
	return nil
}

func (e *ChromiumEngine) start() error {
	e.once.Do(func() {
		opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if e.BrowserPath != "" {
			opts = append(opts, chromedp.ExecPath(e.BrowserPath))
		}
		opts = append(opts, chromedp.Flag("headless", e.Headless))
		opts = append(opts, browserFlags(e.Args)...)

		var allocCtx context.Context
		allocCtx, e.cancelAlloc = chromedp.NewExecAllocator(context.Background(), opts...)
		e.browserCtx, e.cancelBrowser = chromedp.NewContext(allocCtx)
	})
	if e.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

// options layers per-request settings over engine defaults.
func (e *ChromiumEngine) options(override PDFOptions) PDFOptions {
	opts := e.Defaults
	if opts.PageSize == "" {
		opts.PageSize = "A4"
	}
	if opts.Landscape == nil {
		opts.Landscape = boolPtr(true)
	}
	if opts.PrintBackground == nil {
		opts.PrintBackground = boolPtr(true)
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}

	if override.PageSize != "" {
		opts.PageSize = override.PageSize
	}
	if override.Landscape != nil {
		opts.Landscape = override.Landscape
	}
	if override.PrintBackground != nil {
		opts.PrintBackground = override.PrintBackground
	}
	if override.Scale != 0 {
		opts.Scale = override.Scale
	}
	for _, pair := range []struct{ dst, src *string }{
		{&opts.MarginTop, &override.MarginTop},
		{&opts.MarginBottom, &override.MarginBottom},
		{&opts.MarginLeft, &override.MarginLeft},
		{&opts.MarginRight, &override.MarginRight},
		{&opts.BaseURL, &override.BaseURL},
	} {
		if *pair.src != "" {
			*pair.dst = *pair.src
		}
	}
	opts.BlockExternalAssets = opts.BlockExternalAssets || override.BlockExternalAssets
	return opts
}

func printParams(opts PDFOptions) (*page.PrintToPDFParams, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0.1 || scale > 2.0 {
		return nil, export.NewError(export.KindValidation, "pdf scale must be between 0.1 and 2.0", nil)
	}
	params := page.PrintToPDF().WithScale(scale)

	if opts.Landscape != nil {
		params = params.WithLandscape(*opts.Landscape)
	}
	if opts.PrintBackground != nil {
		params = params.WithPrintBackground(*opts.PrintBackground)
	}
	if opts.PageSize == "" {
		params = params.WithPreferCSSPageSize(true)
	} else {
		size, ok := paperSizes[strings.ToUpper(opts.PageSize)]
		if !ok {
			return nil, export.NewError(export.KindValidation, fmt.Sprintf("unsupported pdf page size: %s", opts.PageSize), nil)
		}
		params = params.WithPaperWidth(size[0]).WithPaperHeight(size[1])
	}

	margins := []struct {
		value string
		apply func(*page.PrintToPDFParams, float64) *page.PrintToPDFParams
	}{
		{opts.MarginTop, (*page.PrintToPDFParams).WithMarginTop},
		{opts.MarginBottom, (*page.PrintToPDFParams).WithMarginBottom},
		{opts.MarginLeft, (*page.PrintToPDFParams).WithMarginLeft},
		{opts.MarginRight, (*page.PrintToPDFParams).WithMarginRight},
	}
	for _, margin := range margins {
		if margin.value == "" {
			continue
		}
		inches, err := lengthInches(margin.value)
		if err != nil {
			return nil, err
		}
		params = margin.apply(params, inches)
	}
	return params, nil
}

// lengthInches parses values like "10mm" or "0.5in".
func lengthInches(value string) (float64, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	split := strings.IndexFunc(value, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := value, ""
	if split >= 0 {
		number, unit = value[:split], strings.TrimSpace(value[split:])
	}

	factor, ok := inchesPerUnit[unit]
	if !ok {
		return 0, export.NewError(export.KindValidation, fmt.Sprintf("unsupported pdf length unit: %s", unit), nil)
	}
	amount, err := strconv.ParseFloat(number, 64)
	if err != nil || amount < 0 {
		return 0, export.NewError(export.KindValidation, fmt.Sprintf("invalid pdf length: %s", value), err)
	}
	return amount * factor, nil
}

// withBaseURL adds a <base> element so relative asset URLs resolve.
func withBaseURL(document, baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" || strings.Contains(strings.ToLower(document), "<base") {
		return document
	}

	tag := `<base href="` + html.EscapeString(baseURL) + `">`
	lower := strings.ToLower(document)
	if head := strings.Index(lower, "<head"); head >= 0 {
		if end := strings.Index(lower[head:], ">"); end >= 0 {
			at := head + end + 1
			return document[:at] + tag + document[at:]
		}
	}
	return tag + document
}

func browserFlags(args []string) []chromedp.ExecAllocatorOption {
	flags := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			flags = append(flags, chromedp.Flag(name, value))
			continue
		}
		flags = append(flags, chromedp.Flag(arg, true))
	}
	return flags
}

func boolPtr(value bool) *bool {
	return &value
}
