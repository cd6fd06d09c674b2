package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const defaultChromeTimeout = 30 * time.Second

// ChromedpRenderer prints HTML with a headless Chrome started on first use.
// At most PrintingConfig.MaxParallel tabs render at the same time.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	slots       *semaphore.Weighted
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a renderer. Chrome itself is launched lazily by
// chromedp when the first document is printed.
func NewChromedpRenderer(cfg config.PrintingConfig, logger *zap.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultChromeTimeout
	}
	parallel := cfg.MaxParallel
	if parallel <= 0 {
		parallel = 1
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpRenderer{
		timeout:     timeout,
		logger:      logger,
		slots:       semaphore.NewWeighted(int64(parallel)),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// Render implements PDFRenderer
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := r.slots.Acquire(ctx, 1); err != nil {
		return nil, NewRenderError(ErrCodeBusy, "no free rendering slot", err)
	}
	defer r.slots.Release(1)

	start := time.Now()
	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()
	// the tab must also stop when the request context ends
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	params := buildPrintParams(req)
	doc := wrapHTML(req)

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("rendering timed out after %v", timeout), err)
		}
		r.logger.Error("Chrome rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome rendering failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	elapsed := time.Since(start)
	r.logger.Debug("PDF rendered", zap.Int("bytes", len(pdf)), zap.Duration("duration", elapsed))
	return &RenderResult{PDFData: pdf, RenderDuration: elapsed}, nil
}

// Close stops the browser
func (r *ChromedpRenderer) Close() error {
	r.allocCancel()
	return nil
}

func validateRequest(req *RenderRequest) error {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if req.PaperSize == "" {
		req.PaperSize = PaperSizeA4
	}
	if !req.PaperSize.IsValid() {
		return NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(req.PaperSize), nil)
	}
	return nil
}

// buildPrintParams converts the request to Chrome's print parameters, which
// are expressed in inches
func buildPrintParams(req *RenderRequest) *page.PrintToPDFParams {
	w, h := req.PaperSize.Dimensions()
	m := req.Margins
	p := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(mmToInches(w)).
		WithPaperHeight(mmToInches(h)).
		WithMarginTop(mmToInches(m.Top)).
		WithMarginRight(mmToInches(m.Right)).
		WithMarginBottom(mmToInches(m.Bottom)).
		WithMarginLeft(mmToInches(m.Left)).
		WithLandscape(req.Landscape)

	if req.FooterHTML != "" {
		bottom := m.Bottom
		if bottom < 12 {
			bottom = 12
		}
		p = p.WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(req.FooterHTML).
			WithMarginBottom(mmToInches(bottom))
	}
	return p
}

// wrapHTML completes a fragment into a full document
func wrapHTML(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if req.Title != "" {
		b.WriteString("<title>" + html.EscapeString(req.Title) + "</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")
	return b.String()
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
