package services

import (
	"context"
	"fmt"
	"time"

	"pqr_flow_app_go/models"
	"pqr_flow_app_go/templates/documents"

	"github.com/a-h/templ"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DocumentKind names a printable document
type DocumentKind string

const (
	DocumentVoucher DocumentKind = "voucher"
	DocumentCaseLog DocumentKind = "bitacora"
	DocumentReport  DocumentKind = "report"
)

// Renderer turns document data into PDF bytes
type Renderer interface {
	Render(ctx context.Context, kind DocumentKind, data interface{}) ([]byte, error)
}

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions returns default options for office documents
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "letter",
		MarginTop:       72,
		MarginBottom:    72,
		MarginLeft:      72,
		MarginRight:     72,
	}
}

// ChromeRenderer renders documents to HTML and prints them with headless Chrome
type ChromeRenderer struct {
	ChromePath string
	Options    PDFOptions
	Timeout    time.Duration
}

// NewChromeRenderer creates a renderer; an empty chromePath uses the browser found on PATH
func NewChromeRenderer(chromePath string) *ChromeRenderer {
	return &ChromeRenderer{
		ChromePath: chromePath,
		Options:    DefaultPDFOptions(),
		Timeout:    30 * time.Second,
	}
}

// Render builds the HTML for kind and converts it to PDF
func (r *ChromeRenderer) Render(ctx context.Context, kind DocumentKind, data interface{}) ([]byte, error) {
	html, err := RenderDocumentHTML(ctx, kind, data)
	if err != nil {
		return nil, err
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	return GeneratePDF(ctx, r.ChromePath, html, r.Options)
}

// RenderDocumentHTML renders the HTML of a document without printing it
func RenderDocumentHTML(ctx context.Context, kind DocumentKind, data interface{}) (string, error) {
	var component templ.Component
	switch kind {
	case DocumentVoucher:
		d, ok := data.(documents.VoucherData)
		if !ok {
			return "", fmt.Errorf("%w: voucher expects VoucherData, got %T", ErrValidation, data)
		}
		component = documents.Voucher(d)
	case DocumentCaseLog:
		d, ok := data.(documents.CaseLogData)
		if !ok {
			return "", fmt.Errorf("%w: case log expects CaseLogData, got %T", ErrValidation, data)
		}
		component = documents.CaseLog(d)
	case DocumentReport:
		d, ok := data.(documents.ReportData)
		if !ok {
			return "", fmt.Errorf("%w: report expects ReportData, got %T", ErrValidation, data)
		}
		component = documents.Report(d)
	default:
		return "", fmt.Errorf("%w: unknown document kind %q", ErrValidation, kind)
	}
	return documents.Render(ctx, component)
}

// VoucherDocument assembles the voucher data of a case
func VoucherDocument(c *models.Case, cfg *models.SystemConfig) documents.VoucherData {
	return documents.VoucherData{
		Office:      documents.OfficeFromConfig(cfg),
		Case:        c,
		GeneratedAt: nowFunc(),
	}
}

// CaseLogDocument assembles the case log data of a case loaded with its actions
func CaseLogDocument(c *models.Case, cfg *models.SystemConfig) documents.CaseLogData {
	return documents.CaseLogData{
		Office:      documents.OfficeFromConfig(cfg),
		Case:        c,
		GeneratedAt: nowFunc(),
	}
}

// ReportDocument assembles the statistics report for the filtered cases
func ReportDocument(stats *CaseStats, filter ReportFilter, cfg *models.SystemConfig) documents.ReportData {
	section := func(title string, counts []LabelCount) documents.ReportSection {
		rows := make([]documents.ReportRow, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, documents.ReportRow{Label: c.Label, Count: c.Count})
		}
		return documents.ReportSection{Title: title, Rows: rows}
	}
	return documents.ReportData{
		Office:  documents.OfficeFromConfig(cfg),
		From:    filter.From,
		To:      filter.To,
		Total:   stats.Total,
		Overdue: stats.Overdue,
		Sections: []documents.ReportSection{
			section("report.by_type", stats.ByType),
			section("report.by_status", stats.ByStatus),
			section("report.by_channel", stats.ByChannel),
		},
		GeneratedAt: nowFunc(),
	}
}

// GeneratePDF renders HTML content to PDF using headless Chrome
func GeneratePDF(ctx context.Context, chromePath, htmlContent string, options PDFOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)

	// Custom Chrome path (for headless-shell in Docker)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	paperWidth, paperHeight := paperSize(options)

	// Convert points to inches for margins
	marginTop := float64(options.MarginTop) / 72.0
	marginBottom := float64(options.MarginBottom) / 72.0
	marginLeft := float64(options.MarginLeft) / 72.0
	marginRight := float64(options.MarginRight) / 72.0

	var pdfBuf []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		// Wait for content to render
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(marginTop).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithMarginRight(marginRight).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}

// paperSize returns width and height in inches
func paperSize(options PDFOptions) (float64, float64) {
	var paperWidth, paperHeight float64
	switch options.PageSize {
	case "legal":
		paperWidth = 8.5
		paperHeight = 14.0
	case "A4":
		paperWidth = 8.27
		paperHeight = 11.69
	default: // letter
		paperWidth = 8.5
		paperHeight = 11.0
	}

	if options.PageOrientation == "landscape" {
		paperWidth, paperHeight = paperHeight, paperWidth
	}
	return paperWidth, paperHeight
}
