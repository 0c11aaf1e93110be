package md2doc

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/process"
	"github.com/alnah/go-md2doc/internal/render/htmldoc"
)

// htmlPrinter turns a standalone HTML document into a PDF.
type htmlPrinter interface {
	Print(ctx context.Context, document, baseDir string, theme model.Theme) ([]byte, error)
	Close() error
}

// filePrinter prints a local HTML file. The browser implements it; tests
// replace it.
type filePrinter interface {
	PrintFile(ctx context.Context, path string, params *proto.PagePrintToPDF) ([]byte, error)
	Close() error
}

var (
	_ htmlPrinter = (*chromePrinter)(nil)
	_ filePrinter = (*chrome)(nil)
)

const (
	// minFooterMargin is the bottom margin Chrome needs to draw a footer, in
	// inches.
	minFooterMargin = 0.75

	footerStyle = `font-size: 10px; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; color: #aaa; width: 100%%; text-align: %s; padding: 0 0.5in;`
	pageCounter = `<span class="pageNumber"></span>/<span class="totalPages"></span>`
	emptyBand   = "<span></span>"
)

// chromePrinter is the print format: the HTML output laid out by Chrome.
type chromePrinter struct {
	files filePrinter
	now   func() time.Time
}

func newChromePrinter(timeout time.Duration) *chromePrinter {
	return &chromePrinter{files: &chrome{timeout: timeout}, now: time.Now}
}

// Print stores document in a temp file, with relative sources resolved
// against baseDir, and prints it on the theme page box.
func (p *chromePrinter) Print(ctx context.Context, document, baseDir string, theme model.Theme) ([]byte, error) {
	params, err := printParams(theme, p.now())
	if err != nil {
		return nil, err
	}

	document, err = htmldoc.AbsolutizeSources(document, baseDir)
	if err != nil {
		return nil, fmt.Errorf("rewriting sources: %w", err)
	}

	path, cleanup, err := fileutil.WriteTempFile(document, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return p.files.PrintFile(ctx, path, params)
}

func (p *chromePrinter) Close() error {
	if p.files == nil {
		return nil
	}
	return p.files.Close()
}

// printParams maps the oriented page box, the margins and the footer to
// Chrome print parameters.
func printParams(theme model.Theme, now time.Time) (*proto.PagePrintToPDF, error) {
	theme = theme.WithDefaults()
	width, height := theme.Page.Dimensions()
	m := theme.Page.Margins

	params := &proto.PagePrintToPDF{
		PaperWidth:      &width,
		PaperHeight:     &height,
		MarginTop:       &m.Top,
		MarginRight:     &m.Right,
		MarginBottom:    &m.Bottom,
		MarginLeft:      &m.Left,
		PrintBackground: true,
	}
	if !theme.Footer.Enabled() {
		return params, nil
	}

	date, err := dateutil.ResolveDate(theme.Footer.Date, now)
	if err != nil {
		return nil, fmt.Errorf("footer date: %w", err)
	}
	bottom := max(m.Bottom, minFooterMargin)
	params.MarginBottom = &bottom
	params.DisplayHeaderFooter = true
	params.HeaderTemplate = emptyBand
	params.FooterTemplate = footerTemplate(theme.Footer, date)
	return params, nil
}

// footerTemplate renders the page counter, date and text of f, in that
// order, as a Chrome footer band.
func footerTemplate(f model.Footer, date string) string {
	var parts []string
	if f.ShowPageNumber {
		parts = append(parts, pageCounter)
	}
	for _, s := range []string{date, f.Text} {
		if s != "" {
			parts = append(parts, html.EscapeString(s))
		}
	}
	if len(parts) == 0 {
		return emptyBand
	}

	align := strings.ToLower(f.Position)
	if align != "left" && align != "center" {
		align = "right"
	}
	return `<div style="` + fmt.Sprintf(footerStyle, align) + `">` + strings.Join(parts, " - ") + `</div>`
}

// chrome is a headless Chrome launched on first use. Rod downloads a
// browser when none is installed.
type chrome struct {
	timeout  time.Duration
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// start launches and connects the browser once.
func (c *chrome) start() error {
	if c.browser != nil {
		return nil
	}

	l := launcher.New()
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	// Containers and CI runners usually cannot start the Chrome sandbox.
	if bin != "" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	c.launcher = l

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		c.stopLauncher()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	c.browser = browser
	return nil
}

// PrintFile loads path in a new tab and prints it. The page load is bounded
// by the context deadline, or by the configured timeout without one.
func (c *chrome) PrintFile(ctx context.Context, path string, params *proto.PagePrintToPDF) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if timeout = time.Until(deadline); timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := c.start(); err != nil {
		return nil, err
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := page.PDF(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrintPDF, err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading stream: %v", ErrPrintPDF, err)
	}
	return data, nil
}

// Close disconnects the browser, then kills its process group so renderer
// children do not outlive the converter.
func (c *chrome) Close() error {
	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	c.stopLauncher()
	return err
}

func (c *chrome) stopLauncher() {
	if c.launcher == nil {
		return
	}
	process.KillProcessGroup(c.launcher.PID())
	c.launcher.Kill()
	c.launcher = nil
}
