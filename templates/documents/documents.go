// Package documents holds the printable HTML documents (filing voucher, case
// log and report) that are turned into PDF by headless Chrome.
package documents

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services/i18n"

	"github.com/a-h/templ"
)

const dateLayout = "02/01/2006"
const dateTimeLayout = "02/01/2006 15:04"

const baseStyles = `
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11pt; color: #1f2937; }
header { display: flex; align-items: center; gap: 16px; border-bottom: 2px solid #1e3a8a; padding-bottom: 12px; margin-bottom: 20px; }
header img { max-height: 64px; }
header h1 { font-size: 16pt; margin: 0; color: #1e3a8a; }
header p { margin: 2px 0; font-size: 9pt; color: #4b5563; }
h2 { font-size: 13pt; color: #1e3a8a; margin: 18px 0 8px; }
table { width: 100%; border-collapse: collapse; margin-bottom: 12px; }
th, td { border: 1px solid #d1d5db; padding: 6px 8px; text-align: left; vertical-align: top; }
th { background: #eff6ff; width: 30%; }
.grid th { width: auto; }
.number { font-size: 18pt; font-weight: bold; letter-spacing: 1px; }
.muted { color: #6b7280; font-size: 9pt; }
.right { text-align: right; }
footer { margin-top: 24px; font-size: 9pt; color: #4b5563; }
`

// Office is the issuing office shown on every document header
type Office struct {
	Name     string
	NIT      string
	Email    string
	Phone    string
	Whatsapp string
	Logo     []byte
}

// OfficeFromConfig builds the header data from the system configuration
func OfficeFromConfig(cfg *models.SystemConfig) Office {
	office := Office{Name: cfg.DisplayName()}
	if cfg == nil {
		return office
	}
	office.NIT = deref(cfg.EntityNIT)
	office.Email = deref(cfg.EntityEmail)
	office.Phone = deref(cfg.EntityPhone)
	office.Whatsapp = deref(cfg.EntityWhatsapp)
	office.Logo = cfg.EntityLogo
	return office
}

// Render writes a component into a string
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

// page wraps body in a complete HTML document with the office header
func page(title string, office Office, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="` + templ.EscapeString(i18n.GetLocale(ctx)) + `"><head><meta charset="utf-8">`)
		p.raw("<title>")
		p.text(title)
		p.raw("</title><style>" + baseStyles + "</style></head><body><header>")
		if src := logoDataURL(office.Logo); src != "" {
			p.raw(`<img alt="logo" src="` + src + `">`)
		}
		p.raw("<div><h1>")
		p.text(office.Name)
		p.raw("</h1>")
		if office.NIT != "" {
			p.raw("<p>NIT ")
			p.text(office.NIT)
			p.raw("</p>")
		}
		if contact := joinNonEmpty(" · ", office.Email, office.Phone, office.Whatsapp); contact != "" {
			p.raw("<p>")
			p.text(contact)
			p.raw("</p>")
		}
		p.raw("</div></header>")
		if p.err != nil {
			return p.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		p.raw("</body></html>")
		return p.err
	})
}

// printer writes escaped text and raw markup, keeping the first error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

// row writes a two-column table row
func (p *printer) row(label, value string) {
	p.raw("<tr><th>")
	p.text(label)
	p.raw("</th><td>")
	p.text(value)
	p.raw("</td></tr>")
}

func logoDataURL(logo []byte) string {
	if len(logo) == 0 {
		return ""
	}
	mime := http.DetectContentType(logo)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(logo)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinNonEmpty(sep string, values ...string) string {
	out := ""
	for _, v := range values {
		if v == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += v
	}
	return out
}
