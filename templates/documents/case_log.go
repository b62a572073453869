package documents

import (
	"context"
	"io"
	"time"

	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services/i18n"

	"github.com/a-h/templ"
)

// CaseLogData is the content of a case log (bitácora) document
type CaseLogData struct {
	Office      Office
	Case        *models.Case
	GeneratedAt time.Time
}

// CaseLog renders the case summary followed by every action, newest first
func CaseLog(data CaseLogData) templ.Component {
	c := data.Case
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t := func(key string) string { return i18n.T(ctx, key) }
		p := &printer{w: w}

		p.raw(`<h2>`)
		p.text(i18n.T(ctx, "caselog.title", i18n.Vars{"number": c.CaseNumber}))
		p.raw(`</h2><table>`)
		p.row(t("voucher.requester"), c.Requester.FullName+" ("+c.Requester.IdentificationNumber+")")
		p.row(t("voucher.type"), c.CaseType)
		p.row(t("voucher.status"), c.Status)
		p.row(t("voucher.filed_at"), c.FiledAt.Format(dateTimeLayout))
		p.row(t("voucher.due_date"), formatDate(c.DueDate))
		p.row(t("voucher.subject"), c.Subject)
		p.raw(`</table>`)

		if len(c.Actions) == 0 {
			p.raw(`<p class="muted">`)
			p.text(t("caselog.empty"))
			p.raw(`</p>`)
		} else {
			p.raw(`<table class="grid"><thead><tr><th>`)
			p.text(t("caselog.date"))
			p.raw(`</th><th>`)
			p.text(t("caselog.action"))
			p.raw(`</th><th>`)
			p.text(t("caselog.note"))
			p.raw(`</th><th>`)
			p.text(t("caselog.user"))
			p.raw(`</th></tr></thead><tbody>`)
			for _, a := range c.Actions {
				p.raw(`<tr><td>`)
				p.text(a.PerformedAt.Format(dateTimeLayout))
				p.raw(`</td><td>`)
				p.text(a.ActionType)
				p.raw(`</td><td>`)
				p.text(a.Note)
				p.raw(`</td><td>`)
				p.text(a.PerformedBy)
				p.raw(`</td></tr>`)
			}
			p.raw(`</tbody></table>`)
		}

		p.raw(`<footer class="muted">`)
		p.text(data.GeneratedAt.Format(dateTimeLayout))
		p.raw(`</footer>`)
		return p.err
	})
	return page(c.CaseNumber, data.Office, body)
}
