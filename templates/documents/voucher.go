package documents

import (
	"context"
	"io"
	"time"

	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services/i18n"

	"github.com/a-h/templ"
)

// VoucherData is the content of a filing voucher
type VoucherData struct {
	Office      Office
	Case        *models.Case
	GeneratedAt time.Time
}

// Voucher renders the receipt handed to the requester when a PQR is filed
func Voucher(data VoucherData) templ.Component {
	c := data.Case
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t := func(key string) string { return i18n.T(ctx, key) }
		p := &printer{w: w}

		p.raw(`<h2>`)
		p.text(t("voucher.title"))
		p.raw(`</h2><p class="number">`)
		p.text(c.CaseNumber)
		p.raw(`</p><table>`)
		p.row(t("voucher.filed_at"), c.FiledAt.Format(dateTimeLayout))
		p.row(t("voucher.due_date"), formatDate(c.DueDate))
		p.row(t("voucher.type"), c.CaseType)
		p.row(t("voucher.status"), c.Status)
		p.row(t("voucher.channel"), orDash(deref(c.Channel)))
		p.row(t("voucher.subject"), c.Subject)
		p.raw(`</table><h2>`)
		p.text(t("voucher.requester"))
		p.raw(`</h2><table>`)
		p.row(t("voucher.requester"), c.Requester.FullName)
		p.row(t("voucher.identification"), c.Requester.IdentificationType+" "+c.Requester.IdentificationNumber)
		p.row(t("voucher.contact"), orDash(joinNonEmpty(" · ", deref(c.Requester.Email), deref(c.Requester.Phone), deref(c.Requester.Address))))
		p.raw(`</table><footer><p>`)
		p.text(t("voucher.footer"))
		p.raw(`</p><p class="muted">`)
		p.text(data.GeneratedAt.Format(dateTimeLayout))
		p.raw(`</p></footer>`)
		return p.err
	})
	return page(c.CaseNumber, data.Office, body)
}
