package documents

import (
	"context"
	"io"
	"strconv"
	"time"

	"pqr_flow_app_go/services/i18n"

	"github.com/a-h/templ"
)

// ReportRow is one labelled count of a report section
type ReportRow struct {
	Label string
	Count int64
}

// ReportSection is a titled table of counts. Title is a translation key.
type ReportSection struct {
	Title string
	Rows  []ReportRow
}

// ReportData is the content of the statistics report
type ReportData struct {
	Office      Office
	From        *time.Time
	To          *time.Time
	Total       int64
	Overdue     int64
	Sections    []ReportSection
	GeneratedAt time.Time
}

// Report renders the statistics report
func Report(data ReportData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t := func(key string) string { return i18n.T(ctx, key) }
		p := &printer{w: w}

		p.raw(`<h2>`)
		p.text(t("report.title"))
		p.raw(`</h2><p class="muted">`)
		if data.From == nil && data.To == nil {
			p.text(t("report.all_dates"))
		} else {
			p.text(i18n.T(ctx, "report.range", i18n.Vars{
				"from": formatDate(data.From),
				"to":   formatDate(data.To),
			}))
		}
		p.raw(`</p><table>`)
		p.row(t("report.total"), strconv.FormatInt(data.Total, 10))
		p.row(t("report.overdue"), strconv.FormatInt(data.Overdue, 10))
		p.raw(`</table>`)

		for _, section := range data.Sections {
			p.raw(`<h2>`)
			p.text(t(section.Title))
			p.raw(`</h2><table class="grid"><thead><tr><th>`)
			p.text(t("report.label"))
			p.raw(`</th><th class="right">`)
			p.text(t("report.count"))
			p.raw(`</th></tr></thead><tbody>`)
			for _, r := range section.Rows {
				p.raw(`<tr><td>`)
				p.text(r.Label)
				p.raw(`</td><td class="right">`)
				p.text(strconv.FormatInt(r.Count, 10))
				p.raw(`</td></tr>`)
			}
			p.raw(`</tbody></table>`)
		}

		p.raw(`<footer class="muted">`)
		p.text(i18n.T(ctx, "report.generated", i18n.Vars{
			"date": data.GeneratedAt.Format(dateTimeLayout),
		}))
		p.raw(`</footer>`)
		return p.err
	})
	return page(reportTitle(data), data.Office, body)
}

func reportTitle(data ReportData) string {
	return "PQR " + data.GeneratedAt.Format("2006-01-02")
}
