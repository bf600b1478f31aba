// Package render produces the printable PDF for a payout invoice.
package render

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	invoicedomain "github.com/policywaylabs/policyway/internal/invoice/domain"
)

type Renderer struct {
	companyName string
}

func NewRenderer() *Renderer {
	return &Renderer{companyName: "PolicyWay Commission Payouts"}
}

// Render lays the invoice out as a single page PDF.
func (r *Renderer) Render(invoice *invoicedomain.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(
			text.NewCol(8, r.companyName, props.Text{Size: 16, Style: fontstyle.Bold}),
			text.NewCol(4, "PAYOUT INVOICE", props.Text{Size: 12, Align: align.Right, Style: fontstyle.Bold}),
		),
		row.New(4).Add(col.New(12)),
		row.New(2).Add(line.NewCol(12)),
		row.New(4).Add(col.New(12)),
	)

	m.AddRows(
		labelRow("Invoice Number", invoice.InvoiceNumber),
		labelRow("Status", strings.ToUpper(string(invoice.Status))),
		labelRow("Recipient", fmt.Sprintf("%s (%s)", invoice.RecipientName, invoice.RecipientType)),
		labelRow("Issued", invoice.IssuedAt.Format("02 Jan 2006")),
		labelRow("Due", invoice.DueDate.Format("02 Jan 2006")),
	)
	if invoice.PaidAt != nil {
		m.AddRows(labelRow("Paid", invoice.PaidAt.Format("02 Jan 2006")))
	}

	m.AddRows(
		row.New(6).Add(col.New(12)),
		row.New(2).Add(line.NewCol(12)),
		row.New(10).Add(
			text.NewCol(8, "Amount Payable", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
			text.NewCol(4, fmt.Sprintf("%s %s", invoice.Currency, invoice.Amount.StringFixed(2)),
				props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
		),
		row.New(2).Add(line.NewCol(12)),
	)

	if invoice.Notes != "" {
		m.AddRows(
			row.New(4).Add(col.New(12)),
			row.New(8).Add(text.NewCol(12, invoice.Notes, props.Text{Size: 9})),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func labelRow(label, value string) core.Row {
	return row.New(7).Add(
		text.NewCol(3, label, props.Text{Size: 9, Style: fontstyle.Bold, Top: 1}),
		text.NewCol(9, value, props.Text{Size: 9, Top: 1}),
	)
}
