package pdf

import (
	"context"
	"io"

	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReceiptData is a paid invoice.
type ReceiptData struct {
	InvoiceData
	DatePaid string
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt ReceiptData) (io.Reader, error) {
	m := newDocument()

	m.AddRow(12,
		text.NewCol(8, "Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "PAID", props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   3,
		}),
	)

	addHeader(m, receipt.InvoiceData)
	if receipt.DatePaid != "" {
		m.AddRow(8,
			text.NewCol(12, "Date paid: "+receipt.DatePaid, props.Text{Size: 9}),
		)
	}
	addItems(m, receipt.InvoiceData)

	return generate(m)
}
