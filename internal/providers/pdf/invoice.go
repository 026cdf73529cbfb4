package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData is the pre-formatted content of a tenant invoice. Amounts are
// already rendered as strings.
type InvoiceData struct {
	InvoiceNumber string
	Period        string
	IssueDate     string
	Status        string

	BuildingName    string
	BuildingAddress string
	RoomNumber      string
	TenantName      string

	Items []InvoiceItem

	Subtotal       string
	Discount       string
	DiscountReason string
	Total          string
}

type InvoiceItem struct {
	Description string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) (io.Reader, error) {
	m := newDocument()

	m.AddRow(12,
		text.NewCol(8, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, invoice.Status, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   3,
		}),
	)

	addHeader(m, invoice)
	addItems(m, invoice)

	return generate(m)
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	return maroto.New(cfg)
}

func addHeader(m core.Maroto, invoice InvoiceData) {
	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Period: "+invoice.Period, props.Text{Top: 4}),
			text.New("Date of issue: "+invoice.IssueDate, props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(25,
		col.New(6).Add(
			text.New(invoice.BuildingName, props.Text{Style: fontstyle.Bold}),
			text.New(invoice.BuildingAddress, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.TenantName, props.Text{Top: 5}),
			text.New("Room "+invoice.RoomNumber, props.Text{Top: 9}),
		),
	)
}

func addItems(m core.Maroto, invoice InvoiceData) {
	m.AddRow(10,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range invoice.Items {
		m.AddRow(8,
			text.NewCol(8, item.Description, props.Text{Size: 9}),
			text.NewCol(4, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Subtotal", props.Text{Size: 9}),
		text.NewCol(3, invoice.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	if invoice.Discount != "" {
		label := "Discount"
		if invoice.DiscountReason != "" {
			label += " (" + invoice.DiscountReason + ")"
		}
		m.AddRow(8,
			col.New(6),
			text.NewCol(3, label, props.Text{Size: 9}),
			text.NewCol(3, "-"+invoice.Discount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(3, invoice.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)
}

func generate(m core.Maroto) (io.Reader, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
