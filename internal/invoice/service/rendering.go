package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/rentbook/internal/invoice/domain"
	invoiceformat "github.com/smallbiznis/rentbook/internal/invoice/format"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	"github.com/smallbiznis/rentbook/internal/providers/pdf"
	"github.com/smallbiznis/rentbook/pkg/money"
	"github.com/smallbiznis/rentbook/pkg/period"
)

const pdfDateLayout = "2006-01-02"

func (s *Service) RenderInvoicePDF(ctx context.Context, id string) ([]byte, error) {
	item, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.invoiceData(ctx, item)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	if item.Status == invoicedomain.InvoiceStatusPaid {
		receipt := pdf.ReceiptData{InvoiceData: data}
		if item.PaidAt != nil {
			receipt.DatePaid = item.PaidAt.Format(pdfDateLayout)
		}
		r, err = s.pdf.GenerateReceipt(ctx, receipt)
	} else {
		r, err = s.pdf.GenerateInvoice(ctx, data)
	}
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.New("pdf_renderer_not_configured")
	}
	return io.ReadAll(r)
}

func (s *Service) invoiceData(ctx context.Context, item *invoicedomain.Invoice) (pdf.InvoiceData, error) {
	data := pdf.InvoiceData{
		Period:    period.New(item.Year, item.Month).String(),
		IssueDate: item.CreatedAt.Format(pdfDateLayout),
		Status:    strings.ToUpper(string(item.Status)),
	}

	if contract, err := s.lease.FindContract(ctx, item.ContractID); err != nil {
		return data, err
	} else if contract != nil {
		room, err := s.property.FindRoom(ctx, contract.RoomID)
		if err != nil {
			return data, err
		}
		if room != nil {
			data.RoomNumber = room.RoomNumber
			building, err := s.property.FindBuilding(ctx, room.BuildingID)
			if err != nil {
				return data, err
			}
			if building != nil {
				data.BuildingName = building.Name
				if building.Address != nil {
					data.BuildingAddress = *building.Address
				}
			}
		}

		tenant, err := s.lease.GetTenant(ctx, contract.ID.String())
		if err != nil && !errors.Is(err, leasedomain.ErrTenantNotFound) {
			return data, err
		}
		if tenant != nil {
			data.TenantName = tenant.FullName
		}
	}

	number, err := invoiceformat.FormatInvoiceNumber(invoiceformat.DefaultInvoiceNumberTemplate, invoiceformat.NumberParts{
		Year:       item.Year,
		Month:      item.Month,
		RoomNumber: data.RoomNumber,
		InvoiceID:  item.ID.String(),
	})
	if err != nil {
		return data, err
	}
	data.InvoiceNumber = number

	data.Items = append(data.Items,
		pdf.InvoiceItem{Description: "Rent", Amount: invoiceformat.FormatAmount(item.RentAmount)},
		pdf.InvoiceItem{Description: "Electricity", Amount: invoiceformat.FormatAmount(item.ElectricityAmount)},
		pdf.InvoiceItem{Description: "Water", Amount: invoiceformat.FormatAmount(item.WaterAmount)},
	)

	keys := make([]string, 0, len(item.OtherFees))
	for key := range item.OtherFees {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		amount := money.Coerce(item.OtherFees[key])
		if amount.IsZero() {
			continue
		}
		data.Items = append(data.Items, pdf.InvoiceItem{
			Description: feeLabel(key),
			Amount:      invoiceformat.FormatAmount(amount),
		})
	}

	subtotal := item.Total().Add(item.DiscountAmount)
	data.Subtotal = invoiceformat.FormatAmount(subtotal)
	if item.DiscountAmount.GreaterThan(decimal.Zero) {
		data.Discount = invoiceformat.FormatAmount(item.DiscountAmount)
		if item.DiscountReason != nil {
			data.DiscountReason = *item.DiscountReason
		}
	}
	data.Total = invoiceformat.FormatAmount(item.Total())
	return data, nil
}

func feeLabel(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if len(words) == 0 {
		return key
	}
	return fmt.Sprintf("%s fee", strings.Join(words, " "))
}
