package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/ksm007/spliteasy-updated/allocation"
	"github.com/ksm007/spliteasy-updated/models"
)

// PDFService renders a saved split as a printable document: the item table
// followed by the per-participant cost breakdown. It uses the same Breakdown
// output as the JSON endpoint so exported totals never disagree with the
// on-screen ones.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

func (s *PDFService) RenderReceipt(receipt *models.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("SplitEasy Receipt", false)
	pdf.AddPage()

	title := receipt.Name
	if title == "" {
		title = "Receipt Split"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, receipt.CreatedAt.Format("Jan 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	s.renderItemTable(pdf, receipt)
	pdf.Ln(6)
	s.renderBreakdown(pdf, receipt)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *PDFService) renderItemTable(pdf *gofpdf.Fpdf, receipt *models.Receipt) {
	const (
		descWidth  = 90
		qtyWidth   = 25
		priceWidth = 35
		totalWidth = 35
	)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(descWidth, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(qtyWidth, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(priceWidth, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(totalWidth, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range receipt.Items {
		pdf.CellFormat(descWidth, 7, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(qtyWidth, 7, fmt.Sprintf("%g", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(priceWidth, 7, formatCurrency(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(totalWidth, 7, formatCurrency(allocation.ItemTotal(item)), "1", 1, "R", false, 0, "")
	}

	summary := []struct {
		label  string
		amount float64
	}{
		{"Subtotal", receipt.Subtotal},
		{"Tax", receipt.Tax},
		{"Tip", receipt.Tip},
		{"Total", receipt.Total},
	}
	for _, row := range summary {
		pdf.CellFormat(descWidth+qtyWidth, 7, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(priceWidth, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(totalWidth, 7, formatCurrency(row.amount), "", 1, "R", false, 0, "")
	}
}

func (s *PDFService) renderBreakdown(pdf *gofpdf.Fpdf, receipt *models.Receipt) {
	parsed := models.ParsedReceipt{
		Items:    receipt.Items,
		Subtotal: receipt.Subtotal,
		Tax:      receipt.Tax,
		Tip:      receipt.Tip,
		Total:    receipt.Total,
	}
	rows, unassigned := allocation.Breakdown(parsed, receipt.Participants)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, "Cost Breakdown", "", 1, "L", false, 0, "")

	for _, row := range rows {
		s.renderBreakdownRow(pdf, row)
	}
	if unassigned != nil {
		s.renderBreakdownRow(pdf, *unassigned)
	}
}

func (s *PDFService) renderBreakdownRow(pdf *gofpdf.Fpdf, row models.BreakdownRow) {
	const labelWidth, valueWidth = 60, 40

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, row.ParticipantName, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	lines := []struct {
		label  string
		amount float64
	}{
		{"Items:", row.ItemsTotal},
		{"Tax share:", row.TaxShare},
		{"Tip share:", row.TipShare},
	}
	for _, line := range lines {
		pdf.CellFormat(labelWidth, 6, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueWidth, 6, formatCurrency(line.amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth, 6, "Total:", "", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, 6, formatCurrency(row.Total), "", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func formatCurrency(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
