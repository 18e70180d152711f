package allocation

import (
	"math"
	"testing"

	"github.com/ksm007/spliteasy-updated/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestBreakdownProportionalTaxAndTip(t *testing.T) {
	// Receipt subtotal=100, tax=8, tip=15; A assigned $60, B assigned $40.
	receipt := models.ParsedReceipt{
		Subtotal: 100, Tax: 8, Tip: 15, Total: 123,
		Items: []models.ReceiptItem{
			{
				Price: 60, Quantity: 1,
				Assignments: []models.ItemAssignment{{ParticipantID: "a", Amount: 60}},
			},
			{
				Price: 40, Quantity: 1,
				Assignments: []models.ItemAssignment{{ParticipantID: "b", Amount: 40}},
			},
		},
	}
	participants := []models.Participant{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	rows, unassigned := Breakdown(receipt, participants)
	if unassigned != nil {
		t.Fatalf("fully assigned receipt produced unassigned row: %+v", unassigned)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	a, b := rows[0], rows[1]
	if !almostEqual(a.TaxShare, 4.8) || !almostEqual(a.TipShare, 9.0) || !almostEqual(a.Total, 73.8) {
		t.Errorf("A = {tax %v, tip %v, total %v}, want {4.8, 9.0, 73.8}", a.TaxShare, a.TipShare, a.Total)
	}
	if !almostEqual(b.TaxShare, 3.2) || !almostEqual(b.TipShare, 6.0) || !almostEqual(b.Total, 49.2) {
		t.Errorf("B = {tax %v, tip %v, total %v}, want {3.2, 6.0, 49.2}", b.TaxShare, b.TipShare, b.Total)
	}

	// Conservation: items totals sum to subtotal, grand totals sum to
	// subtotal + tax + tip.
	if !almostEqual(a.ItemsTotal+b.ItemsTotal, receipt.Subtotal) {
		t.Errorf("items totals %v + %v do not sum to subtotal %v", a.ItemsTotal, b.ItemsTotal, receipt.Subtotal)
	}
	if !almostEqual(a.Total+b.Total, receipt.Subtotal+receipt.Tax+receipt.Tip) {
		t.Errorf("totals %v + %v do not sum to %v", a.Total, b.Total, receipt.Subtotal+receipt.Tax+receipt.Tip)
	}
}

func TestBreakdownZeroSubtotal(t *testing.T) {
	receipt := models.ParsedReceipt{
		Subtotal: 0, Tax: 5, Tip: 3,
		Items: []models.ReceiptItem{
			{
				Price: 10, Quantity: 1,
				Assignments: []models.ItemAssignment{{ParticipantID: "a", Amount: 4}},
			},
		},
	}
	rows, unassigned := Breakdown(receipt, []models.Participant{{ID: "a", Name: "A"}})

	if rows[0].TaxShare != 0 || rows[0].TipShare != 0 {
		t.Errorf("zero subtotal must yield exactly zero shares, got tax %v tip %v", rows[0].TaxShare, rows[0].TipShare)
	}
	if unassigned == nil {
		t.Fatal("expected an unassigned row for the unclaimed $6")
	}
	if unassigned.TaxShare != 0 || unassigned.TipShare != 0 {
		t.Errorf("unassigned shares must be zero with zero subtotal, got tax %v tip %v", unassigned.TaxShare, unassigned.TipShare)
	}
}

func TestBreakdownUnassignedRow(t *testing.T) {
	receipt := models.ParsedReceipt{
		Subtotal: 30, Tax: 3, Tip: 0,
		Items: []models.ReceiptItem{
			{
				Price: 20, Quantity: 1,
				Assignments: []models.ItemAssignment{{ParticipantID: "a", Amount: 20}},
			},
			{Price: 10, Quantity: 1},
		},
	}
	participants := []models.Participant{{ID: "a", Name: "Alice"}}

	rows, unassigned := Breakdown(receipt, participants)
	if unassigned == nil {
		t.Fatal("expected unassigned row")
	}
	if !almostEqual(unassigned.ItemsTotal, 10) {
		t.Errorf("unassigned items total = %v, want 10", unassigned.ItemsTotal)
	}
	// Same proportion formula as participant rows: 10/30 of the $3 tax.
	if !almostEqual(unassigned.TaxShare, 1.0) {
		t.Errorf("unassigned tax share = %v, want 1.0", unassigned.TaxShare)
	}

	// Participant rows and the unassigned row together cover the grand total.
	sum := unassigned.Total
	for _, r := range rows {
		sum += r.Total
	}
	if !almostEqual(sum, 33) {
		t.Errorf("rows + unassigned = %v, want 33", sum)
	}
}

func TestBreakdownPlaceholderAssignments(t *testing.T) {
	// A placeholder assignment (empty participant id) makes the item count as
	// assigned, so no participant row claims it and no unassigned row appears
	// for it. This is the behavior the assignment-table UI relies on while a
	// row's participant is still being picked.
	receipt := models.ParsedReceipt{
		Subtotal: 10, Tax: 1, Tip: 0,
		Items: []models.ReceiptItem{
			{
				Price: 10, Quantity: 1,
				Assignments: []models.ItemAssignment{{ParticipantID: "", Amount: 10}},
			},
		},
	}
	participants := []models.Participant{{ID: "a", Name: "A"}}

	rows, unassigned := Breakdown(receipt, participants)
	if rows[0].ItemsTotal != 0 {
		t.Errorf("placeholder amount leaked into participant row: %v", rows[0].ItemsTotal)
	}
	if unassigned != nil {
		t.Errorf("placeholder-covered item produced unassigned row: %+v", unassigned)
	}
	if !IsItemFullyAssigned(receipt.Items[0]) {
		t.Error("placeholder-covered item should read as fully assigned")
	}
}

func TestBreakdownParticipantWithNoAssignments(t *testing.T) {
	receipt := models.ParsedReceipt{
		Subtotal: 10, Tax: 1, Tip: 2,
		Items: []models.ReceiptItem{
			{
				Price: 10, Quantity: 1,
				Assignments: []models.ItemAssignment{{ParticipantID: "a", Amount: 10}},
			},
		},
	}
	participants := []models.Participant{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	rows, _ := Breakdown(receipt, participants)
	if rows[1].ItemsTotal != 0 || rows[1].TaxShare != 0 || rows[1].TipShare != 0 || rows[1].Total != 0 {
		t.Errorf("participant with no assignments should owe nothing, got %+v", rows[1])
	}
}

func TestBreakdownSplitAcrossParticipants(t *testing.T) {
	// One item split three ways by dollar amount, with rounding noise within
	// tolerance of the item total.
	receipt := models.ParsedReceipt{
		Subtotal: 10, Tax: 0.8, Tip: 1.5,
		Items: []models.ReceiptItem{
			{
				Price: 10, Quantity: 1,
				Assignments: []models.ItemAssignment{
					{ParticipantID: "a", Amount: 3.33},
					{ParticipantID: "b", Amount: 3.33},
					{ParticipantID: "c", Amount: 3.34},
				},
			},
		},
	}
	participants := []models.Participant{
		{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"},
	}

	if !IsReceiptFullyAssigned(receipt.Items) {
		t.Fatal("3.33+3.33+3.34 should cover 10.00 within tolerance")
	}

	rows, unassigned := Breakdown(receipt, participants)
	if unassigned != nil {
		t.Fatalf("unexpected unassigned row: %+v", unassigned)
	}
	var sum float64
	for _, r := range rows {
		sum += r.Total
	}
	if math.Abs(sum-(10+0.8+1.5)) > Tolerance {
		t.Errorf("totals sum to %v, want %v within tolerance", sum, 12.3)
	}
}
