// Package allocation holds the pure cost-allocation math shared by the
// save-path validation, the cost-breakdown endpoint, the PDF export and the
// share emails. Every function here is side-effect free and total over finite
// inputs; numeric sanitization of parser output happens at the vision-service
// boundary, not here.
package allocation

import (
	"math"

	"github.com/ksm007/spliteasy-updated/models"
)

// Tolerance is the absolute currency tolerance used when deciding whether an
// item's assignments cover its total. It absorbs floating-point and rounding
// noise from proportional splits.
const Tolerance = 0.01

// ItemTotal returns the nominal total for one line item. Receipts sometimes
// show an already-extended price ("3 @ $5 = $15" folded into Price) and
// sometimes a unit price; IsMultiplied disambiguates per item.
func ItemTotal(item models.ReceiptItem) float64 {
	if item.IsMultiplied {
		return item.Price
	}
	return item.Price * item.Quantity
}

// AssignedTotal sums the amounts claimed against an item. Placeholder
// assignments with an empty participant id count toward the sum, so an item
// covered only by placeholders reads as fully assigned even though no
// participant row will carry that money.
func AssignedTotal(item models.ReceiptItem) float64 {
	var sum float64
	for _, a := range item.Assignments {
		sum += a.Amount
	}
	return sum
}

// RemainingAmount is the portion of the item total not yet claimed by any
// assignment. Never negative: over-assignment clamps to zero here and is
// reported separately by IsOverAssigned.
func RemainingAmount(item models.ReceiptItem) float64 {
	return math.Max(0, ItemTotal(item)-AssignedTotal(item))
}

// IsItemFullyAssigned reports whether the item's assignments cover its total
// within Tolerance.
func IsItemFullyAssigned(item models.ReceiptItem) bool {
	return math.Abs(ItemTotal(item)-AssignedTotal(item)) <= Tolerance
}

// IsOverAssigned reports whether the assignments exceed the item total by
// more than Tolerance.
func IsOverAssigned(item models.ReceiptItem) bool {
	return AssignedTotal(item)-ItemTotal(item) > Tolerance
}

// IsReceiptFullyAssigned reports whether every item on the receipt is fully
// assigned. An empty item list is vacuously fully assigned.
func IsReceiptFullyAssigned(items []models.ReceiptItem) bool {
	for _, item := range items {
		if !IsItemFullyAssigned(item) {
			return false
		}
	}
	return true
}
