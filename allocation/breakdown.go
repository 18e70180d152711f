package allocation

import "github.com/ksm007/spliteasy-updated/models"

// Breakdown apportions the bill to its participants. Each participant's
// itemsTotal is the sum of their assignment amounts across every item; tax
// and tip are distributed in proportion to itemsTotal/subtotal. A zero or
// negative subtotal yields zero tax and tip shares for everyone rather than
// dividing by zero.
//
// The returned Unassigned row aggregates each item's remaining (unclaimed)
// amount using the identical proportion formula, so per-participant totals
// plus the unassigned total add up to the grand total, rounding aside. It is
// nil when nothing is unassigned.
func Breakdown(receipt models.ParsedReceipt, participants []models.Participant) ([]models.BreakdownRow, *models.BreakdownRow) {
	rows := make([]models.BreakdownRow, 0, len(participants))

	for _, p := range participants {
		var itemsTotal float64
		for _, item := range receipt.Items {
			for _, a := range item.Assignments {
				if a.ParticipantID == p.ID {
					itemsTotal += a.Amount
				}
			}
		}

		taxShare, tipShare := shares(receipt, itemsTotal)
		rows = append(rows, models.BreakdownRow{
			ParticipantID:   p.ID,
			ParticipantName: p.Name,
			ItemsTotal:      itemsTotal,
			TaxShare:        taxShare,
			TipShare:        tipShare,
			Total:           itemsTotal + taxShare + tipShare,
		})
	}

	var unassignedTotal float64
	for _, item := range receipt.Items {
		unassignedTotal += RemainingAmount(item)
	}
	if unassignedTotal <= 0 {
		return rows, nil
	}

	taxShare, tipShare := shares(receipt, unassignedTotal)
	unassigned := &models.BreakdownRow{
		ParticipantName: "Unassigned",
		ItemsTotal:      unassignedTotal,
		TaxShare:        taxShare,
		TipShare:        tipShare,
		Total:           unassignedTotal + taxShare + tipShare,
	}
	return rows, unassigned
}

func shares(receipt models.ParsedReceipt, itemsTotal float64) (taxShare, tipShare float64) {
	if receipt.Subtotal <= 0 {
		return 0, 0
	}
	proportion := itemsTotal / receipt.Subtotal
	return receipt.Tax * proportion, receipt.Tip * proportion
}
