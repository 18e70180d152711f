package models

import "time"

// ============================================================================
// RECEIPT MODELS
// ============================================================================

// ItemAssignment is a claim that a participant owes a specific dollar amount
// for one item. An empty ParticipantID is an unassigned placeholder row.
type ItemAssignment struct {
	ParticipantID string  `json:"participantId"`
	Amount        float64 `json:"amount" binding:"min=0"`
}

// ReceiptItem is one purchased line on a receipt.
// When IsMultiplied is true, Price is the already-extended line total
// ("3 @ $5 = $15" folded into Price); otherwise Price is a unit price and the
// line total is Price × Quantity.
type ReceiptItem struct {
	ID           string           `json:"id,omitempty"`
	Description  string           `json:"description"`
	Quantity     float64          `json:"quantity"`
	Price        float64          `json:"price"`
	IsMultiplied bool             `json:"isMultiplied"`
	Assignments  []ItemAssignment `json:"assignments"`
}

// Participant is a person sharing the bill.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Receipt is the aggregate root for one parsed/split bill.
// IsFullyAssigned is recomputed at save time and is not guaranteed to stay
// correct after later edits unless recomputed.
type Receipt struct {
	ID              string        `json:"id"`
	UserID          string        `json:"-"`
	Name            string        `json:"name,omitempty"`
	Subtotal        float64       `json:"subtotal"`
	Tax             float64       `json:"tax"`
	Tip             float64       `json:"tip"`
	Total           float64       `json:"total"`
	IsFullyAssigned bool          `json:"isFullyAssigned"`
	Items           []ReceiptItem `json:"items"`
	Participants    []Participant `json:"participants"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ParsedReceipt is what the vision parser returns: raw items with no
// assignments yet, plus the money summary read off the receipt.
type ParsedReceipt struct {
	Items    []ReceiptItem `json:"items"`
	Subtotal float64       `json:"subtotal"`
	Tax      float64       `json:"tax"`
	Tip      float64       `json:"tip"`
	Total    float64       `json:"total"`
}

// ============================================================================
// RECEIPT REQUESTS / RESPONSES
// ============================================================================

type CreateReceiptRequest struct {
	Name         string        `json:"name"`
	Subtotal     float64       `json:"subtotal"`
	Tax          float64       `json:"tax"`
	Tip          float64       `json:"tip"`
	Total        float64       `json:"total"`
	Items        []ReceiptItem `json:"items" binding:"required"`
	Participants []Participant `json:"participants" binding:"required"`
}

type UpdateReceiptRequest struct {
	Name         *string       `json:"name"`
	Subtotal     *float64      `json:"subtotal"`
	Tax          *float64      `json:"tax"`
	Tip          *float64      `json:"tip"`
	Total        *float64      `json:"total"`
	Items        []ReceiptItem `json:"items"`
	Participants []Participant `json:"participants"`
}

type CreateReceiptResponse struct {
	ReceiptID       string   `json:"receipt_id"`
	IsFullyAssigned bool     `json:"is_fully_assigned"`
	Warnings        []string `json:"warnings,omitempty"`
}

// BreakdownRow is one participant's share of the bill: their assigned items
// plus proportional tax and tip. The Unassigned pseudo-row uses the same
// shape with an empty ParticipantID.
type BreakdownRow struct {
	ParticipantID   string  `json:"participant_id,omitempty"`
	ParticipantName string  `json:"participant_name"`
	ItemsTotal      float64 `json:"items_total"`
	TaxShare        float64 `json:"tax_share"`
	TipShare        float64 `json:"tip_share"`
	Total           float64 `json:"total"`
}

// ShareRequest maps participants of a split to the email addresses their
// breakdown rows should be sent to.
type ShareRequest struct {
	Recipients []ShareRecipient `json:"recipients" binding:"required,min=1,dive"`
}

type ShareRecipient struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
}

type BreakdownResponse struct {
	ReceiptID  string         `json:"receipt_id"`
	Rows       []BreakdownRow `json:"rows"`
	Unassigned *BreakdownRow  `json:"unassigned,omitempty"`
	GrandTotal float64        `json:"grand_total"`
}
