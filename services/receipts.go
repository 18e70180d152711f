package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ksm007/spliteasy-updated/allocation"
	"github.com/ksm007/spliteasy-updated/models"
	"github.com/ksm007/spliteasy-updated/utils"
)

var (
	ErrReceiptNotFound  = errors.New("receipt not found")
	ErrNoParticipants   = errors.New("at least one participant is required")
	ErrNotFullyAssigned = errors.New("all funds must be assigned before saving")
)

type ReceiptService struct {
	db *sql.DB
}

func NewReceiptService(db *sql.DB) *ReceiptService {
	return &ReceiptService{db: db}
}

// Create persists a new split. The request carries client-side participant
// ids; they are remapped to fresh UUIDs and every assignment follows its
// participant across the remapping. Assignment coverage is checked against
// the request as sent, so placeholder rows still count toward full
// assignment, then placeholder and orphaned assignments are dropped before
// insert.
func (s *ReceiptService) Create(ctx context.Context, userID string, req *models.CreateReceiptRequest) (*models.CreateReceiptResponse, error) {
	if len(req.Participants) == 0 {
		return nil, ErrNoParticipants
	}
	if !allocation.IsReceiptFullyAssigned(req.Items) {
		return nil, ErrNotFullyAssigned
	}
	warnings := overAssignmentWarnings(req.Items)

	receiptID := uuid.New().String()
	now := time.Now()

	// Remap client-side participant ids to database UUIDs.
	idMap := make(map[string]string, len(req.Participants))
	for _, p := range req.Participants {
		idMap[p.ID] = uuid.New().String()
	}

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO receipts (id, user_id, name, subtotal, tax, tip, total, is_fully_assigned, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		`, receiptID, userID, req.Name, req.Subtotal, req.Tax, req.Tip, req.Total, true, now)
		if err != nil {
			return fmt.Errorf("failed to insert receipt: %w", err)
		}

		for _, p := range req.Participants {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO participants (id, receipt_id, name)
				VALUES ($1, $2, $3)
			`, idMap[p.ID], receiptID, p.Name)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}

		return insertItems(ctx, tx, receiptID, req.Items, idMap)
	})
	if err != nil {
		return nil, err
	}

	return &models.CreateReceiptResponse{
		ReceiptID:       receiptID,
		IsFullyAssigned: true,
		Warnings:        warnings,
	}, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, receiptID string, items []models.ReceiptItem, idMap map[string]string) error {
	for i, item := range items {
		itemID := uuid.New().String()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, receipt_id, description, quantity, price, is_multiplied, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, itemID, receiptID, item.Description, item.Quantity, item.Price, item.IsMultiplied, i)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, a := range item.Assignments {
			participantID, ok := idMap[a.ParticipantID]
			if a.ParticipantID == "" || !ok {
				// Placeholder or orphaned assignment: counted for coverage,
				// not persisted.
				continue
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO assignments (id, item_id, participant_id, amount)
				VALUES ($1, $2, $3, $4)
			`, uuid.New().String(), itemID, participantID, a.Amount)
			if err != nil {
				return fmt.Errorf("failed to insert assignment: %w", err)
			}
		}
	}
	return nil
}

func overAssignmentWarnings(items []models.ReceiptItem) []string {
	var warnings []string
	for _, item := range items {
		if allocation.IsOverAssigned(item) {
			warnings = append(warnings, fmt.Sprintf(
				"item %q is over-assigned: %.2f assigned against a total of %.2f",
				item.Description, allocation.AssignedTotal(item), allocation.ItemTotal(item)))
		}
	}
	return warnings
}

// GetByID loads a receipt with its participants, items and assignments.
// Assignments carry only participant id and amount; nested participant rows
// are not embedded in the item payload.
func (s *ReceiptService) GetByID(ctx context.Context, receiptID, userID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var name sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, subtotal, tax, tip, total, is_fully_assigned, created_at, updated_at
		FROM receipts
		WHERE id = $1 AND user_id = $2
	`, receiptID, userID).Scan(&receipt.ID, &name, &receipt.Subtotal, &receipt.Tax, &receipt.Tip,
		&receipt.Total, &receipt.IsFullyAssigned, &receipt.CreatedAt, &receipt.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	receipt.Name = name.String
	receipt.UserID = userID

	participants, err := s.loadParticipants(ctx, []string{receiptID})
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx, []string{receiptID})
	if err != nil {
		return nil, err
	}
	receipt.Participants = orEmptyParticipants(participants[receiptID])
	receipt.Items = orEmptyItems(items[receiptID])
	return receipt, nil
}

// loadParticipants fetches the participants of a batch of receipts in one
// query, grouped by receipt id.
func (s *ReceiptService) loadParticipants(ctx context.Context, receiptIDs []string) (map[string][]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, receipt_id, name FROM participants WHERE receipt_id = ANY($1) ORDER BY name
	`, pq.Array(receiptIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	byReceipt := make(map[string][]models.Participant, len(receiptIDs))
	for rows.Next() {
		var p models.Participant
		var receiptID string
		if err := rows.Scan(&p.ID, &receiptID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		byReceipt[receiptID] = append(byReceipt[receiptID], p)
	}
	return byReceipt, rows.Err()
}

type itemRef struct {
	receiptID string
	index     int
}

// loadItems fetches the items of a batch of receipts, then all of their
// assignments, in two queries total.
func (s *ReceiptService) loadItems(ctx context.Context, receiptIDs []string) (map[string][]models.ReceiptItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, receipt_id, description, quantity, price, is_multiplied
		FROM items WHERE receipt_id = ANY($1) ORDER BY receipt_id, position
	`, pq.Array(receiptIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	byReceipt := make(map[string][]models.ReceiptItem, len(receiptIDs))
	refs := make(map[string]itemRef)
	var itemIDs []string
	for rows.Next() {
		var item models.ReceiptItem
		var receiptID string
		if err := rows.Scan(&item.ID, &receiptID, &item.Description, &item.Quantity, &item.Price, &item.IsMultiplied); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Assignments = []models.ItemAssignment{}
		byReceipt[receiptID] = append(byReceipt[receiptID], item)
		refs[item.ID] = itemRef{receiptID: receiptID, index: len(byReceipt[receiptID]) - 1}
		itemIDs = append(itemIDs, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return byReceipt, nil
	}

	assignRows, err := s.db.QueryContext(ctx, `
		SELECT item_id, participant_id, amount FROM assignments WHERE item_id = ANY($1)
	`, pq.Array(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var itemID string
		var a models.ItemAssignment
		if err := assignRows.Scan(&itemID, &a.ParticipantID, &a.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		ref, ok := refs[itemID]
		if !ok {
			continue
		}
		items := byReceipt[ref.receiptID]
		items[ref.index].Assignments = append(items[ref.index].Assignments, a)
	}
	return byReceipt, assignRows.Err()
}

func orEmptyParticipants(participants []models.Participant) []models.Participant {
	if participants == nil {
		return []models.Participant{}
	}
	return participants
}

func orEmptyItems(items []models.ReceiptItem) []models.ReceiptItem {
	if items == nil {
		return []models.ReceiptItem{}
	}
	return items
}

// List returns the user's receipts, newest first, with nested collections
// loaded in a fixed number of queries regardless of receipt count.
func (s *ReceiptService) List(ctx context.Context, userID string) ([]models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, subtotal, tax, tip, total, is_fully_assigned, created_at, updated_at
		FROM receipts WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	receipts := []models.Receipt{}
	var ids []string
	for rows.Next() {
		var receipt models.Receipt
		var name sql.NullString
		if err := rows.Scan(&receipt.ID, &name, &receipt.Subtotal, &receipt.Tax, &receipt.Tip,
			&receipt.Total, &receipt.IsFullyAssigned, &receipt.CreatedAt, &receipt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipt.Name = name.String
		receipt.UserID = userID
		receipts = append(receipts, receipt)
		ids = append(ids, receipt.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return receipts, nil
	}

	participants, err := s.loadParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range receipts {
		receipts[i].Participants = orEmptyParticipants(participants[receipts[i].ID])
		receipts[i].Items = orEmptyItems(items[receipts[i].ID])
	}
	return receipts, nil
}

// Update replaces the receipt's scalar fields and, when the request carries
// items or participants, its nested collections. is_fully_assigned is
// recomputed from whatever the receipt looks like after the update.
func (s *ReceiptService) Update(ctx context.Context, receiptID, userID string, req *models.UpdateReceiptRequest) (*models.Receipt, error) {
	existing, err := s.GetByID(ctx, receiptID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Subtotal != nil {
		existing.Subtotal = *req.Subtotal
	}
	if req.Tax != nil {
		existing.Tax = *req.Tax
	}
	if req.Tip != nil {
		existing.Tip = *req.Tip
	}
	if req.Total != nil {
		existing.Total = *req.Total
	}

	replaceNested := req.Items != nil || req.Participants != nil
	if req.Participants != nil {
		existing.Participants = req.Participants
	}
	if req.Items != nil {
		existing.Items = req.Items
	}
	existing.IsFullyAssigned = allocation.IsReceiptFullyAssigned(existing.Items)
	now := time.Now()

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE receipts
			SET name = $1, subtotal = $2, tax = $3, tip = $4, total = $5, is_fully_assigned = $6, updated_at = $7
			WHERE id = $8 AND user_id = $9
		`, existing.Name, existing.Subtotal, existing.Tax, existing.Tip, existing.Total,
			existing.IsFullyAssigned, now, receiptID, userID)
		if err != nil {
			return fmt.Errorf("failed to update receipt: %w", err)
		}

		if !replaceNested {
			return nil
		}

		// Full replace: cascades clear items, assignments and participants.
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE receipt_id = $1`, receiptID); err != nil {
			return fmt.Errorf("failed to clear items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE receipt_id = $1`, receiptID); err != nil {
			return fmt.Errorf("failed to clear participants: %w", err)
		}

		idMap := make(map[string]string, len(existing.Participants))
		for i, p := range existing.Participants {
			newID := uuid.New().String()
			idMap[p.ID] = newID
			existing.Participants[i].ID = newID
			_, err := tx.ExecContext(ctx, `
				INSERT INTO participants (id, receipt_id, name)
				VALUES ($1, $2, $3)
			`, newID, receiptID, p.Name)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}

		return insertItems(ctx, tx, receiptID, existing.Items, idMap)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, receiptID, userID)
}

// Delete removes a receipt; items, participants and assignments cascade.
func (s *ReceiptService) Delete(ctx context.Context, receiptID, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM receipts WHERE id = $1 AND user_id = $2
	`, receiptID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrReceiptNotFound
	}
	return nil
}

// Breakdown computes the per-participant cost rows for a stored receipt.
func (s *ReceiptService) Breakdown(ctx context.Context, receiptID, userID string) (*models.BreakdownResponse, error) {
	receipt, err := s.GetByID(ctx, receiptID, userID)
	if err != nil {
		return nil, err
	}

	parsed := models.ParsedReceipt{
		Items:    receipt.Items,
		Subtotal: receipt.Subtotal,
		Tax:      receipt.Tax,
		Tip:      receipt.Tip,
		Total:    receipt.Total,
	}
	rows, unassigned := allocation.Breakdown(parsed, receipt.Participants)

	grand := receipt.Subtotal + receipt.Tax + receipt.Tip
	return &models.BreakdownResponse{
		ReceiptID:  receipt.ID,
		Rows:       rows,
		Unassigned: unassigned,
		GrandTotal: grand,
	}, nil
}
