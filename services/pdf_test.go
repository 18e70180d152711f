package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksm007/spliteasy-updated/models"
)

func TestRenderReceipt(t *testing.T) {
	receipt := &models.Receipt{
		ID:       "r1",
		Name:     "Dinner at Mario's",
		Subtotal: 100,
		Tax:      8,
		Tip:      15,
		Total:    123,
		Participants: []models.Participant{
			{ID: "a", Name: "Alice"},
			{ID: "b", Name: "Bob"},
		},
		Items: []models.ReceiptItem{
			{
				Description: "Pasta", Quantity: 2, Price: 30,
				Assignments: []models.ItemAssignment{{ParticipantID: "a", Amount: 60}},
			},
			{
				Description: "Wine", Quantity: 1, Price: 40,
				Assignments: []models.ItemAssignment{{ParticipantID: "b", Amount: 40}},
			},
		},
		CreatedAt: time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
	}

	pdfBytes, err := NewPDFService().RenderReceipt(receipt)
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestRenderReceiptWithUnassignedRow(t *testing.T) {
	receipt := &models.Receipt{
		ID:       "r2",
		Subtotal: 30,
		Tax:      3,
		Total:    33,
		Participants: []models.Participant{
			{ID: "a", Name: "Alice"},
		},
		Items: []models.ReceiptItem{
			{
				Description: "Salad", Quantity: 1, Price: 20,
				Assignments: []models.ItemAssignment{{ParticipantID: "a", Amount: 20}},
			},
			{Description: "Soup", Quantity: 1, Price: 10},
		},
		CreatedAt: time.Now(),
	}

	pdfBytes, err := NewPDFService().RenderReceipt(receipt)
	require.NoError(t, err)
	assert.NotEmpty(t, pdfBytes)
}

func TestRenderReceiptEmpty(t *testing.T) {
	receipt := &models.Receipt{ID: "r3", CreatedAt: time.Now()}

	pdfBytes, err := NewPDFService().RenderReceipt(receipt)
	require.NoError(t, err)
	assert.NotEmpty(t, pdfBytes)
}
