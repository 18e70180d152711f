package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ksm007/spliteasy-updated/middleware"
	"github.com/ksm007/spliteasy-updated/models"
	"github.com/ksm007/spliteasy-updated/services"
)

// maxUploadSize bounds receipt photo uploads at 10 MB.
const maxUploadSize = 10 << 20

type ReceiptHandler struct {
	Receipts *services.ReceiptService
	Vision   *services.VisionService
	PDF      *services.PDFService
	Email    *services.EmailService
	WS       *WSHandler
}

func NewReceiptHandler(receipts *services.ReceiptService, vision *services.VisionService,
	pdf *services.PDFService, email *services.EmailService, ws *WSHandler) *ReceiptHandler {
	return &ReceiptHandler{
		Receipts: receipts,
		Vision:   vision,
		PDF:      pdf,
		Email:    email,
		WS:       ws,
	}
}

// Process accepts a multipart receipt photo and returns the parsed line
// items and totals. Nothing is persisted; the client assigns amounts and
// saves with Create.
func (h *ReceiptHandler) Process(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 10MB limit"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an image"})
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	parsed, err := h.Vision.ParseReceipt(c.Request.Context(), image, mimeType)
	if err != nil {
		log.Printf("Receipt processing error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to process receipt"})
		return
	}

	c.JSON(http.StatusOK, parsed)
}

func (h *ReceiptHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Receipts.Create(c.Request.Context(), userID, &req)
	if errors.Is(err, services.ErrNoParticipants) || errors.Is(err, services.ErrNotFullyAssigned) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save receipt"})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ReceiptHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipts, err := h.Receipts.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch receipts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

func (h *ReceiptHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipt, err := h.Receipts.GetByID(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, services.ErrReceiptNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch receipt"})
		return
	}

	c.JSON(http.StatusOK, receipt)
}

func (h *ReceiptHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.Receipts.Update(c.Request.Context(), c.Param("id"), userID, &req)
	if errors.Is(err, services.ErrReceiptNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update receipt"})
		return
	}

	h.WS.BroadcastUpdate(receipt.ID, "receipt_updated", userID)
	c.JSON(http.StatusOK, receipt)
}

func (h *ReceiptHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.Receipts.Delete(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, services.ErrReceiptNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete receipt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Receipt deleted"})
}

func (h *ReceiptHandler) Breakdown(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	breakdown, err := h.Receipts.Breakdown(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, services.ErrReceiptNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute breakdown"})
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// Export renders the split as a PDF download.
func (h *ReceiptHandler) Export(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipt, err := h.Receipts.GetByID(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, services.ErrReceiptNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch receipt"})
		return
	}

	pdfBytes, err := h.PDF.RenderReceipt(receipt)
	if err != nil {
		log.Printf("PDF export error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	filename := fmt.Sprintf("receipt-%s.pdf", receipt.ID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// Share emails each listed participant their row of the cost breakdown.
func (h *ReceiptHandler) Share(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.Receipts.GetByID(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, services.ErrReceiptNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch receipt"})
		return
	}

	breakdown, err := h.Receipts.Breakdown(c.Request.Context(), receipt.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute breakdown"})
		return
	}

	rowsByParticipant := make(map[string]models.BreakdownRow, len(breakdown.Rows))
	for _, row := range breakdown.Rows {
		rowsByParticipant[row.ParticipantID] = row
	}

	sent := 0
	var failed []string
	for _, recipient := range req.Recipients {
		row, ok := rowsByParticipant[recipient.ParticipantID]
		if !ok {
			failed = append(failed, recipient.Email)
			continue
		}
		if err := h.Email.SendBreakdown(recipient.Email, receipt.Name, row); err != nil {
			log.Printf("Share email to %s failed: %v", recipient.Email, err)
			failed = append(failed, recipient.Email)
			continue
		}
		sent++
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent, "failed": failed})
}
