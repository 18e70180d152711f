package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &ReceiptHandler{}
	router := gin.New()
	router.POST("/receipts/process", h.Process)
	return router
}

func multipartUpload(t *testing.T, fieldName, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestProcessMissingFile(t *testing.T) {
	router := uploadRouter()

	body, contentType := multipartUpload(t, "attachment", "receipt.jpg", "image/jpeg", []byte("fake"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/receipts/process", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File is required")
}

func TestProcessRejectsNonImage(t *testing.T) {
	router := uploadRouter()

	body, contentType := multipartUpload(t, "file", "receipt.pdf", "application/pdf", []byte("%PDF-1.4"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/receipts/process", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File must be an image")
}

func TestProcessRejectsEmptyBody(t *testing.T) {
	router := uploadRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/receipts/process", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
