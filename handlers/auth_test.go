package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refreshContext(t *testing.T, token string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"refresh_token":"` + token + `"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestRefreshExpiredSessionIsDeleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expired := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions s JOIN users u")).
		WithArgs("stale-token").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "expires_at"}).
			AddRow("u1", "alice@example.com", expired))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE refresh_token = $1")).
		WithArgs("stale-token").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, w := refreshContext(t, "stale-token")
	h := &AuthHandler{DB: db}
	h.Refresh(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid refresh token")
	assert.NoError(t, mock.ExpectationsWereMet(), "expired session row must be deleted on detection")
}

func TestRefreshUnknownToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions s JOIN users u")).
		WithArgs("bogus").
		WillReturnError(sql.ErrNoRows)

	c, w := refreshContext(t, "bogus")
	h := &AuthHandler{DB: db}
	h.Refresh(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
