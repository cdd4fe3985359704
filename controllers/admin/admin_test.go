package adminController

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRouter(db *gorm.DB, uploadDir, publicURL string) *gin.Engine {
	r := gin.New()
	r.GET("/admin/stats", GetStats(db))
	r.GET("/admin/users", GetUsers(db))
	r.PUT("/admin/users/:id/role", UpdateUserRole(db))
	r.GET("/admin/contacts", GetContacts(db))
	r.PUT("/admin/contacts/:id/status", UpdateContactStatus(db))
	r.POST("/admin/uploads", UploadImage(db, uploadDir, publicURL))
	r.GET("/admin/uploads", GetUploads(db))
	r.DELETE("/admin/uploads/:id", DeleteUpload(db, uploadDir))
	return r
}

func TestGetStats(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateProduct(t, db, "Brake disc", 90, 3)
	testutil.CreateProduct(t, db, "Brake pad", 40, 3)
	u := testutil.CreateUser(t, db, "buyer@example.az", models.RoleUser)
	for i, o := range []struct {
		status models.OrderStatus
		total  float64
	}{
		{models.OrderStatusPending, 500},
		{models.OrderStatusPaid, 100},
		{models.OrderStatusDelivered, 50.5},
		{models.OrderStatusCancelled, 70},
	} {
		require.NoError(t, db.Create(&models.Order{
			OrderNumber: fmt.Sprintf("ORD-%d", i),
			UserID:      u.ID,
			Status:      o.status,
			Total:       o.total,
		}).Error)
	}
	r := newRouter(db, t.TempDir(), "")

	w := testutil.JSONRequest(t, r, http.MethodGet, "/admin/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalProducts":2,"totalOrders":4,"totalUsers":1,"totalRevenue":150.5}`, w.Body.String())
}

func TestStatsOnEmptyStore(t *testing.T) {
	r := newRouter(testutil.NewDB(t), t.TempDir(), "")
	w := testutil.JSONRequest(t, r, http.MethodGet, "/admin/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalProducts":0,"totalOrders":0,"totalUsers":0,"totalRevenue":0}`, w.Body.String())
}

func TestUsersAndRoles(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "eli@example.az", models.RoleUser)
	r := newRouter(db, t.TempDir(), "")

	w := testutil.JSONRequest(t, r, http.MethodGet, "/admin/users", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "eli@example.az")
	assert.NotContains(t, w.Body.String(), "password")

	w = testutil.JSONRequest(t, r, http.MethodPut, "/admin/users/"+u.ID+"/role", gin.H{"role": "ADMIN"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", u.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	w = testutil.JSONRequest(t, r, http.MethodPut, "/admin/users/"+u.ID+"/role", gin.H{"role": "GUEST"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.JSONRequest(t, r, http.MethodPut, "/admin/users/missing/role", gin.H{"role": "USER"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContacts(t *testing.T) {
	db := testutil.NewDB(t)
	first := models.Contact{Name: "Eli", Email: "eli@example.az", Subject: "Sual", Status: models.ContactStatusNew}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&models.Contact{Name: "Aysel", Email: "aysel@example.az", Status: models.ContactStatusRead}).Error)
	r := newRouter(db, t.TempDir(), "")

	w := testutil.JSONRequest(t, r, http.MethodGet, "/admin/contacts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Contact
	testutil.Decode(t, w, &all)
	assert.Len(t, all, 2)

	w = testutil.JSONRequest(t, r, http.MethodGet, "/admin/contacts?status=new", nil, "")
	var fresh []models.Contact
	testutil.Decode(t, w, &fresh)
	require.Len(t, fresh, 1)
	assert.Equal(t, "Eli", fresh[0].Name)

	w = testutil.JSONRequest(t, r, http.MethodGet, "/admin/contacts?status=lost", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/admin/contacts/%d/status", first.ID)
	w = testutil.JSONRequest(t, r, http.MethodPut, path, gin.H{"status": "answered"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&first, first.ID).Error)
	assert.Equal(t, models.ContactStatusAnswered, first.Status)

	w = testutil.JSONRequest(t, r, http.MethodPut, path, gin.H{"status": "deleted"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.JSONRequest(t, r, http.MethodPut, "/admin/contacts/999/status", gin.H{"status": "READ"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func uploadRequest(t *testing.T, r http.Handler, field, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadImage(t *testing.T) {
	db := testutil.NewDB(t)
	dir := filepath.Join(t.TempDir(), "uploads")
	r := newRouter(db, dir, "https://api.example.az/")

	w := uploadRequest(t, r, "image", "front disc.png.png")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		URL  string        `json:"url"`
		Data models.Upload `json:"data"`
	}
	testutil.Decode(t, w, &body)
	assert.True(t, strings.HasPrefix(body.URL, "https://api.example.az/uploads/"), body.URL)
	assert.True(t, strings.HasSuffix(body.Data.FileName, "_front_disc.png"), body.Data.FileName)
	_, err := os.Stat(filepath.Join(dir, body.Data.FileName))
	require.NoError(t, err)

	w = uploadRequest(t, r, "image", "notes.pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = uploadRequest(t, r, "file", "disc.png")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodGet, "/admin/uploads", nil, "")
	var listed []models.Upload
	testutil.Decode(t, w, &listed)
	require.Len(t, listed, 1)

	w = testutil.JSONRequest(t, r, http.MethodDelete, fmt.Sprintf("/admin/uploads/%d", body.Data.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	_, err = os.Stat(filepath.Join(dir, body.Data.FileName))
	assert.True(t, os.IsNotExist(err))
	w = testutil.JSONRequest(t, r, http.MethodDelete, fmt.Sprintf("/admin/uploads/%d", body.Data.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadURLFallsBackToRequestHost(t *testing.T) {
	db := testutil.NewDB(t)
	r := newRouter(db, t.TempDir(), "")

	w := uploadRequest(t, r, "image", "logo.webp")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"http://example.com/uploads/`)
}
