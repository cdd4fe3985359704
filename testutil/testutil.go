// Package testutil provides a throw-away SQLite database and request helpers for handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/EltunLTN/autoparts-api/database"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewDB opens a fresh migrated SQLite database inside t.TempDir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// JSONRequest serves a JSON request against r and returns the recorder.
func JSONRequest(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a recorder body into v.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// Seed fixtures.

func CreateCategory(t *testing.T, db *gorm.DB, name, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func CreateBrand(t *testing.T, db *gorm.DB, name, slug string) models.Brand {
	t.Helper()
	b := models.Brand{Name: name, Slug: slug}
	require.NoError(t, db.Create(&b).Error)
	return b
}

// CreateProduct inserts an active product; mutate lets a test adjust fields before insert.
func CreateProduct(t *testing.T, db *gorm.DB, title string, price float64, stock int, mutate ...func(*models.Product)) models.Product {
	t.Helper()
	var cat models.Category
	if err := db.First(&cat).Error; err != nil {
		cat = CreateCategory(t, db, "Əyləc sistemi", "eylec-sistemi")
	}
	var brand models.Brand
	if err := db.First(&brand).Error; err != nil {
		brand = CreateBrand(t, db, "Bosch", "bosch")
	}
	p := models.Product{
		Title:      title,
		Slug:       utils.Slugify(title),
		Price:      price,
		Stock:      stock,
		Condition:  models.ConditionNew,
		IsActive:   true,
		CategoryID: cat.ID,
		BrandID:    brand.ID,
	}
	for _, m := range mutate {
		m(&p)
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{Email: email, Name: "Test", Role: role, Provider: "credentials"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// ErrInjected is returned by writes rejected through FailWrites.
var ErrInjected = errors.New("injected write failure")

// FailWrites makes every create or update on db fail when match accepts the statement.
func FailWrites(t *testing.T, db *gorm.DB, match func(*gorm.Statement) bool) {
	t.Helper()
	fail := func(tx *gorm.DB) {
		if match(tx.Statement) {
			_ = tx.AddError(ErrInjected)
		}
	}
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("testutil:fail_create", fail))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("testutil:fail_update", fail))
}

// EventRecorder collects published events in memory.
type EventRecorder struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

type RecordedEvent struct {
	Name string
	Data any
}

func (r *EventRecorder) Publish(_ context.Context, event string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, RecordedEvent{Name: event, Data: data})
	return nil
}

// Names returns the recorded event names in publish order.
func (r *EventRecorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		names = append(names, e.Name)
	}
	return names
}
