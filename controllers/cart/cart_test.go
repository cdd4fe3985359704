package cartControllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/EltunLTN/autoparts-api/auth"
	"github.com/EltunLTN/autoparts-api/middleware"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	auth.Configure("cart-secret", time.Hour)
}

type cartBody struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice float64           `json:"totalPrice"`
}

func newRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	g := r.Group("/cart", middleware.ValidateToken, middleware.RequireRole(models.RoleUser, models.RoleAdmin, models.RoleGuest))
	g.GET("", GetCart(db))
	g.DELETE("", ClearCart(db))
	g.POST("/items", AddCartItem(db))
	g.PUT("/items/:productId", UpdateCartItem(db))
	g.DELETE("/items/:productId", RemoveCartItem(db))
	return r
}

func guestToken(t *testing.T, id string) string {
	t.Helper()
	tok, err := auth.IssueToken(id, "", models.RoleGuest)
	require.NoError(t, err)
	return tok
}

func TestCartLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	pad := testutil.CreateProduct(t, db, "Brake pad", 40, 10, func(p *models.Product) { p.Discount = 25 })
	disc := testutil.CreateProduct(t, db, "Brake disc", 90, 2)
	r := newRouter(db)
	tok := guestToken(t, "guest-1")

	w := testutil.JSONRequest(t, r, http.MethodGet, "/cart", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	var body cartBody
	testutil.Decode(t, w, &body)
	assert.Empty(t, body.Items)

	testutil.JSONRequest(t, r, http.MethodPost, "/cart/items", gin.H{"productId": pad.ID, "quantity": 1}, tok)
	testutil.JSONRequest(t, r, http.MethodPost, "/cart/items", gin.H{"productId": pad.ID, "quantity": 2}, tok)
	w = testutil.JSONRequest(t, r, http.MethodPost, "/cart/items", gin.H{"productId": disc.ID, "quantity": 1}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.Decode(t, w, &body)
	require.Len(t, body.Items, 2)
	assert.Equal(t, 3, body.Items[0].Quantity, "same product merges")
	assert.Equal(t, 4, body.TotalItems)
	assert.Equal(t, 180.0, body.TotalPrice)

	w = testutil.JSONRequest(t, r, http.MethodPut, fmt.Sprintf("/cart/items/%d", pad.ID), gin.H{"quantity": 1}, tok)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &body)
	assert.Equal(t, 2, body.TotalItems)

	w = testutil.JSONRequest(t, r, http.MethodPut, fmt.Sprintf("/cart/items/%d", pad.ID), gin.H{"quantity": 0}, tok)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &body)
	require.Len(t, body.Items, 1)
	assert.Equal(t, disc.ID, body.Items[0].ProductID)

	w = testutil.JSONRequest(t, r, http.MethodDelete, fmt.Sprintf("/cart/items/%d", disc.ID), nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &body)
	assert.Empty(t, body.Items)

	w = testutil.JSONRequest(t, r, http.MethodDelete, fmt.Sprintf("/cart/items/%d", disc.ID), nil, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartRejects(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Brake disc", 90, 2)
	hidden := testutil.CreateProduct(t, db, "Old filter", 5, 5)
	require.NoError(t, db.Model(&hidden).Update("is_active", false).Error)
	r := newRouter(db)
	tok := guestToken(t, "guest-2")

	w := testutil.JSONRequest(t, r, http.MethodGet, "/cart", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/cart/items", gin.H{"productId": 999, "quantity": 1}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/cart/items", gin.H{"productId": hidden.ID, "quantity": 1}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/cart/items", gin.H{"productId": p.ID, "quantity": 0}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/cart/items", gin.H{"productId": p.ID, "quantity": 3}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Only 2 of Brake disc in stock")

	w = testutil.JSONRequest(t, r, http.MethodPut, fmt.Sprintf("/cart/items/%d", p.ID), gin.H{"quantity": 1}, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPut, "/cart/items/abc", gin.H{"quantity": 1}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartsAreSeparatedByOwner(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Wiper blade", 15, 10)
	u := testutil.CreateUser(t, db, "eli@example.az", models.RoleUser)
	userTok, err := auth.IssueToken(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	r := newRouter(db)

	testutil.JSONRequest(t, r, http.MethodPost, "/cart/items", gin.H{"productId": p.ID, "quantity": 2}, userTok)

	w := testutil.JSONRequest(t, r, http.MethodGet, "/cart", nil, guestToken(t, "guest-3"))
	var body cartBody
	testutil.Decode(t, w, &body)
	assert.Empty(t, body.Items)

	w = testutil.JSONRequest(t, r, http.MethodDelete, "/cart", nil, userTok)
	require.Equal(t, http.StatusOK, w.Code)
	cart, err := models.LoadCart(db, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
