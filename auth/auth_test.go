package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	fbauth "firebase.google.com/go/auth"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	Configure("test-secret", time.Hour)
}

func setupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", Register(db))
	r.POST("/auth/login", Login(db))
	r.POST("/auth/guest", CreateGuestUser(db))
	return r
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := IssueToken("u1", "a@b.az", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "a@b.az", claims.Email)
}

func TestParseTokenRejectsForeignSecretAndAlgorithm(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1", Role: models.RoleAdmin})
	s, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = ParseToken(s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1", Role: models.RoleAdmin})
	s, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok, err := sign(Claims{UserID: "u1", Role: models.RoleUser}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.NewDB(t)
	r := setupRouter(db)

	reg := RegisterInput{Email: "Driver@Example.com", Password: "testpass", Name: "Elvin"}
	w := testutil.JSONRequest(t, r, http.MethodPost, "/auth/register", reg, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.JSONRequest(t, r, http.MethodPost, "/auth/register", reg, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/auth/login", LoginInput{Email: "driver@example.com", Password: "testpass"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	testutil.Decode(t, w, &resp)
	claims, err := ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, resp.User.ID, claims.UserID)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/auth/login", LoginInput{Email: "driver@example.com", Password: "wrongpass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/auth/login", LoginInput{Email: "nobody@example.com", Password: "testpass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	db := testutil.NewDB(t)
	r := setupRouter(db)

	w := testutil.JSONRequest(t, r, http.MethodPost, "/auth/register", RegisterInput{Email: "not-an-email", Password: "123", Name: "X"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginMergesGuestCart(t *testing.T) {
	db := testutil.NewDB(t)
	r := setupRouter(db)
	p1 := testutil.CreateProduct(t, db, "oil-filter", 12, 10)
	p2 := testutil.CreateProduct(t, db, "air-filter", 20, 10)

	hash, err := HashPassword("testpass")
	require.NoError(t, err)
	user := models.User{Email: "u@example.com", Password: hash, Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	userCart, err := models.LoadCart(db, user.ID)
	require.NoError(t, err)
	userCart.AddItem(models.NewCartItem(p1, 1))
	require.NoError(t, models.SaveCart(db, userCart))

	require.NoError(t, db.Create(&models.GuestUser{ID: "guest_abc", ExpiresAt: time.Now().Add(time.Hour)}).Error)
	guestCart, err := models.LoadCart(db, "guest_abc")
	require.NoError(t, err)
	guestCart.AddItem(models.NewCartItem(p1, 2))
	guestCart.AddItem(models.NewCartItem(p2, 1))
	require.NoError(t, models.SaveCart(db, guestCart))

	w := testutil.JSONRequest(t, r, http.MethodPost, "/auth/login", LoginInput{Email: "u@example.com", Password: "testpass", GuestID: "guest_abc"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	testutil.Decode(t, w, &resp)
	assert.Equal(t, "merged-success", resp["merge_status"])

	merged, err := models.LoadCart(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, merged.TotalItems())
	assert.Len(t, merged.Items, 2)

	var n int64
	db.Model(&models.Cart{}).Where("owner_id = ?", "guest_abc").Count(&n)
	assert.Zero(t, n)
}

func TestLoginDoesNotMergeForeignCarts(t *testing.T) {
	db := testutil.NewDB(t)
	r := setupRouter(db)
	p := testutil.CreateProduct(t, db, "oil-filter", 12, 10)

	victim := testutil.CreateUser(t, db, "victim@example.com", models.RoleUser)
	victimCart, err := models.LoadCart(db, victim.ID)
	require.NoError(t, err)
	victimCart.AddItem(models.NewCartItem(p, 3))
	require.NoError(t, models.SaveCart(db, victimCart))

	require.NoError(t, db.Create(&models.GuestUser{ID: "guest_old", ExpiresAt: time.Now().Add(-time.Minute)}).Error)
	oldCart, err := models.LoadCart(db, "guest_old")
	require.NoError(t, err)
	oldCart.AddItem(models.NewCartItem(p, 1))
	require.NoError(t, models.SaveCart(db, oldCart))

	hash, err := HashPassword("testpass")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Email: "a@example.com", Password: hash, Role: models.RoleUser}).Error)

	for _, guestID := range []string{victim.ID, "guest_old", "guest_missing"} {
		w := testutil.JSONRequest(t, r, http.MethodPost, "/auth/login", LoginInput{Email: "a@example.com", Password: "testpass", GuestID: guestID}, "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		testutil.Decode(t, w, &resp)
		assert.Equal(t, "no-guest-cart", resp["merge_status"], guestID)
	}

	kept, err := models.LoadCart(db, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, kept.TotalItems())
	expired, err := models.LoadCart(db, "guest_old")
	require.NoError(t, err)
	assert.Equal(t, 1, expired.TotalItems())
}

func TestCreateGuestAndPurge(t *testing.T) {
	db := testutil.NewDB(t)
	r := setupRouter(db)

	w := testutil.JSONRequest(t, r, http.MethodPost, "/auth/guest", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		GuestID string `json:"guest_id"`
		Token   string `json:"token"`
	}
	testutil.Decode(t, w, &resp)
	assert.Regexp(t, `^guest_[0-9a-f]{32}$`, resp.GuestID)
	claims, err := ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, claims.Role)

	p := testutil.CreateProduct(t, db, "wiper", 8, 5)
	cart, err := models.LoadCart(db, resp.GuestID)
	require.NoError(t, err)
	cart.AddItem(models.NewCartItem(p, 1))
	require.NoError(t, models.SaveCart(db, cart))

	purged, err := PurgeExpiredGuests(db, time.Now())
	require.NoError(t, err)
	assert.Zero(t, purged)

	purged, err = PurgeExpiredGuests(db, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var carts, items int64
	db.Model(&models.Cart{}).Count(&carts)
	db.Model(&models.CartItem{}).Count(&items)
	assert.Zero(t, carts)
	assert.Zero(t, items)
}

type fakeVerifier struct {
	token *fbauth.Token
	err   error
}

func (f fakeVerifier) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return f.token, f.err
}

func TestGoogleLogin(t *testing.T) {
	db := testutil.NewDB(t)
	verifier := fakeVerifier{token: &fbauth.Token{
		UID:      "firebase-uid-1",
		Audience: "autoparts",
		Claims:   map[string]interface{}{"email": "g@example.com", "name": "Gülnar"},
	}}
	r := gin.New()
	r.POST("/auth/google", GoogleLogin(db, verifier, "autoparts"))

	w := testutil.JSONRequest(t, r, http.MethodPost, "/auth/google", map[string]string{"idToken": "x"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "firebase-uid-1").Error)
	assert.Equal(t, "google", user.Provider)
	assert.Equal(t, models.RoleUser, user.Role)

	// Second login updates instead of duplicating.
	w = testutil.JSONRequest(t, r, http.MethodPost, "/auth/google", map[string]string{"idToken": "x"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var n int64
	db.Model(&models.User{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestGoogleLoginLinksOnlyVerifiedEmails(t *testing.T) {
	db := testutil.NewDB(t)
	existing := testutil.CreateUser(t, db, "shared@example.com", models.RoleUser)

	claims := map[string]interface{}{"email": "shared@example.com"}
	r := gin.New()
	r.POST("/unverified", GoogleLogin(db, fakeVerifier{token: &fbauth.Token{UID: "fb-2", Audience: "autoparts", Claims: claims}}, "autoparts"))
	w := testutil.JSONRequest(t, r, http.MethodPost, "/unverified", map[string]string{"idToken": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	verified := map[string]interface{}{"email": "shared@example.com", "email_verified": true}
	r.POST("/verified", GoogleLogin(db, fakeVerifier{token: &fbauth.Token{UID: "fb-2", Audience: "autoparts", Claims: verified}}, "autoparts"))
	w = testutil.JSONRequest(t, r, http.MethodPost, "/verified", map[string]string{"idToken": "x"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		User models.User `json:"user"`
	}
	testutil.Decode(t, w, &resp)
	assert.Equal(t, existing.ID, resp.User.ID)
}

func TestGoogleLoginRejectsBadTokens(t *testing.T) {
	db := testutil.NewDB(t)

	r := gin.New()
	r.POST("/revoked", GoogleLogin(db, fakeVerifier{err: errors.New("revoked")}, "autoparts"))
	r.POST("/audience", GoogleLogin(db, fakeVerifier{token: &fbauth.Token{UID: "x", Audience: "other"}}, "autoparts"))
	r.POST("/disabled", GoogleLogin(db, nil, ""))

	body := map[string]string{"idToken": "x"}
	assert.Equal(t, http.StatusUnauthorized, testutil.JSONRequest(t, r, http.MethodPost, "/revoked", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, testutil.JSONRequest(t, r, http.MethodPost, "/audience", body, "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, testutil.JSONRequest(t, r, http.MethodPost, "/disabled", body, "").Code)
}

func TestResetAdminPassword(t *testing.T) {
	db := testutil.NewDB(t)
	creds := AdminCredentials{Email: "admin@avtohisse.az", Password: "n3w-pass", ResetSecret: "reset-me"}
	r := gin.New()
	r.GET("/reset", ResetAdminPassword(db, creds))
	r.POST("/auth/login", Login(db))

	w := testutil.JSONRequest(t, r, http.MethodGet, "/reset?secret=wrong", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodGet, "/reset?secret=reset-me", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodGet, "/reset?secret=reset-me", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/auth/login", LoginInput{Email: creds.Email, Password: creds.Password}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	testutil.Decode(t, w, &resp)
	claims, err := ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}
