package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/EltunLTN/autoparts-api/auth"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.Configure("mw-secret", time.Hour)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateTokenAndRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/me", ValidateToken, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c), "role": CurrentRole(c), "email": CurrentEmail(c)})
	})
	r.GET("/admin", ValidateToken, RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	userTok, err := auth.IssueToken("u1", "u@x.az", models.RoleUser)
	require.NoError(t, err)
	adminTok, err := auth.IssueToken("a1", "a@x.az", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","role":"USER","email":"u@x.az"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin?token="+adminTok, nil)
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestPayTRCallbackAuth(t *testing.T) {
	r := gin.New()
	r.POST("/cb", PayTRCallbackAuth("key", "salt"), func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/cb", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return serve(r, req)
	}

	form := url.Values{
		"merchant_oid": {"42"},
		"status":       {"success"},
		"total_amount": {"21650"},
	}
	assert.Equal(t, http.StatusForbidden, post(form).Code)

	form.Set("hash", "bogus")
	assert.Equal(t, http.StatusForbidden, post(form).Code)

	form.Set("hash", payment.PayTRCallbackHash("42", "salt", "success", "21650", "key"))
	w := post(form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func stripeSignature(secret string, payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts.Unix(), 10) + "." + string(payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeWebhookAuth(t *testing.T) {
	r := gin.New()
	r.POST("/wh", StripeWebhookAuth("whsec_test"), func(c *gin.Context) {
		ev, ok := StripeEvent(c)
		require.True(t, ok)
		c.String(http.StatusOK, string(ev.Type))
	})

	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","api_version":"2020-08-27","data":{"object":{"id":"cs_1","object":"checkout.session"}}}`)

	req := httptest.NewRequest(http.MethodPost, "/wh", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", stripeSignature("wrong", payload, time.Now()))
	assert.Equal(t, http.StatusBadRequest, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/wh", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", stripeSignature("whsec_test", payload, time.Now()))
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "checkout.session.completed", w.Body.String())
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type body struct {
		Condition string `json:"condition" binding:"condition"`
		Status    string `json:"status" binding:"omitempty,orderstatus"`
	}
	r := gin.New()
	r.POST("/v", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	cases := map[string]int{
		`{"condition":"NEW"}`:                   http.StatusOK,
		`{"condition":""}`:                      http.StatusOK,
		`{"condition":"BROKEN"}`:                http.StatusBadRequest,
		`{"condition":"USED","status":"paid"}`:  http.StatusOK,
		`{"condition":"USED","status":"LOST"}`:  http.StatusBadRequest,
	}
	for in, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v", strings.NewReader(in))
		req.Header.Set("Content-Type", "application/json")
		assert.Equal(t, want, serve(r, req).Code, in)
	}
}
