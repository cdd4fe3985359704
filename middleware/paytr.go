package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/EltunLTN/autoparts-api/payment"
	"github.com/gin-gonic/gin"
)

// PayTRCallbackAuth verifies the hash PayTR attaches to its server-to-server callback.
func PayTRCallbackAuth(merchantKey, merchantSalt string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if merchantKey == "" || merchantSalt == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "PayTR is not configured"})
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to parse form for signature verification"})
			return
		}

		provided := c.PostForm("hash")
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing hash signature"})
			return
		}

		calculated := payment.PayTRCallbackHash(
			strings.TrimSpace(c.PostForm("merchant_oid")),
			merchantSalt,
			strings.TrimSpace(c.PostForm("status")),
			strings.TrimSpace(c.PostForm("total_amount")),
			merchantKey,
		)
		if subtle.ConstantTimeCompare([]byte(calculated), []byte(provided)) != 1 {
			log.Printf("❌ PayTR callback signature mismatch for oid %s", c.PostForm("merchant_oid"))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			return
		}

		c.Next()
	}
}
