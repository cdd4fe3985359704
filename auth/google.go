package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// IDTokenVerifier is satisfied by *fbauth.Client.
type IDTokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// NewFirebaseVerifier builds a Firebase Auth client from the service-account JSON blob.
func NewFirebaseVerifier(ctx context.Context, credsJSON, projectID string) (*fbauth.Client, error) {
	if credsJSON == "" || projectID == "" {
		return nil, errors.New("firebase credentials and project id are required")
	}
	opt := option.WithCredentialsJSON([]byte(credsJSON))
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return client, nil
}

type googleLoginInput struct {
	IDToken string `json:"idToken" binding:"required"`
	GuestID string `json:"guest_id"`
}

// POST /auth/google
func GoogleLogin(db *gorm.DB, verifier IDTokenVerifier, projectID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
			return
		}

		var req googleLoginInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		token, err := verifier.VerifyIDTokenAndCheckRevoked(c.Request.Context(), req.IDToken)
		if err != nil {
			log.Printf("❌ ID token verification failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or revoked ID token"})
			return
		}
		if token.Audience != projectID {
			log.Printf("❌ Token audience mismatch: got %q", token.Audience)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token audience"})
			return
		}

		email, _ := token.Claims["email"].(string)
		if email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email not found in token"})
			return
		}
		name, _ := token.Claims["name"].(string)
		picture, _ := token.Claims["picture"].(string)

		// Existing credential accounts keep their id; Google-only accounts use the Firebase UID.
		var user models.User
		err = db.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				ID:       token.UID,
				Email:    email,
				Name:     name,
				Picture:  picture,
				Role:     models.RoleUser,
				Provider: "google",
			}
			if err := db.Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		default:
			if verified, _ := token.Claims["email_verified"].(bool); user.ID != token.UID && !verified {
				log.Printf("⚠️ Refusing to link %s to an unverified Google email", user.ID)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Google email is not verified"})
				return
			}
			if err := db.Model(&user).Updates(models.User{Name: name, Picture: picture}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
				return
			}
		}

		jwtStr, err := IssueToken(user.ID, user.Email, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful",
			"merge_status": mergeStatus(db, req.GuestID, user.ID),
			"user":         user,
			"token":        jwtStr,
		})
	}
}
