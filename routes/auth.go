package routes

import (
	"github.com/EltunLTN/autoparts-api/auth"
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register(d.DB))
		authGroup.POST("/login", auth.Login(d.DB))
		authGroup.POST("/guest", auth.CreateGuestUser(d.DB))
		authGroup.POST("/google", auth.GoogleLogin(d.DB, d.Google, d.Config.FirebaseProjectID))
	}

	r.GET("/api/admin/reset-password", auth.ResetAdminPassword(d.DB, auth.AdminCredentials{
		Email:       d.Config.AdminEmail,
		Password:    d.Config.AdminPassword,
		ResetSecret: d.Config.AdminResetSecret,
	}))
}
