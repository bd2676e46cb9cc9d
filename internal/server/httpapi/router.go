package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/lulemo/habitlock/internal/logging"
	"github.com/lulemo/habitlock/internal/server/services"
	"github.com/lulemo/habitlock/internal/server/token"
)

// NewRouter wires all routes into a gin engine.
func NewRouter(auth *services.CredentialAuthService, tokens *token.Service, log logging.Logger) *gin.Engine {
	h := NewHandler(auth, tokens, log)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)

	group := r.Group("/auth")
	{
		group.POST("/send-code", h.SendRegisterCode)
		group.POST("/register", h.Register)
		group.POST("/send-reset-code", h.SendResetCode)
		group.POST("/reset-password", h.ResetPassword)
		group.POST("/login", h.Login)
		group.POST("/refresh", h.Refresh)
		group.POST("/logout", h.Logout)

		group.GET("/me", BearerAuth(tokens), h.Me)
	}

	return r
}
