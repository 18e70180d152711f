package routes

import (
	"database/sql"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ksm007/spliteasy-updated/handlers"
	"github.com/ksm007/spliteasy-updated/services"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/refresh", authHandler.Refresh)
}

// SetupReceiptRoutes sets up protected receipt routes: vision parsing, split
// CRUD, breakdown, PDF export and email sharing.
func SetupReceiptRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	receiptService := services.NewReceiptService(db)
	visionService := services.NewVisionService()
	pdfService := services.NewPDFService()
	emailService := services.NewEmailService(os.Getenv("RESEND_API_KEY"), os.Getenv("EMAIL_FROM"))

	h := handlers.NewReceiptHandler(receiptService, visionService, pdfService, emailService, ws)

	rg.POST("/receipts/process", h.Process)
	rg.POST("/receipts", h.Create)
	rg.GET("/receipts", h.List)
	rg.GET("/receipts/:id", h.Get)
	rg.PUT("/receipts/:id", h.Update)
	rg.DELETE("/receipts/:id", h.Delete)
	rg.GET("/receipts/:id/breakdown", h.Breakdown)
	rg.GET("/receipts/:id/export", h.Export)
	rg.POST("/receipts/:id/share", h.Share)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
	rg.DELETE("/user/account", userHandler.DeleteAccount)
}

// SetupFriendRoutes sets up the saved friends list routes.
func SetupFriendRoutes(rg *gin.RouterGroup, db *sql.DB) {
	friendHandler := &handlers.FriendHandler{Friends: services.NewFriendService(db)}

	rg.GET("/friends", friendHandler.List)
	rg.POST("/friends", friendHandler.Create)
	rg.DELETE("/friends/:id", friendHandler.Delete)
}
