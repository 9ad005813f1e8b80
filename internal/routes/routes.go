package routes

import (
	"net/http"
	"os"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/handlers"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the web frontend to call the API with its
// Authorization header. The allowed origin comes from the environment so
// staging and production differ only in configuration.
func CORSMiddleware() gin.HandlerFunc {
	allowedOrigin := os.Getenv("CORS_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-App-Check, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware())

	// Uploaded files (request attachments, supplier evidence) are served
	// straight from the local uploads folder.
	router.Static("/uploads", "./uploads")

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register/solicitante", h.RegisterRequester)
		v1.POST("/register/proveedor", h.RegisterSupplier)
		v1.POST("/login", h.Login)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			// Privileged one-shot role assignment (app-check guarded)
			auth.POST("/auth/assign-role", h.AssignInitialRole)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)

			// --- File Uploads ---
			auth.POST("/upload", h.UploadFile)

			// --- Shared Request Read ---
			auth.GET("/requests/:id", h.GetRequestByID)
		}

		// --- Requester-Only Routes ---
		requester := v1.Group("/")
		requester.Use(middleware.AuthMiddleware(h.DB))
		requester.Use(middleware.RequesterMiddleware(h.DB))
		{
			requester.POST("/requests", h.CreateRequest)
			requester.GET("/requests/my", h.GetMyRequests)
			requester.GET("/requests/my/stats", h.GetMyRequestStats)
			requester.POST("/requests/:id/resubmit", h.ResubmitRequest)
			requester.POST("/requests/:id/confirm-receipt", h.ConfirmReceipt)
			requester.POST("/requests/:id/report-noncompliance", h.ReportNonCompliance)
		}

		// --- Manager-Only Routes ---
		manager := v1.Group("/manager")
		manager.Use(middleware.AuthMiddleware(h.DB))
		manager.Use(middleware.ManagerMiddleware(h.DB))
		{
			manager.GET("/requests", h.GetAllRequests)
			manager.GET("/requests/recent", h.GetRecentRequests)
			manager.GET("/requests/status/:status", h.GetRequestsByStatus)
			manager.PATCH("/requests/:id/status", h.UpdateRequestStatus)
			manager.POST("/requests/:id/invite", h.InviteSuppliers)
			manager.GET("/requests/:id/quotations", h.GetQuotationsForRequest)
			manager.POST("/requests/:id/award", h.AwardRequest)

			manager.GET("/suppliers", h.GetSuppliers)
			manager.GET("/suppliers/:id/epi", h.GetSupplierEpi)

			manager.GET("/stats", h.GetManagerStats)
			manager.GET("/metrics", h.GetEfficiencyMetrics)
		}

		// --- Supplier-Only Routes ---
		supplier := v1.Group("/supplier")
		supplier.Use(middleware.AuthMiddleware(h.DB))
		supplier.Use(middleware.SupplierMiddleware(h.DB))
		{
			supplier.GET("/invitations", h.GetMyInvitations)
			supplier.POST("/invitations/:id/decline", h.DeclineInvitation)
			supplier.POST("/quotations", h.SubmitQuotation)

			supplier.GET("/epi", h.GetMyEpi)
			supplier.PUT("/epi", h.SaveMyEpi)
			supplier.POST("/epi/evidence", h.UploadEvidence)

			supplier.GET("/dashboard-stats", h.GetSupplierDashboardStats)
		}
	}

	return router
}
