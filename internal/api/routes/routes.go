// server/internal/api/routes/routes.go
package routes

import (
	"bill-delivery-api-server/config"
	"bill-delivery-api-server/internal/api/handlers"
	"bill-delivery-api-server/internal/api/middleware"
	"bill-delivery-api-server/internal/auth"
	"bill-delivery-api-server/internal/cache"
	"bill-delivery-api-server/internal/database"
	"bill-delivery-api-server/internal/delivery"
	"bill-delivery-api-server/internal/s3"
	"bill-delivery-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires the handlers and middleware into the gin engine.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	authService *auth.Service,
	jwtManager *auth.JWTManager,
	s3Uploader *s3.Uploader,
	statsCache *cache.Client,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	userHandler := &handlers.UserHandler{Auth: authService, DB: db}
	wardHandler := &handlers.WardHandler{DB: db}
	propertyHandler := &handlers.PropertyHandler{DB: db, S3Uploader: s3Uploader}
	recorder := &delivery.Recorder{Store: database.NewDeliveryStore(db)}
	deliveryHandler := &handlers.DeliveryHandler{DB: db, Recorder: recorder, S3Uploader: s3Uploader, Hub: wsHub, Cache: statsCache}
	dashboardHandler := &handlers.DashboardHandler{DB: db, Cache: statsCache}
	payoutHandler := &handlers.PayoutHandler{DB: db, Cfg: cfg}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, JWT: jwtManager}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket authenticates itself via query token.
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === PUBLIC ROUTES ===
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/login", userHandler.Login)
			authRoutes.POST("/register", userHandler.Register)
		}

		// === PROTECTED ROUTES ===
		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(jwtManager))
		{
			protected.GET("/auth/me", userHandler.Me)

			// Wards are readable by every role.
			wards := protected.Group("/wards")
			{
				wards.GET("/", wardHandler.GetAllWards)
				wards.GET("/zones", wardHandler.GetZones)
			}

			// Properties: reads for everyone, bulk upload for admins.
			properties := protected.Group("/properties")
			{
				adminUploads := properties.Group("/upload")
				adminUploads.Use(middleware.Authorize("admin"))
				{
					adminUploads.POST("/", propertyHandler.UploadProperties)
					adminUploads.GET("/history", propertyHandler.GetUploadHistory)
					adminUploads.DELETE("/:id", propertyHandler.DeleteUploadBatch)
				}

				properties.GET("/", propertyHandler.GetAllProperties)
				properties.GET("/:id", propertyHandler.GetPropertyByID)
			}

			// Deliveries
			deliveries := protected.Group("/deliveries")
			{
				staffRoutes := deliveries.Group("/")
				staffRoutes.Use(middleware.Authorize("staff"))
				{
					staffRoutes.POST("/", deliveryHandler.CreateDelivery)
					staffRoutes.POST("/upload-photo", deliveryHandler.UploadPhoto)
					staffRoutes.GET("/staff-history", deliveryHandler.GetStaffHistory)
					staffRoutes.POST("/:id/request-correction", deliveryHandler.RequestCorrection)
				}

				listRoutes := deliveries.Group("/")
				listRoutes.Use(middleware.Authorize("admin", "commissioner"))
				{
					listRoutes.GET("/", deliveryHandler.GetAllDeliveries)
				}

				deliveries.GET("/:id", deliveryHandler.GetDeliveryByID)
			}

			// Dashboards
			dashboard := protected.Group("/dashboard")
			{
				staffDashboard := dashboard.Group("/")
				staffDashboard.Use(middleware.Authorize("staff"))
				{
					staffDashboard.GET("/staff", dashboardHandler.StaffDashboard)
				}

				summaryRoutes := dashboard.Group("/")
				summaryRoutes.Use(middleware.Authorize("admin", "commissioner"))
				{
					summaryRoutes.GET("/summary", dashboardHandler.Summary)
				}
			}

			// Admin management
			admin := protected.Group("/admin")
			admin.Use(middleware.Authorize("admin"))
			{
				users := admin.Group("/users")
				{
					users.POST("/", userHandler.CreateUser)
					users.GET("/", userHandler.GetAllUsers)
					users.PUT("/:id", userHandler.UpdateUser)
					users.PUT("/:id/password", userHandler.ResetPassword)
				}

				adminWards := admin.Group("/wards")
				{
					adminWards.POST("/", wardHandler.CreateWard)
					adminWards.PUT("/:id", wardHandler.UpdateWard)
					adminWards.DELETE("/:id", wardHandler.DeleteWard)
				}

				corrections := admin.Group("/corrections")
				{
					corrections.GET("/", deliveryHandler.GetCorrections)
					corrections.PUT("/:deliveryID", deliveryHandler.ReviewCorrection)
				}

				payouts := admin.Group("/payouts")
				{
					payouts.POST("/", payoutHandler.GeneratePayouts)
					payouts.GET("/", payoutHandler.GetAllPayouts)
					payouts.PUT("/:id/mark-paid", payoutHandler.MarkPaid)
				}
			}
		}
	}

	return router
}
