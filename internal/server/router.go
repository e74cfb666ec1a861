// Package server assembles the HTTP router: services, handlers, middleware
// and the route table shared by the API binary and the flow tests.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"spacos/internal/edgar"
	"spacos/internal/handlers"
	"spacos/internal/middleware"
	"spacos/internal/observability"
	"spacos/internal/repository"
	"spacos/internal/services"

	_ "spacos/internal/docs" // swagger docs
)

// Deps are the collaborators the router is built from.
type Deps struct {
	DB *gorm.DB

	// Metrics may be nil. Gatherer backs /metrics; nil leaves the route out.
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer

	// Scorer is nil when no scoring endpoint is configured.
	Scorer services.TargetScorer
	// Syncer is nil when EDGAR sync is disabled.
	Syncer *edgar.Syncer

	PipelineAPIKey string
}

// NewRouter wires every service and handler onto a gin engine.
func NewRouter(d Deps) *gin.Engine {
	db := d.DB

	// Repositories
	teamRepo := repository.NewTeamRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// A nil *edgar.Syncer must not leak into the interfaces as a non-nil value.
	var spacSyncer services.SPACSyncer
	var edgarRunner handlers.EdgarRunner
	if d.Syncer != nil {
		spacSyncer = d.Syncer
		edgarRunner = d.Syncer
	}

	// Services
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	spacService := services.NewSPACService(db)
	targetService := services.NewTargetService(db, dashboardRepo)
	scoreService := services.NewScoreService(db, d.Scorer, d.Metrics)
	documentService := services.NewDocumentService(db)
	filingService := services.NewFilingService(db, dashboardRepo, spacSyncer)
	taskService := services.NewTaskService(db)
	pipeService := services.NewPipeService(db)
	capTableService := services.NewCapTableService(db)
	trustService := services.NewTrustService(db)
	dashboardService := services.NewDashboardService(dashboardRepo)
	teamService := services.NewTeamService(teamRepo, billingRepo, userService)
	billingService := services.NewBillingService(billingRepo, teamRepo)
	integrationService := services.NewIntegrationService(integrationRepo)
	apiKeyService := services.NewAPIKeyService(apiKeyRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	spacHandler := handlers.NewSPACHandler(spacService, auditService)
	targetHandler := handlers.NewTargetHandler(targetService, auditService)
	scoreHandler := handlers.NewScoreHandler(scoreService, auditService)
	documentHandler := handlers.NewDocumentHandler(documentService, auditService)
	filingHandler := handlers.NewFilingHandler(filingService, auditService)
	taskHandler := handlers.NewTaskHandler(taskService, auditService)
	pipeHandler := handlers.NewPipeHandler(pipeService, capTableService, auditService)
	trustHandler := handlers.NewTrustHandler(trustService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	adminHandler := handlers.NewAdminHandler(teamService, billingService, integrationService, apiKeyService, auditService)
	pipelineHandler := handlers.NewPipelineHandler(trustService, edgarRunner)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")

	// Public routes
	authRoutes := v1.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)

	// Machine-to-machine feed, authenticated by the shared pipeline key
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(d.PipelineAPIKey))
	pipeline.POST("/trust-snapshots", pipelineHandler.RecordTrustSnapshots)
	pipeline.POST("/edgar-sync", pipelineHandler.EdgarSync)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(apiKeyService))

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/dashboard", dashboardHandler.GetOverview)
	protected.GET("/meta/vocabularies", dashboardHandler.GetVocabularies)

	spacs := protected.Group("/spacs")
	spacs.POST("", spacHandler.CreateSPAC)
	spacs.GET("", spacHandler.ListSPACs)
	spacs.GET("/:id", spacHandler.GetSPAC)
	spacs.PUT("/:id", spacHandler.UpdateSPAC)
	spacs.DELETE("/:id", spacHandler.DeleteSPAC)
	spacs.POST("/:id/phase", spacHandler.AdvancePhase)
	spacs.POST("/:id/status", spacHandler.UpdateStatus)
	spacs.GET("/:id/metrics", spacHandler.GetMetrics)
	spacs.GET("/:id/timeline", spacHandler.GetTimeline)
	spacs.POST("/:id/filings/sync", filingHandler.SyncFromEdgar)
	spacs.GET("/:id/trust", trustHandler.GetBalance)
	spacs.POST("/:id/trust/transactions", trustHandler.RecordTransaction)
	spacs.GET("/:id/trust/transactions", trustHandler.ListTransactions)
	spacs.GET("/:id/trust/snapshots", trustHandler.ListSnapshots)
	spacs.GET("/:id/pipe", pipeHandler.GetSummary)
	spacs.POST("/:id/pipe/investors", pipeHandler.CreateInvestor)
	spacs.GET("/:id/pipe/investors", pipeHandler.ListInvestors)
	spacs.GET("/:id/cap-table", pipeHandler.GetCapTable)
	spacs.PUT("/:id/cap-table/:class", pipeHandler.UpsertShareClass)
	spacs.DELETE("/:id/cap-table/:class", pipeHandler.DeleteShareClass)

	targets := protected.Group("/targets")
	targets.POST("", targetHandler.CreateTarget)
	targets.GET("", targetHandler.ListTargets)
	targets.GET("/funnel", targetHandler.GetFunnel)
	targets.GET("/:id", targetHandler.GetTarget)
	targets.PUT("/:id", targetHandler.UpdateTarget)
	targets.DELETE("/:id", targetHandler.DeleteTarget)
	targets.POST("/:id/stage", targetHandler.MoveStage)
	targets.POST("/:id/scores", scoreHandler.RecordScore)
	targets.GET("/:id/scores", scoreHandler.GetHistory)
	targets.POST("/:id/scores/evaluate", scoreHandler.ScoreTarget)

	documents := protected.Group("/documents")
	documents.POST("/folders", documentHandler.CreateFolder)
	documents.POST("/files", documentHandler.CreateFile)
	documents.GET("", documentHandler.ListDocuments)
	documents.GET("/:id", documentHandler.GetDocument)
	documents.DELETE("/:id", documentHandler.DeleteDocument)
	documents.POST("/:id/versions", documentHandler.AddVersion)
	documents.GET("/:id/versions", documentHandler.ListVersions)
	documents.POST("/:id/status", documentHandler.UpdateStatus)

	filings := protected.Group("/filings")
	filings.POST("", filingHandler.CreateFiling)
	filings.GET("", filingHandler.ListFilings)
	filings.GET("/upcoming", filingHandler.GetUpcoming)
	filings.GET("/:id", filingHandler.GetFiling)
	filings.PUT("/:id", filingHandler.UpdateFiling)
	filings.DELETE("/:id", filingHandler.DeleteFiling)

	tasks := protected.Group("/tasks")
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("", taskHandler.ListTasks)
	tasks.GET("/:id", taskHandler.GetTask)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	protected.DELETE("/trust/transactions/:id", trustHandler.DeleteTransaction)
	protected.PUT("/pipe/investors/:investorId", pipeHandler.UpdateInvestor)
	protected.DELETE("/pipe/investors/:investorId", pipeHandler.DeleteInvestor)

	// Administration
	protected.GET("/team", adminHandler.ListMembers)
	protected.POST("/team", adminHandler.AddMember)
	protected.PUT("/team/:id", adminHandler.UpdateMemberRole)
	protected.DELETE("/team/:id", adminHandler.RemoveMember)
	protected.GET("/billing", adminHandler.GetBilling)
	protected.PUT("/billing", adminHandler.UpdateBilling)
	protected.GET("/integrations", adminHandler.ListIntegrations)
	protected.PUT("/integrations/:provider", adminHandler.SaveIntegration)
	protected.DELETE("/integrations/:provider", adminHandler.DeleteIntegration)
	protected.GET("/api-keys", adminHandler.ListAPIKeys)
	protected.POST("/api-keys", adminHandler.CreateAPIKey)
	protected.DELETE("/api-keys/:id", adminHandler.RevokeAPIKey)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
