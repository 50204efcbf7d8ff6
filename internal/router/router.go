package router

import (
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/cache"
	"github.com/expertdev121/givesuite-sub003/internal/config"
	"github.com/expertdev121/givesuite-sub003/internal/handler"
	"github.com/expertdev121/givesuite-sub003/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and wires every handler.
func SetupRouter(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	r.GET("/healthz", handler.Health(db))

	pledgeCache := cache.New(time.Duration(cfg.Cache.PledgeTTLMinutes) * time.Minute)
	pageSize := cfg.App.DefaultPageSize

	// ====== API ======
	api := r.Group("/api")
	api.Use(middleware.AuditMiddleware(db))

	pledgeHandler := handler.NewPledgeHandler(db, pledgeCache, pageSize)
	api.GET("/pledges", pledgeHandler.ListPledges)
	api.POST("/pledges", pledgeHandler.CreatePledge)
	api.GET("/pledges/:id", pledgeHandler.GetPledge)
	api.PUT("/pledges/:id", pledgeHandler.UpdatePledge)
	api.DELETE("/pledges/:id", pledgeHandler.DeletePledge)

	paymentHandler := handler.NewPaymentHandler(db, pledgeCache, pageSize)
	api.GET("/payments", paymentHandler.ListPayments)
	api.POST("/payments", paymentHandler.CreatePayment)
	api.PUT("/payments/:id", paymentHandler.UpdatePayment)
	api.DELETE("/payments/:id", paymentHandler.DeletePayment)

	contactHandler := handler.NewContactHandler(db, pageSize)
	api.GET("/contacts", contactHandler.ListContacts)
	api.POST("/contacts", contactHandler.CreateContact)
	api.GET("/contacts/:id", contactHandler.GetContact)
	api.PUT("/contacts/:id", contactHandler.UpdateContact)
	api.DELETE("/contacts/:id", contactHandler.DeleteContact)
	api.GET("/contacts/:id/payments", contactHandler.ListContactPayments)
	api.GET("/contacts/:id/categories", contactHandler.ListContactCategories)

	categoryHandler := handler.NewCategoryHandler(db)
	api.GET("/categories", categoryHandler.ListCategories)
	api.POST("/categories", categoryHandler.CreateCategory)
	api.PUT("/categories/:id", categoryHandler.UpdateCategory)
	api.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	solicitorHandler := handler.NewSolicitorHandler(db, pageSize)
	api.GET("/solicitors", solicitorHandler.ListSolicitors)
	api.POST("/solicitors", solicitorHandler.CreateSolicitor)
	api.PUT("/solicitors/:id", solicitorHandler.UpdateSolicitor)
	api.GET("/solicitors/top", solicitorHandler.TopPerformers)
	api.POST("/solicitor-payments/:id/unassign", solicitorHandler.UnassignPayment)

	bonusHandler := handler.NewBonusHandler(db, pageSize)
	api.GET("/bonus-calculations", bonusHandler.ListBonusCalculations)
	api.POST("/bonus-calculations/mark-paid", bonusHandler.MarkPaidBulk)
	api.POST("/bonus-calculations/:id/mark-paid", bonusHandler.MarkPaid)

	planHandler := handler.NewPlanHandler(db, pageSize)
	api.GET("/payment-plans", planHandler.ListPlans)
	api.POST("/payment-plans", planHandler.CreatePlan)
	api.PUT("/payment-plans/:id", planHandler.UpdatePlan)
	api.DELETE("/payment-plans/:id", planHandler.DeletePlan)

	relationshipHandler := handler.NewRelationshipHandler(db)
	api.GET("/contacts/:id/relationships", relationshipHandler.ListForContact)
	api.POST("/relationships", relationshipHandler.CreateRelationship)
	api.DELETE("/relationships/:id", relationshipHandler.DeleteRelationship)

	exportHandler := handler.NewExportHandler(db)
	api.GET("/export/pledges.csv", exportHandler.ExportPledgesCSV)
	api.GET("/export/pledges.xlsx", exportHandler.ExportPledgesXLSX)

	return r
}
