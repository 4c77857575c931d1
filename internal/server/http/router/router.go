package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/craftdeal/craftdeal/internal/server/http/handlers"
	"github.com/craftdeal/craftdeal/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.MarketplaceFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	ledgerHandler := handlers.NewLedgerHandler(facade)
	refundHandler := handlers.NewRefundHandler(facade)
	disputeHandler := handlers.NewDisputeHandler(facade)

	api := engine.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.POST("/orders/:id/actions", orderHandler.Apply)
	authed.GET("/orders/:id/deliveries", orderHandler.Deliveries)
	authed.GET("/orders/:id/escrow", refundHandler.Escrow)
	authed.POST("/orders/:id/refunds", refundHandler.Request)
	authed.GET("/orders/:id/refunds", refundHandler.ListByOrder)
	authed.GET("/refunds/:id", refundHandler.Get)

	authed.GET("/balance", ledgerHandler.Summary)
	authed.POST("/balance/transfer", ledgerHandler.Transfer)
	authed.GET("/balance/history", ledgerHandler.History)

	authed.POST("/disputes", disputeHandler.File)
	authed.GET("/disputes/:id", disputeHandler.Get)
	authed.POST("/disputes/:id/rules", disputeHandler.AcceptRules)
	authed.POST("/disputes/:id/join", disputeHandler.Join)
	authed.POST("/disputes/:id/heartbeat", disputeHandler.Heartbeat)
	authed.GET("/disputes/:id/presence", disputeHandler.Presence)
	authed.POST("/disputes/:id/messages", disputeHandler.PostMessage)
	authed.GET("/disputes/:id/messages", disputeHandler.Messages)

	admin := authed.Group("")
	admin.Use(middleware.AdminRequired())
	admin.POST("/refunds/:id/resolve", refundHandler.Resolve)
	admin.POST("/disputes/:id/close", disputeHandler.Close)

	return engine
}
