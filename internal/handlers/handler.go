package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MickeyElders/pi-control-program/internal/logger"
	"github.com/MickeyElders/pi-control-program/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/ping", h.ping)
		api.GET("/status", h.status)
		api.GET("/history", h.history)
		api.GET("/events", h.events)
		api.GET("/runtime", h.runtime)

		api.POST("/relay", h.setRelay)
		api.POST("/auto", h.setAuto)
		api.POST("/lift", h.setLift)
		api.POST("/heater", h.setHeater)
	}

	// Status stream over WebSocket, same port
	router.GET("/ws", h.wsConnect)

	return router
}
