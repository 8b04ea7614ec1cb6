// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyst

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all analyst routes with the router.
//
// Description:
//
//	Registers all /v1/analyst/* endpoints with the given Gin router
//	group. The group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Session Endpoints:
//
//	POST /v1/analyst/sessions - Create a session from a CSV body
//	PUT  /v1/analyst/sessions/:id/dataset - Replace the session dataset
//	DELETE /v1/analyst/sessions/:id - Delete a session
//	POST /v1/analyst/sessions/:id/reset - Clear conversation history
//
// Question Endpoints:
//
//	POST /v1/analyst/sessions/:id/ask - Answer a question
//	GET  /v1/analyst/sessions/:id/suggestions - Starter questions
//
// Health Endpoints:
//
//	GET  /v1/analyst/health - Health check
//
// Example:
//
//	engine := analyst.NewEngine(cfg)
//	handlers := analyst.NewHandlers(engine, analyst.NewSessionStore())
//
//	v1 := router.Group("/v1")
//	analyst.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	analyst := rg.Group("/analyst")
	{
		// Session lifecycle
		analyst.POST("/sessions", handlers.HandleCreateSession)
		analyst.PUT("/sessions/:id/dataset", handlers.HandleReplaceDataset)
		analyst.DELETE("/sessions/:id", handlers.HandleDeleteSession)
		analyst.POST("/sessions/:id/reset", handlers.HandleResetConversation)

		// Questions
		analyst.POST("/sessions/:id/ask", handlers.HandleAsk)
		analyst.GET("/sessions/:id/suggestions", handlers.HandleSuggestions)

		// Health checks
		analyst.GET("/health", handlers.HandleHealth)
	}
}
