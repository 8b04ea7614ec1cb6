// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyst

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/gate"
)

// =========================================================================
// Request / Response Types
// =========================================================================

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateSessionResponse describes a freshly registered session.
type CreateSessionResponse struct {
	SessionID   string   `json:"session_id"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns"`
	Suggestions []string `json:"suggestions"`
}

// AskRequest is the body for POST /v1/analyst/sessions/:id/ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// SuggestionsResponse lists starter questions for a session's dataset.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// =========================================================================
// Handlers
// =========================================================================

// Handlers binds the engine and session store to the HTTP surface.
type Handlers struct {
	engine *Engine
	store  *SessionStore
}

// NewHandlers creates the handler set.
func NewHandlers(engine *Engine, store *SessionStore) *Handlers {
	return &Handlers{engine: engine, store: store}
}

func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// resolveSession looks up the :id session, writing the 404 response
// itself when the session is unknown.
func (h *Handlers) resolveSession(c *gin.Context) (*Session, bool) {
	id := c.Param("id")
	session, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "session not found: " + id,
			Code:  "SESSION_NOT_FOUND",
		})
		return nil, false
	}
	return session, true
}

// HandleCreateSession handles POST /v1/analyst/sessions.
//
// Description:
//
//	Reads a CSV document from the request body, infers column types,
//	and registers a new session around the resulting dataset.
//
// Response:
//
//	201 Created: CreateSessionResponse
//	400 Bad Request: Body is not parseable CSV
func (h *Handlers) HandleCreateSession(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateSession")

	ds, err := datatypes.ReadCSV(c.Request.Body)
	if err != nil {
		logger.Warn("rejecting unparseable dataset", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "could not parse CSV body: " + err.Error(),
			Code:  "INVALID_DATASET",
		})
		return
	}

	session := h.store.Create(ds)
	logger.Info("session created",
		slog.String("session_id", session.ID),
		slog.Int("rows", ds.RowCount()),
		slog.Int("columns", len(ds.Columns())),
	)

	c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID:   session.ID,
		Rows:        ds.RowCount(),
		Columns:     ds.ColumnNames(),
		Suggestions: gate.SuggestQuestions(ds),
	})
}

// HandleReplaceDataset handles PUT /v1/analyst/sessions/:id/dataset.
//
// Description:
//
//	Parses a replacement CSV and swaps it into the session wholesale.
//	In-flight questions keep the dataset they started with.
//
// Response:
//
//	200 OK: CreateSessionResponse for the new dataset
//	400 Bad Request: Body is not parseable CSV
//	404 Not Found: Unknown session
func (h *Handlers) HandleReplaceDataset(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleReplaceDataset")

	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	ds, err := datatypes.ReadCSV(c.Request.Body)
	if err != nil {
		logger.Warn("rejecting unparseable dataset", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "could not parse CSV body: " + err.Error(),
			Code:  "INVALID_DATASET",
		})
		return
	}

	session.ReplaceDataset(ds)
	logger.Info("dataset replaced",
		slog.String("session_id", session.ID),
		slog.Int("rows", ds.RowCount()),
	)

	c.JSON(http.StatusOK, CreateSessionResponse{
		SessionID:   session.ID,
		Rows:        ds.RowCount(),
		Columns:     ds.ColumnNames(),
		Suggestions: gate.SuggestQuestions(ds),
	})
}

// HandleAsk handles POST /v1/analyst/sessions/:id/ask.
//
// Description:
//
//	Answers one question against the session's dataset. Always returns
//	a well-formed envelope; backend failures are absorbed by the tier
//	chain and never surface as HTTP errors.
//
// Response:
//
//	200 OK: datatypes.AnswerEnvelope
//	400 Bad Request: Missing question
//	404 Not Found: Unknown session
func (h *Handlers) HandleAsk(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAsk")

	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "question is required",
			Code:  "MISSING_QUESTION",
		})
		return
	}

	logger.Debug("handling question", slog.String("session_id", session.ID))
	envelope := h.engine.Ask(c.Request.Context(), req.Question, session.Dataset(), session.Conversation())
	c.JSON(http.StatusOK, envelope)
}

// HandleSuggestions handles GET /v1/analyst/sessions/:id/suggestions.
func (h *Handlers) HandleSuggestions(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SuggestionsResponse{
		Suggestions: gate.SuggestQuestions(session.Dataset()),
	})
}

// HandleResetConversation handles POST /v1/analyst/sessions/:id/reset.
// Clears the conversation history but keeps the dataset.
func (h *Handlers) HandleResetConversation(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}
	session.ResetConversation()
	c.Status(http.StatusNoContent)
}

// HandleDeleteSession handles DELETE /v1/analyst/sessions/:id.
func (h *Handlers) HandleDeleteSession(c *gin.Context) {
	if !h.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "session not found: " + c.Param("id"),
			Code:  "SESSION_NOT_FOUND",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleHealth handles GET /v1/analyst/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.store.Len(),
	})
}
