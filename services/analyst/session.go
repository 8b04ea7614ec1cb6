// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyst

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// Session holds one caller's dataset and conversation history. Sessions
// are isolated from each other; the only shared state engine-wide is the
// read-only pattern corpus and synonym dictionary.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.RWMutex
	dataset *datatypes.Dataset
	convo   *datatypes.ConversationContext
}

// Dataset returns the session's current dataset.
func (s *Session) Dataset() *datatypes.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// ReplaceDataset swaps the dataset wholesale. The previous dataset is
// never mutated in place, so in-flight questions keep a consistent view.
func (s *Session) ReplaceDataset(ds *datatypes.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
}

// Conversation returns the session's history.
func (s *Session) Conversation() *datatypes.ConversationContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.convo
}

// ResetConversation clears the history but keeps the dataset.
func (s *Session) ResetConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convo.Reset()
}

// =========================================================================
// Session Store
// =========================================================================

// SessionStore is an in-memory registry of live sessions keyed by UUID.
//
// Thread Safety: SessionStore is safe for concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new session around the given dataset.
//
// Inputs:
//   - ds: The cleaned dataset for this session. May be nil.
//
// Outputs:
//   - *Session: The registered session with a fresh UUID.
func (st *SessionStore) Create(ds *datatypes.Dataset) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		dataset:   ds,
		convo:     &datatypes.ConversationContext{},
	}

	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()

	sessionsActive.Inc()
	return session
}

// Get looks up a session by ID.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	return session, ok
}

// Delete removes a session. Returns false if the ID was unknown.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	sessionsActive.Dec()
	return true
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
