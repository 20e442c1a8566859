package server

import "net/http"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Lookup
	mux.HandleFunc("/api/lookup", s.handleLookup)
	mux.HandleFunc("/api/lookup/image", s.handleLookupImage)

	// Wordbook
	mux.HandleFunc("/api/wordbook", s.handleWordbook)
	mux.HandleFunc("/api/wordbook/export", s.handleWordbookExport)

	// Media
	mux.HandleFunc("/api/speech", s.handleSpeech)
	mux.HandleFunc("/api/images/", s.handleImage)
	mux.HandleFunc("/api/images/regenerate", s.handleImageRegenerate)

	// Story
	mux.HandleFunc("/api/story", s.handleStory)

	// Session state
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/state/stream", s.handleStateStream)

	// Profile
	mux.HandleFunc("/api/profile", s.handleProfile)
}
