package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/export"
	"github.com/bobmcallan/kotoba/internal/interfaces"
	"github.com/bobmcallan/kotoba/internal/models"
	"github.com/bobmcallan/kotoba/internal/session"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	// Redacted view: never expose the API key.
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":  s.app.Config.Environment,
		"model":        s.app.Config.Clients.Gemini.Model,
		"image_model":  s.app.Config.Clients.Gemini.ImageModel,
		"speech_model": s.app.Config.Clients.Gemini.SpeechModel,
		"speech_voice": s.app.Config.Clients.Gemini.SpeechVoice,
	})
}

// --- Lookup handlers ---

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, inserted, err := s.app.LookupService.Lookup(r.Context(), req.Query)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"result":   result,
		"inserted": inserted,
		"wordbook": s.app.Session.State().Wordbook,
	})
}

func (s *Server) handleLookupImage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid image encoding: "+err.Error())
		return
	}

	result, inserted, err := s.app.LookupService.LookupFromImage(r.Context(), image, req.MimeType)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"result":   result,
		"inserted": inserted,
		"wordbook": s.app.Session.State().Wordbook,
	})
}

// writeLookupError maps a lookup failure to a response: busy phases are
// conflicts, everything else surfaces the session's user-facing message.
func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, interfaces.ErrBusy) {
		WriteError(w, http.StatusConflict, "A lookup is already in progress")
		return
	}
	message := s.app.Session.State().Error
	if message == "" {
		message = fmt.Sprintf("Lookup error: %v", err)
	}
	WriteError(w, http.StatusBadGateway, message)
}

// --- Wordbook handlers ---

func (s *Server) handleWordbook(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wordbook": s.app.Session.State().Wordbook,
	})
}

func (s *Server) handleWordbookExport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	data := export.WordbookCSV(s.app.Session.State().Wordbook)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(time.Now())))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// --- Media handlers ---

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Text string `json:"text"`
		Kind string `json:"kind"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	kind := interfaces.SpeechWord
	if req.Kind == string(interfaces.SpeechSentence) {
		kind = interfaces.SpeechSentence
	}

	wav, err := s.app.MediaService.Speak(r.Context(), req.Text, kind)
	if err != nil {
		if errors.Is(err, interfaces.ErrBusy) {
			WriteError(w, http.StatusConflict, "Speech for this slot is already loading")
			return
		}
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Speech error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	w.Write(wav)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	word := PathParam(r, "/api/images/", "")
	if word == "" {
		WriteError(w, http.StatusBadRequest, "Word is required")
		return
	}

	data, contentType, err := s.app.Storage.Blobs().GetBlob(r.Context(), "images", word)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("No image for '%s'", word))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImageRegenerate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.LookupService.RegenerateImage(r.Context()); err != nil {
		if errors.Is(err, interfaces.ErrBusy) {
			WriteError(w, http.StatusConflict, "Image generation is already in progress")
			return
		}
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Cannot regenerate image: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"image_key": s.app.Session.State().ImageKey,
	})
}

// --- Story handler ---

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	story, err := s.app.StoryService.Generate(r.Context())
	if err != nil {
		if errors.Is(err, interfaces.ErrBusy) {
			WriteError(w, http.StatusConflict, "A story is already being generated")
			return
		}
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Story error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, story)
}

// --- Session state handlers ---

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Session.State())
}

// handleStateStream pushes session state snapshots over SSE. The stream
// starts with the current state and then follows every transition until
// the client disconnects.
func (s *Server) handleStateStream(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	states, cancel := s.app.Session.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeState := func(state interface{}) bool {
		data, err := json.Marshal(state)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeState(s.app.Session.State()) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case state, open := <-states:
			if !open || !writeState(state) {
				return
			}
		}
	}
}

// --- Profile handlers ---

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profile, ok := s.app.Storage.Profile().GetProfile(r.Context())
		if !ok {
			WriteJSON(w, http.StatusOK, map[string]interface{}{"profile": nil})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"profile": profile})

	case http.MethodPut:
		var req struct {
			Nickname string `json:"nickname"`
			Level    string `json:"level"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		profile := &models.UserProfile{
			Nickname:  req.Nickname,
			Level:     req.Level,
			UpdatedAt: time.Now().UnixMilli(),
		}
		if err := s.app.Storage.Profile().SaveProfile(r.Context(), profile); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save profile: %v", err))
			return
		}
		s.app.Session.Dispatch(session.ProfileUpdated{Profile: profile})
		WriteJSON(w, http.StatusOK, map[string]interface{}{"profile": profile})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}
