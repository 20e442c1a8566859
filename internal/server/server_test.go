package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/kotoba/internal/app"
	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/interfaces"
	"github.com/bobmcallan/kotoba/internal/models"
	"github.com/bobmcallan/kotoba/internal/session"
	"github.com/bobmcallan/kotoba/internal/storage"
)

// stubLookup scripts the lookup service for handler tests.
type stubLookup struct {
	result   *models.DictionaryResult
	inserted bool
	err      error
	regenErr error
}

func (s *stubLookup) Lookup(_ context.Context, _ string) (*models.DictionaryResult, bool, error) {
	return s.result, s.inserted, s.err
}

func (s *stubLookup) LookupFromImage(_ context.Context, _ []byte, _ string) (*models.DictionaryResult, bool, error) {
	return s.result, s.inserted, s.err
}

func (s *stubLookup) RegenerateImage(_ context.Context) error {
	return s.regenErr
}

type stubMedia struct {
	wav []byte
	err error
}

func (s *stubMedia) Speak(_ context.Context, _ string, _ interfaces.SpeechKind) ([]byte, error) {
	return s.wav, s.err
}

type stubStory struct {
	result *models.StoryResult
	err    error
}

func (s *stubStory) Generate(_ context.Context) (*models.StoryResult, error) {
	return s.result, s.err
}

// newTestApp builds an App with real storage and session but stub services.
func newTestApp(t *testing.T) *app.App {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Path = t.TempDir()
	logger := common.NewSilentLogger()

	manager, err := storage.NewManager(logger, config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return &app.App{
		Config:        config,
		Logger:        logger,
		Storage:       manager,
		Session:       session.NewStore(session.State{Wordbook: models.Wordbook{}}, logger),
		LookupService: &stubLookup{},
		MediaService:  &stubMedia{},
		StoryService:  &stubStory{},
		StartupTime:   time.Now(),
	}
}

func doRequest(t *testing.T, a *app.App, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	NewServer(a).Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := doRequest(t, newTestApp(t), http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestConfigEndpointRedactsKey(t *testing.T) {
	a := newTestApp(t)
	a.Config.Clients.Gemini.APIKey = "super-secret"

	rec := doRequest(t, a, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "super-secret")
	assert.Contains(t, rec.Body.String(), "gemini-2.5-flash")
}

func TestLookupEndpoint(t *testing.T) {
	a := newTestApp(t)
	result := &models.DictionaryResult{Word: "猫", Reading: "ねこ"}
	a.LookupService = &stubLookup{result: result, inserted: true}
	a.Session.Dispatch(session.WordbookReplaced{Wordbook: models.Wordbook{{Word: "猫"}}})

	rec := doRequest(t, a, http.MethodPost, "/api/lookup", map[string]string{"query": "猫"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result   *models.DictionaryResult `json:"result"`
		Inserted bool                     `json:"inserted"`
		Wordbook models.Wordbook          `json:"wordbook"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "猫", resp.Result.Word)
	assert.True(t, resp.Inserted)
	assert.Len(t, resp.Wordbook, 1)
}

func TestLookupEndpointBusy(t *testing.T) {
	a := newTestApp(t)
	a.LookupService = &stubLookup{err: interfaces.ErrBusy}

	rec := doRequest(t, a, http.MethodPost, "/api/lookup", map[string]string{"query": "猫"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLookupEndpointFailureUsesSessionMessage(t *testing.T) {
	a := newTestApp(t)
	a.LookupService = &stubLookup{err: errors.New("model down")}
	// The service records the user-facing message before returning the error.
	gen, _ := a.Session.Begin(session.LookupStarted{Query: "xyz"})
	a.Session.Dispatch(session.LookupFailed{Gen: gen, Message: "No result found."})

	rec := doRequest(t, a, http.MethodPost, "/api/lookup", map[string]string{"query": "xyz"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "No result found.")
}

func TestLookupEndpointRejectsGet(t *testing.T) {
	rec := doRequest(t, newTestApp(t), http.MethodGet, "/api/lookup", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLookupImageEndpointBadBase64(t *testing.T) {
	rec := doRequest(t, newTestApp(t), http.MethodPost, "/api/lookup/image",
		map[string]string{"image_base64": "!!!", "mime_type": "image/png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWordbookEndpoint(t *testing.T) {
	a := newTestApp(t)
	a.Session.Dispatch(session.WordbookReplaced{Wordbook: models.Wordbook{{Word: "猫"}, {Word: "犬"}}})

	rec := doRequest(t, a, http.MethodGet, "/api/wordbook", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Wordbook models.Wordbook `json:"wordbook"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Wordbook, 2)
	assert.Equal(t, "猫", resp.Wordbook[0].Word)
}

func TestWordbookExportEndpoint(t *testing.T) {
	a := newTestApp(t)
	a.Session.Dispatch(session.WordbookReplaced{Wordbook: models.Wordbook{
		{Word: "猫", Reading: "ねこ", Timestamp: time.Now().UnixMilli()},
	}})

	rec := doRequest(t, a, http.MethodGet, "/api/wordbook/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "wordbook-")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"), "missing BOM")
	assert.Contains(t, body, `"猫","ねこ"`)
}

func TestSpeechEndpoint(t *testing.T) {
	a := newTestApp(t)
	a.MediaService = &stubMedia{wav: []byte("RIFFdata")}

	rec := doRequest(t, a, http.MethodPost, "/api/speech", map[string]string{"text": "猫", "kind": "word"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, "RIFFdata", rec.Body.String())
}

func TestSpeechEndpointBusy(t *testing.T) {
	a := newTestApp(t)
	a.MediaService = &stubMedia{err: interfaces.ErrBusy}

	rec := doRequest(t, a, http.MethodPost, "/api/speech", map[string]string{"text": "猫", "kind": "sentence"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestImageEndpoint(t *testing.T) {
	a := newTestApp(t)
	payload := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, a.Storage.Blobs().SaveBlob(context.Background(), "images", "猫", payload, "image/png"))

	rec := doRequest(t, a, http.MethodGet, "/api/images/%E7%8C%AB", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, payload, rec.Body.Bytes())
}

func TestImageEndpointNotFound(t *testing.T) {
	rec := doRequest(t, newTestApp(t), http.MethodGet, "/api/images/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImageRegenerateEndpoint(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodPost, "/api/images/regenerate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	a.LookupService = &stubLookup{regenErr: interfaces.ErrBusy}
	rec = doRequest(t, a, http.MethodPost, "/api/images/regenerate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	a.LookupService = &stubLookup{regenErr: errors.New("no current result")}
	rec = doRequest(t, a, http.MethodPost, "/api/images/regenerate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoryEndpoint(t *testing.T) {
	a := newTestApp(t)
	a.StoryService = &stubStory{result: &models.StoryResult{
		Story:     "猫と犬の話。",
		Words:     []string{"猫", "犬"},
		CreatedAt: time.Now().UnixMilli(),
	}}

	rec := doRequest(t, a, http.MethodPost, "/api/story", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.StoryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "猫と犬の話。", resp.Story)
	assert.Equal(t, []string{"猫", "犬"}, resp.Words)
}

func TestStoryEndpointFailure(t *testing.T) {
	a := newTestApp(t)
	a.StoryService = &stubStory{err: errors.New("wordbook is empty")}

	rec := doRequest(t, a, http.MethodPost, "/api/story", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStateEndpoint(t *testing.T) {
	a := newTestApp(t)
	a.Session.Dispatch(session.WordbookReplaced{Wordbook: models.Wordbook{{Word: "猫"}}})

	rec := doRequest(t, a, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var state session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Len(t, state.Wordbook, 1)
	assert.False(t, state.Lookup.Busy)
}

func TestStateStreamEndpoint(t *testing.T) {
	a := newTestApp(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/state/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		NewServer(a).Handler().ServeHTTP(rec, req)
		close(done)
	}()

	<-done
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	// At minimum the initial snapshot was flushed before the context expired.
	assert.Contains(t, rec.Body.String(), "data: ")
	assert.Contains(t, rec.Body.String(), `"lookup_phase"`)
}

func TestProfileEndpoint(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profile":null}`, rec.Body.String())

	rec = doRequest(t, a, http.MethodPut, "/api/profile", map[string]string{"nickname": "aki", "level": "N4"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, a, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"aki"`)
	assert.Contains(t, rec.Body.String(), `"N4"`)

	// The session sees the update without a reload.
	require.NotNil(t, a.Session.State().Profile)
	assert.Equal(t, "aki", a.Session.State().Profile.Nickname)
}

func TestCORSPreflights(t *testing.T) {
	rec := doRequest(t, newTestApp(t), http.MethodOptions, "/api/lookup", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
