package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/chatmultimodel/backend/internal/config"
	"github.com/chatmultimodel/backend/internal/conv"
	"github.com/chatmultimodel/backend/internal/logger"
	"github.com/chatmultimodel/backend/internal/models"
	"github.com/chatmultimodel/backend/internal/settings"
)

var testDBSeq int64

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:httpapi%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &conv.Conversation{}, &conv.Message{}, &settings.UserSettings{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	cfg := config.Config{
		JWTSecret:             "test-secret",
		OllamaBaseURL:         "http://127.0.0.1:1", // unreachable on purpose
		ModelCatalogTimeout:   200 * time.Millisecond,
		ChatContextWindowSize: 15,
	}
	return NewRouter(db, cfg, logger.NewNop(), nil)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope (%s %s, status %d): %v", method, path, w.Code, err)
	}
	return w.Code, env
}

func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	status, env := doJSON(t, r, http.MethodPost, "/users", "", gin.H{
		"email":    email,
		"password": "correcthorse",
	})
	if status != http.StatusOK {
		t.Fatalf("register %s: status %d message %q", email, status, env.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("register %s: missing token", email)
	}
	return data.Token
}

func TestConversationLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "owner@example.com")

	// create with a runtime-supplied session id
	status, env := doJSON(t, r, http.MethodPost, "/conversations", token, gin.H{
		"session_id": "sess-http-1",
	})
	if status != http.StatusOK {
		t.Fatalf("create: status %d message %q", status, env.Message)
	}

	// duplicate session id conflicts
	status, _ = doJSON(t, r, http.MethodPost, "/conversations", token, gin.H{
		"session_id": "sess-http-1",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate session id, got %d", status)
	}

	// append turns
	for i, role := range []string{"user", "assistant", "user"} {
		status, env = doJSON(t, r, http.MethodPost, "/conversations/sess-http-1/messages", token, gin.H{
			"role":    role,
			"content": fmt.Sprintf("m%d", i),
		})
		if status != http.StatusOK {
			t.Fatalf("append %d: status %d message %q", i, status, env.Message)
		}
	}

	// unknown role rejected
	status, _ = doJSON(t, r, http.MethodPost, "/conversations/sess-http-1/messages", token, gin.H{
		"role": "robot", "content": "x",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", status)
	}

	// full record in order
	status, env = doJSON(t, r, http.MethodGet, "/conversations/sess-http-1", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get: status %d", status)
	}
	var record struct {
		Messages []conv.Message `json:"messages"`
	}
	if err := json.Unmarshal(env.Data, &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if len(record.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(record.Messages))
	}
	for i, m := range record.Messages {
		if m.Seq != int64(i+1) {
			t.Fatalf("messages out of order: seq %d at %d", m.Seq, i)
		}
	}

	// another user is rejected
	otherToken := registerUser(t, r, "other@example.com")
	status, _ = doJSON(t, r, http.MethodGet, "/conversations/sess-http-1", otherToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign conversation, got %d", status)
	}

	// delete, then delete again
	status, _ = doJSON(t, r, http.MethodDelete, "/conversations/sess-http-1", token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: status %d", status)
	}
	status, _ = doJSON(t, r, http.MethodDelete, "/conversations/sess-http-1", token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", status)
	}
}

func TestResumeViewsOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "resume@example.com")

	if status, _ := doJSON(t, r, http.MethodPost, "/conversations", token, gin.H{"session_id": "sess-resume"}); status != http.StatusOK {
		t.Fatalf("create: status %d", status)
	}
	for i := 0; i < 20; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		if status, _ := doJSON(t, r, http.MethodPost, "/conversations/sess-resume/messages", token, gin.H{
			"role": role, "content": "m",
		}); status != http.StatusOK {
			t.Fatalf("append %d failed", i)
		}
	}

	status, env := doJSON(t, r, http.MethodGet, "/conversations/sess-resume/resume", token, nil)
	if status != http.StatusOK {
		t.Fatalf("resume: status %d", status)
	}
	var resumed conv.Resumed
	if err := json.Unmarshal(env.Data, &resumed); err != nil {
		t.Fatalf("decode resumed: %v", err)
	}
	if len(resumed.Display) != 20 || len(resumed.Context) != 15 {
		t.Fatalf("expected display 20 / context 15, got %d / %d",
			len(resumed.Display), len(resumed.Context))
	}
	if resumed.Context[0].Seq != 6 || resumed.Context[14].Seq != 20 {
		t.Fatalf("context is not the seq suffix: first=%d last=%d",
			resumed.Context[0].Seq, resumed.Context[14].Seq)
	}

	// resume of an absent session is the runtime's cue to create, not ours
	status, _ = doJSON(t, r, http.MethodGet, "/conversations/sess-absent/resume", token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for absent session, got %d", status)
	}
}

func TestSettingsAndCatalogOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "settings@example.com")

	// catalog host is unreachable, so the selector sees the fallback list
	status, env := doJSON(t, r, http.MethodGet, "/models", token, nil)
	if status != http.StatusOK {
		t.Fatalf("models: status %d", status)
	}
	var catalogData struct {
		Models []string `json:"models"`
	}
	if err := json.Unmarshal(env.Data, &catalogData); err != nil {
		t.Fatalf("decode models: %v", err)
	}
	if len(catalogData.Models) != 1 || catalogData.Models[0] != settings.DefaultModel {
		t.Fatalf("expected fallback catalog, got %v", catalogData.Models)
	}

	// lazy defaults
	status, env = doJSON(t, r, http.MethodGet, "/settings", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get settings: status %d", status)
	}
	var row settings.UserSettings
	if err := json.Unmarshal(env.Data, &row); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if row.DefaultModel != settings.DefaultModel || row.Temperature != settings.DefaultTemperature {
		t.Fatalf("unexpected defaults: %+v", row)
	}

	// a model outside the current catalog is rejected before persistence
	status, _ = doJSON(t, r, http.MethodPut, "/settings", token, gin.H{
		"default_model": "qwen2.5",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown model, got %d", status)
	}

	// a cataloged model plus boundary temperature persists
	status, env = doJSON(t, r, http.MethodPut, "/settings", token, gin.H{
		"default_model":   settings.DefaultModel,
		"temperature":     1.0,
		"favorite_models": []string{settings.DefaultModel},
	})
	if status != http.StatusOK {
		t.Fatalf("put settings: status %d message %q", status, env.Message)
	}
	if err := json.Unmarshal(env.Data, &row); err != nil {
		t.Fatalf("decode saved settings: %v", err)
	}
	if row.Temperature != 1.0 || len(row.FavoriteModels) != 1 {
		t.Fatalf("unexpected saved settings: %+v", row)
	}

	status, _ = doJSON(t, r, http.MethodPut, "/settings", token, gin.H{"temperature": 1.01})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range temperature, got %d", status)
	}
}

func TestListPaginationOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "list@example.com")

	for i := 0; i < 3; i++ {
		if status, _ := doJSON(t, r, http.MethodPost, "/conversations", token, gin.H{
			"session_id": fmt.Sprintf("sess-list-%d", i),
		}); status != http.StatusOK {
			t.Fatalf("create %d failed", i)
		}
		// appends separate the last-activity timestamps
		if status, _ := doJSON(t, r, http.MethodPost, fmt.Sprintf("/conversations/sess-list-%d/messages", i), token, gin.H{
			"role": "user", "content": "m",
		}); status != http.StatusOK {
			t.Fatalf("append %d failed", i)
		}
		time.Sleep(5 * time.Millisecond)
	}

	status, env := doJSON(t, r, http.MethodGet, "/conversations?page_size=2", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list page 1: status %d", status)
	}
	var page struct {
		Conversations []conv.Summary `json:"conversations"`
		NextCursor    string         `json:"next_cursor"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page 1: %v", err)
	}
	if len(page.Conversations) != 2 || page.NextCursor == "" {
		t.Fatalf("expected 2 items and a cursor, got %d items", len(page.Conversations))
	}
	seen := map[uint64]bool{
		page.Conversations[0].ID: true,
		page.Conversations[1].ID: true,
	}

	status, env = doJSON(t, r, http.MethodGet, "/conversations?page_size=2&cursor="+page.NextCursor, token, nil)
	if status != http.StatusOK {
		t.Fatalf("list page 2: status %d", status)
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page 2: %v", err)
	}
	if len(page.Conversations) != 1 {
		t.Fatalf("expected 1 item on page 2, got %d", len(page.Conversations))
	}
	if seen[page.Conversations[0].ID] {
		t.Fatalf("page 2 re-returned an item from page 1")
	}
}
