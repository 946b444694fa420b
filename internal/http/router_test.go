package http_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/avosuivi/actionplan-backend/internal/data/repos/conversation"
	"github.com/avosuivi/actionplan-backend/internal/data/repos/plan"
	"github.com/avosuivi/actionplan-backend/internal/data/repos/testutil"
	apphttp "github.com/avosuivi/actionplan-backend/internal/http"
	"github.com/avosuivi/actionplan-backend/internal/http/handlers"
	"github.com/avosuivi/actionplan-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gormDB := testutil.DB(t)
	log := testutil.Logger(t)

	convRepo := conversation.NewRepo(gormDB, log)
	sujetRepo := plan.NewSujetRepo(gormDB, log)
	actionRepo := plan.NewActionRepo(gormDB, log)

	convService := services.NewConversationService(gormDB, log, convRepo)
	sujetService := services.NewSujetService(gormDB, log, sujetRepo, convRepo)
	actionService := services.NewActionService(gormDB, log, actionRepo, sujetRepo)

	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:                 log,
		ConversationHandler: handlers.NewConversationHandler(log, convService),
		SujetHandler:        handlers.NewSujetHandler(log, sujetService),
		ActionHandler:       handlers.NewActionHandler(log, actionService),
	})
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	env, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %q", rec.Body.String())
	}
	code, _ := env["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	engine := newTestEngine(t)
	rec := doJSON(t, engine, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["status"]; got != "up" {
		t.Fatalf("expected status up, got %v", got)
	}
}

func TestSaveConversationRoundTrip(t *testing.T) {
	engine := newTestEngine(t)

	image := []byte{0x89, 0x50, 0x4e, 0x47}
	rec := doJSON(t, engine, http.MethodPost, "/save-conversation", gin.H{
		"user_name":         "majed",
		"conversation":      "Q: avancement?||R: audit planifié",
		"date_conversation": "2025-03-14T09:30:00Z",
		"image_base64":      base64.StdEncoding.EncodeToString(image),
		"image_mime":        "image/png",
		"image_name":        "tableau.png",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save failed: %d %s", rec.Code, rec.Body.String())
	}
	saved := decodeBody(t, rec)
	if saved["status"] != "ok" {
		t.Fatalf("expected ok status, got %v", saved)
	}
	id := int64(saved["id"].(float64))

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/conversations/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d %s", rec.Code, rec.Body.String())
	}
	detail := decodeBody(t, rec)
	if detail["user_name"] != "majed" || detail["has_image"] != true {
		t.Fatalf("detail mismatch: %v", detail)
	}

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/conversations/%d/image", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("image failed: %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("image mime wrong: %q", rec.Header().Get("Content-Type"))
	}
	if !bytes.Equal(rec.Body.Bytes(), image) {
		t.Fatalf("image bytes mismatch")
	}

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/conversations/%d/export.txt", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export failed: %d", rec.Code)
	}
	if rec.Body.String() != "Q: avancement?\nR: audit planifié" {
		t.Fatalf("export mismatch: %q", rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/conversations?author=maj", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	page := decodeBody(t, rec)
	if page["total"].(float64) != 1 {
		t.Fatalf("list total wrong: %v", page)
	}
}

func TestSaveConversationValidationStatuses(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/save-conversation", gin.H{
		"user_name":    "",
		"conversation": "x",
	})
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "empty_user_name" {
		t.Fatalf("expected 422 empty_user_name, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/save-conversation", gin.H{
		"user_name":    "majed",
		"conversation": "x",
		"image_base64": "%%%not-base64%%%",
	})
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "invalid_image_base64" {
		t.Fatalf("expected 422 invalid_image_base64, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/conversations/12345", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "conversation_not_found" {
		t.Fatalf("expected 404 conversation_not_found, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSujetEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/save-conversation", gin.H{
		"user_name":    "majed",
		"conversation": "point hebdo",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save failed: %d", rec.Code)
	}
	convID := int64(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, engine, http.MethodPost, "/sujets", gin.H{
		"conversation_id": convID,
		"label":           "Qualité",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create sujet failed: %d %s", rec.Code, rec.Body.String())
	}
	sujet := decodeBody(t, rec)["sujet"].(map[string]any)
	rootID := int64(sujet["id"].(float64))

	rec = doJSON(t, engine, http.MethodPost, "/sous-sujets", gin.H{
		"parent_id": rootID,
		"label":     "Contrôle entrant",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create sous-sujet failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/sujets/tree?conversation_id=%d", convID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sujet tree failed: %d %s", rec.Code, rec.Body.String())
	}
	forest := decodeBody(t, rec)["sujets"].([]any)
	if len(forest) != 1 {
		t.Fatalf("expected one root, got %v", forest)
	}
	root := forest[0].(map[string]any)
	if len(root["children"].([]any)) != 1 {
		t.Fatalf("expected one child under root, got %v", root)
	}

	rec = doJSON(t, engine, http.MethodGet, "/sujets/tree", nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "missing_scope" {
		t.Fatalf("expected 400 missing_scope, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/sujets", gin.H{
		"conversation_id": convID + 99,
		"label":           "X",
	})
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "conversation_not_found" {
		t.Fatalf("expected 404 conversation_not_found, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestActionEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/save-conversation", gin.H{
		"user_name":    "majed",
		"conversation": "point hebdo",
	})
	convID := int64(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, engine, http.MethodPost, "/sujets", gin.H{
		"conversation_id": convID,
		"label":           "Maintenance",
	})
	sujet := decodeBody(t, rec)["sujet"].(map[string]any)
	sujetID := int64(sujet["id"].(float64))

	rec = doJSON(t, engine, http.MethodPost, "/actions/tree", gin.H{
		"sujet_id": sujetID,
		"tree": gin.H{
			"task": "A",
			"children": []gin.H{
				{"task": "B", "children": []gin.H{{"task": "D"}}},
				{"task": "C", "due_date": "2025-04-01", "status": "in_progress"},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("insert tree failed: %d %s", rec.Code, rec.Body.String())
	}
	tree := decodeBody(t, rec)["tree"].(map[string]any)
	children := tree["children"].([]any)
	if len(children) != 2 {
		t.Fatalf("tree shape wrong: %v", tree)
	}

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/actions/tree?sujet_id=%d", sujetID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("action tree failed: %d %s", rec.Code, rec.Body.String())
	}
	roots := decodeBody(t, rec)["actions"].([]any)
	if len(roots) != 1 {
		t.Fatalf("expected one action root, got %v", roots)
	}

	rec = doJSON(t, engine, http.MethodPost, "/actions", gin.H{
		"sujet_id": sujetID,
		"task":     "E",
		"status":   "started",
	})
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "invalid_status" {
		t.Fatalf("expected 422 invalid_status, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/actions/tree", gin.H{
		"sujet_id": sujetID + 99,
		"tree":     gin.H{"task": "X"},
	})
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "sujet_not_found" {
		t.Fatalf("expected 404 sujet_not_found, got %d %s", rec.Code, rec.Body.String())
	}
}
