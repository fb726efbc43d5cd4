package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flashsync/ingestcore/internal/ingest"
	"github.com/flashsync/ingestcore/internal/server"
	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const jsonContentType = "application/json"

type resultPayload struct {
	Index int    `json:"index"`
	SeqNo int64  `json:"seqNo"`
	Error string `json:"error"`
}

type batchResponse struct {
	Results []resultPayload `json:"results"`
}

func postBatch(testContext *testing.T, handler http.Handler, userID, clientID string, operations []map[string]any) batchResponse {
	testContext.Helper()

	raw, err := json.Marshal(map[string]any{"operations": operations})
	if err != nil {
		testContext.Fatalf("failed to marshal batch: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/v1/operations", bytes.NewReader(raw))
	request.Header.Set("Content-Type", jsonContentType)
	request.Header.Set("X-User-Id", userID)
	request.Header.Set("X-Client-Id", clientID)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		testContext.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response batchResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		testContext.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestTwoClientsConvergeOnLastWriterWinsCard(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:ingestcore_integration_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(ingest.SchemaModels()...); err != nil {
		testContext.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Create(&ingest.User{ID: "user-abc", NextSeqNo: 1}).Error; err != nil {
		testContext.Fatalf("failed to seed user: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Dispatcher:     ingest.NewDispatcher(db, nil),
		BatchValidator: ingest.NewBatchValidator(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	cardPayload := func(due string) map[string]any {
		return map[string]any{
			"id": "card-1", "due": due, "stability": 2.5, "difficulty": 5.0,
			"elapsed_days": 1, "scheduled_days": 3, "reps": 2, "lapses": 0,
			"state": 1, "last_review": "2024-01-01",
		}
	}

	first := postBatch(testContext, handler, "user-abc", "phone", []map[string]any{
		{"type": "card", "timestamp": 1000, "payload": cardPayload("2024-01-05")},
	})
	if len(first.Results) != 1 || first.Results[0].SeqNo != 1 || first.Results[0].Error != "" {
		testContext.Fatalf("unexpected first result: %#v", first.Results)
	}

	second := postBatch(testContext, handler, "user-abc", "laptop", []map[string]any{
		{"type": "card", "timestamp": 500, "payload": cardPayload("2024-01-10")},
	})
	if len(second.Results) != 1 || second.Results[0].SeqNo != 2 || second.Results[0].Error != "" {
		testContext.Fatalf("unexpected second result: %#v", second.Results)
	}

	var stored ingest.Card
	if err := db.First(&stored, "card_id = ?", "card-1").Error; err != nil {
		testContext.Fatalf("failed to reload card: %v", err)
	}
	if stored.Due != "2024-01-05" {
		testContext.Fatalf("expected the later-timestamped write from phone to remain authoritative, got due=%q", stored.Due)
	}
}

func TestReviewLogHistoryIsPreservedAcrossReplay(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:ingestcore_integration_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(ingest.SchemaModels()...); err != nil {
		testContext.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Create(&ingest.User{ID: "user-abc", NextSeqNo: 1}).Error; err != nil {
		testContext.Fatalf("failed to seed user: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Dispatcher:     ingest.NewDispatcher(db, nil),
		BatchValidator: ingest.NewBatchValidator(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	reviewLogOp := map[string]any{
		"type": "reviewLog", "timestamp": 1000,
		"payload": map[string]any{
			"id": "log-1", "cardId": "card-1", "grade": 3, "state": 2,
			"due": "2024-01-05", "stability": 2.5, "difficulty": 5.0,
			"elapsed_days": 1, "last_elapsed_days": 0, "scheduled_days": 3,
			"review": "2024-01-01", "duration": 12000,
		},
	}

	first := postBatch(testContext, handler, "user-abc", "phone", []map[string]any{reviewLogOp})
	if first.Results[0].Error != "" {
		testContext.Fatalf("unexpected error on first submission: %s", first.Results[0].Error)
	}

	replay := postBatch(testContext, handler, "user-abc", "phone", []map[string]any{reviewLogOp})
	if replay.Results[0].Error != "" {
		testContext.Fatalf("expected replay to be a harmless no-op, got error: %s", replay.Results[0].Error)
	}

	var count int64
	if err := db.Model(&ingest.ReviewLog{}).Where("review_log_id = ?", "log-1").Count(&count).Error; err != nil {
		testContext.Fatalf("failed to count review logs: %v", err)
	}
	if count != 1 {
		testContext.Fatalf("expected exactly one stored review log row after replay, got %d", count)
	}
}

func TestBatchOverCapIsRejectedWithExactMessage(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:ingestcore_integration_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(ingest.SchemaModels()...); err != nil {
		testContext.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Create(&ingest.User{ID: "user-abc", NextSeqNo: 1}).Error; err != nil {
		testContext.Fatalf("failed to seed user: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Dispatcher:     ingest.NewDispatcher(db, nil),
		BatchValidator: ingest.NewBatchValidator(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	operations := make([]map[string]any, ingest.MaxOperationsPerBatch+1)
	for i := range operations {
		operations[i] = map[string]any{
			"type": "deck", "timestamp": 1,
			"payload": map[string]any{"id": "deck-1", "name": "x", "description": "", "deleted": false},
		}
	}
	raw, err := json.Marshal(map[string]any{"operations": operations})
	if err != nil {
		testContext.Fatalf("failed to marshal batch: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/v1/operations", bytes.NewReader(raw))
	request.Header.Set("Content-Type", jsonContentType)
	request.Header.Set("X-User-Id", "user-abc")
	request.Header.Set("X-Client-Id", "phone")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		testContext.Fatalf("expected 400, got %d", recorder.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		testContext.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] != "Too many operations" {
		testContext.Fatalf("expected exact message %q, got %q", "Too many operations", body["error"])
	}
}
