package ingest

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ingestcore_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(SchemaModels()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func mustSeedUser(t *testing.T, db *gorm.DB, id string, nextSeqNo int64) {
	t.Helper()
	if err := db.Create(&User{ID: id, NextSeqNo: nextSeqNo}).Error; err != nil {
		t.Fatalf("failed to seed user %q: %v", id, err)
	}
}

func mustUserID(t *testing.T, raw string) UserID {
	t.Helper()
	id, err := NewUserID(raw)
	if err != nil {
		t.Fatalf("failed to build user id: %v", err)
	}
	return id
}

func mustClientID(t *testing.T, raw string) ClientID {
	t.Helper()
	id, err := NewClientID(raw)
	if err != nil {
		t.Fatalf("failed to build client id: %v", err)
	}
	return id
}

func mustTimestamp(t *testing.T, value int64) Timestamp {
	t.Helper()
	ts, err := NewTimestamp(value)
	if err != nil {
		t.Fatalf("failed to build timestamp: %v", err)
	}
	return ts
}
