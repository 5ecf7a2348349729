package helpers

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"pharmacy_backend/internal/database"
	"pharmacy_backend/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewTestDB opens a private in-memory SQLite database with the service schema.
// A single connection keeps every query on the same in-memory instance.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.InitWithWriter("test", io.Discard)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Statement is one executed SQL statement with its bind variables.
type Statement struct {
	SQL  string
	Vars []interface{}
}

// StatementLog records UPDATE and DELETE statements issued through a *gorm.DB.
type StatementLog struct {
	mu         sync.Mutex
	statements []Statement
}

// CaptureWrites registers callbacks on db that record every UPDATE and DELETE.
func CaptureWrites(t *testing.T, db *gorm.DB) *StatementLog {
	t.Helper()
	log := &StatementLog{}

	record := func(tx *gorm.DB) {
		log.mu.Lock()
		defer log.mu.Unlock()
		vars := make([]interface{}, len(tx.Statement.Vars))
		copy(vars, tx.Statement.Vars)
		log.statements = append(log.statements, Statement{SQL: tx.Statement.SQL.String(), Vars: vars})
	}

	if err := db.Callback().Update().After("gorm:update").Register("test:capture_update", record); err != nil {
		t.Fatalf("register update callback: %v", err)
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("test:capture_delete", record); err != nil {
		t.Fatalf("register delete callback: %v", err)
	}
	return log
}

func (l *StatementLog) All() []Statement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Statement, len(l.statements))
	copy(out, l.statements)
	return out
}

// Last returns the most recent statement, or an empty one.
func (l *StatementLog) Last() Statement {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.statements) == 0 {
		return Statement{}
	}
	return l.statements[len(l.statements)-1]
}

func (l *StatementLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statements = nil
}
