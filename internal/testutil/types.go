package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrIntentional = errors.New("intentional error")
	ErrConstructor = errors.New("constructor error")
	ErrDisposal    = errors.New("disposal error")
)

// TestConfig is a plain struct class.
type TestConfig struct {
	DSN   string
	Debug bool
}

// TestDatabase is a disposable class.
type TestDatabase struct {
	ID       string
	DSN      string
	closeErr error
	closed   atomic.Bool
}

// NewTestDatabase creates a test database.
func NewTestDatabase(cfg *TestConfig) *TestDatabase {
	dsn := ""
	if cfg != nil {
		dsn = cfg.DSN
	}
	return &TestDatabase{ID: uuid.NewString(), DSN: dsn}
}

// NewFailingTestDatabase creates a database whose Close fails with err.
func NewFailingTestDatabase(err error) *TestDatabase {
	return &TestDatabase{ID: uuid.NewString(), closeErr: err}
}

func (d *TestDatabase) Close() error {
	d.closed.Store(true)
	return d.closeErr
}

// IsClosed reports whether Close was called.
func (d *TestDatabase) IsClosed() bool {
	return d.closed.Load()
}

// TestLogger is a test logger interface
type TestLogger interface {
	Log(msg string)
	GetLogs() []string
}

// TestLoggerImpl implements TestLogger
type TestLoggerImpl struct {
	logs []string
	mu   sync.Mutex
}

func NewTestLogger() TestLogger {
	return &TestLoggerImpl{}
}

func (l *TestLoggerImpl) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, msg)
}

func (l *TestLoggerImpl) GetLogs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.logs...)
}

// TestRepository depends on a class and a caller argument.
type TestRepository struct {
	ID    string
	DB    *TestDatabase
	Table string
}

// NewTestRepository creates a repository for table.
func NewTestRepository(db *TestDatabase, table string) *TestRepository {
	return &TestRepository{ID: uuid.NewString(), DB: db, Table: table}
}

// TestService has constructor, property and method dependencies.
type TestService struct {
	ID     string
	Repo   *TestRepository
	Name   string
	Logger TestLogger
}

// NewTestService creates a service.
func NewTestService(repo *TestRepository, name string) *TestService {
	return &TestService{ID: uuid.NewString(), Repo: repo, Name: name}
}

// Describe combines a caller argument with an injected repository.
func (s *TestService) Describe(prefix string, repo *TestRepository) string {
	table := ""
	if repo != nil {
		table = repo.Table
	}
	return fmt.Sprintf("%s%s:%s", prefix, s.Name, table)
}

// Sum returns an error for negative totals.
func (s *TestService) Sum(a, b int) (int, error) {
	if a+b < 0 {
		return 0, ErrTest
	}
	return a + b, nil
}

// Pair has several results.
func (s *TestService) Pair() (string, int) {
	return s.Name, len(s.Name)
}

// Touch has no results.
func (s *TestService) Touch() {}

// TestContextDisposable records the context it is closed with.
type TestContextDisposable struct {
	ClosedWith context.Context
	Delay      time.Duration
}

func (d *TestContextDisposable) Close(ctx context.Context) error {
	d.ClosedWith = ctx
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Counter counts calls from several goroutines.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Inc() {
	c.n.Add(1)
}

func (c *Counter) Count() int {
	return int(c.n.Load())
}
