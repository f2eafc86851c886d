package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"swansong/internal/config"
)

// ErrInvalidTransition reports an Update whose mutation moved the status
// against the forward-only state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store is the authoritative mapping from session id to session record.
//
// Create generates the id; callers never supply one. Get and Update report an
// unknown id by returning a nil session with a nil error. Update applies the
// mutation atomically with respect to other store calls and stamps UpdatedAt;
// a mutation that changes the status to one CanTransition rejects fails with
// ErrInvalidTransition and leaves the record untouched. List returns sessions
// in insertion order.
type Store interface {
	Create(ctx context.Context, employeeName, employeeInfo string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, apply func(*Session)) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
	Health(ctx context.Context) error
	Close() error
}

// Open constructs the store backend selected by configuration.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		path := cfg.Store.DBPath
		if path == "" {
			path = filepath.Join(cfg.Paths.DataDir, "sessions.db")
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newSession(employeeName, employeeInfo string, now time.Time) *Session {
	return &Session{
		ID:           uuid.NewString(),
		EmployeeName: employeeName,
		EmployeeInfo: employeeInfo,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
