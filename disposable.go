package injector

import "context"

// Disposable is implemented by instances that hold resources. Cached
// instances are closed when their registration is removed.
//
// Example:
//
//	type DatabaseConnection struct {
//	    conn *sql.DB
//	}
//
//	func (dc *DatabaseConnection) Close() error {
//	    return dc.conn.Close()
//	}
type Disposable interface {
	Close() error
}

// DisposableWithContext allows disposal with context for graceful shutdown.
// It takes precedence over Disposable. The context is the one given to
// Shutdown, or context.Background otherwise.
type DisposableWithContext interface {
	Close(ctx context.Context) error
}

func closeInstance(ctx context.Context, instance any) error {
	switch d := instance.(type) {
	case DisposableWithContext:
		return d.Close(ctx)
	case Disposable:
		return d.Close()
	default:
		return nil
	}
}
