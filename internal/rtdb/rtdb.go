// README: Key-path document store contract backed by Firebase RTDB in production.
package rtdb

import "context"

// TxnFunc runs inside a transaction. decode unmarshals the current value at
// the transacted path (a missing node decodes as null); the returned value
// replaces the node. Returning an error aborts the transaction.
type TxnFunc func(decode func(v any) error) (any, error)

// Database is the hierarchical document store the dashboard reads and writes.
// Paths are slash-separated ("driverApplications/abc123"). Update applies a
// multi-location merge atomically: either every listed path lands or none do.
type Database interface {
	Get(ctx context.Context, path string, v any) error
	Set(ctx context.Context, path string, v any) error
	Update(ctx context.Context, path string, fields map[string]any) error
	Push(ctx context.Context, path string, v any) (string, error)
	Transaction(ctx context.Context, path string, fn TxnFunc) error

	// GetByChildValue fetches the children of path whose child field equals
	// value, decoded into v (a map keyed by child id).
	GetByChildValue(ctx context.Context, path, child string, value, v any) error
}
