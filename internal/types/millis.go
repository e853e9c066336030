// README: Epoch-millisecond timestamp as stored in the realtime database.
package types

import "time"

// Millis is an epoch-millisecond timestamp. Session fields (lastStatusChange)
// are stored as integer millis in the database tree, while audit fields
// (createdAt, rejectedAt, updatedAt) are RFC 3339 strings; the two
// representations are never interchangeable.
type Millis int64

func MillisFrom(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

func (m Millis) IsZero() bool {
	return m == 0
}
