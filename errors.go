package explode

import "errors"

var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("explode: client is closed")

	// ErrNoDatabase indicates a SQL operation on a client opened without a database.
	ErrNoDatabase = errors.New("explode: no database configured")
)
