//go:build !sqlite_vtable

package sqlite

import (
	"log/slog"

	"github.com/helixml/explode/domain/tablefunc"
)

// VTableSupported reports whether virtual tables are compiled in.
const VTableSupported = false

// RegisterDriver always fails without the sqlite_vtable build tag.
func RegisterDriver(_ string, _ *tablefunc.Registry, _ *slog.Logger) error {
	return ErrVTableUnsupported
}
