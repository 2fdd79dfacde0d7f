package service

import (
	"log/slog"

	"github.com/helixml/explode/domain/tablefunc"
)

// NewRegistry builds the default function registry: explode_times under
// name, followed by any extra functions.
func NewRegistry(name string, logger *slog.Logger, extra ...tablefunc.Function) (*tablefunc.Registry, error) {
	opts := []ExplodeOption{WithExplodeLogger(logger)}
	if name != "" {
		opts = append(opts, WithExplodeName(name))
	}

	fns := make([]tablefunc.Function, 0, len(extra)+1)
	fns = append(fns, NewExplodeTimes(opts...))
	fns = append(fns, extra...)
	return tablefunc.NewRegistry(fns...)
}
