package logx

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/workbench/schema"
)

type contextKey int

const surfaceKey contextKey = iota

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSurface annotates the logger with the surface id if present.
func WithSurface(ctx context.Context, id schema.SurfaceID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if id != "" {
		if current, ok := ctx.Value(surfaceKey).(schema.SurfaceID); ok && current == id {
			return log
		}
		log = log.With("surface", id)
	}
	return log
}

// WithResource annotates the logger with the resource when available.
func WithResource(log pslog.Logger, resource schema.Resource) pslog.Logger {
	if resource != "" {
		log = log.With("resource", resource)
	}
	return log
}

// ContextWithSurface stores the surface marker on the context for log
// de-duplication.
func ContextWithSurface(ctx context.Context, id schema.SurfaceID) context.Context {
	if ctx == nil || id == "" {
		return ctx
	}
	return context.WithValue(ctx, surfaceKey, id)
}

// ContextWithSurfaceLogger attaches the logger and surface marker to the context.
func ContextWithSurfaceLogger(ctx context.Context, log pslog.Logger, id schema.SurfaceID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithSurface(ctx, id)
}
