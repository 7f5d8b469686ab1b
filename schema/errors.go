package schema

import "errors"

var (
	// ErrInvalidResource indicates a malformed resource identifier.
	ErrInvalidResource = errors.New("invalid resource")
	// ErrSurfaceNotFound indicates a requested surface could not be found.
	ErrSurfaceNotFound = errors.New("surface not found")
	// ErrGroupNotFound indicates a requested layout group could not be found.
	ErrGroupNotFound = errors.New("group not found")
	// ErrSurfaceDisposed indicates an operation targeted a disposed surface.
	ErrSurfaceDisposed = errors.New("surface disposed")
	// ErrNotPreview indicates a preview-only operation targeted a permanent surface.
	ErrNotPreview = errors.New("surface is not a preview")
	// ErrNoOpener indicates no registered opener claimed the request.
	ErrNoOpener = errors.New("no opener for resource")
	// ErrWorkbenchClosed indicates the workbench has been shut down.
	ErrWorkbenchClosed = errors.New("workbench closed")
)
