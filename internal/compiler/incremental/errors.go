package incremental

import "fmt"

// FileReadError indicates a compilation unit could not be read from disk.
type FileReadError struct {
	Path   string
	Reason error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("file read error: %s - %v", e.Path, e.Reason)
}

func (e *FileReadError) Unwrap() error { return e.Reason }

// CacheLoadError indicates the persisted cache could not be read or decoded.
type CacheLoadError struct {
	Reason error
}

func (e *CacheLoadError) Error() string {
	return fmt.Sprintf("cache load error: %v", e.Reason)
}

func (e *CacheLoadError) Unwrap() error { return e.Reason }

// CacheSaveError indicates the cache snapshot could not be written.
type CacheSaveError struct {
	Reason error
}

func (e *CacheSaveError) Error() string {
	return fmt.Sprintf("cache save error: %v", e.Reason)
}

func (e *CacheSaveError) Unwrap() error { return e.Reason }

// SerializationError indicates an artifact could not be encoded or decoded.
type SerializationError struct {
	Reason error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error: %v", e.Reason)
}

func (e *SerializationError) Unwrap() error { return e.Reason }

// CyclicDependencyError names a unit that participates in a dependency cycle.
type CyclicDependencyError struct {
	Unit string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", e.Unit)
}

// InvalidCacheEntryError reports a structurally inconsistent cache entry.
type InvalidCacheEntryError struct {
	Path    string
	Message string
}

func (e *InvalidCacheEntryError) Error() string {
	return fmt.Sprintf("invalid cache entry: %s: %s", e.Path, e.Message)
}
