package ports

// Cache is a process-local key/value store whose entries expire after a
// fixed time-to-live.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
}
