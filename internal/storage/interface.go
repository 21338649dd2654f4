package storage

// Storage is a string-keyed store of serialized values, the client-local
// persistence the chat state is mirrored into.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error

	Init() error
	Close() error
	Backup() error
}
