package repository

import "github.com/kankokujin/kankokujin-no-map/pkg/logger"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}
