package api

import "github.com/kankokujin/kankokujin-no-map/pkg/logger"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}
