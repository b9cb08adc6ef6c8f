package utils

import "go.uber.org/zap"

// NewLogger builds the process logger. Production uses JSON output at info
// level, everything else the human readable development encoder.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
