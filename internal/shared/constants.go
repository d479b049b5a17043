package shared

import "time"

// HTTP Client Configuration
const (
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultShutdownTimeout = 1 * time.Minute
)

// Model Configuration
const (
	DefaultMaxTokens = 2000
)

// Upload Configuration
const (
	// Long side cap applied before sending an image upstream. Matches the
	// thumbnail size the web client renders, so nothing is lost in the shrink.
	UploadMaxDim      = 512
	UploadJPEGQuality = 75
)
