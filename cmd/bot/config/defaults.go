package config

// Default values for bot configuration.
const (
	DefaultPollingIntervalSecs = 3
	DefaultExcelThreshold      = 50
	DefaultHTTPTimeoutSeconds  = 30

	// Default column widths for text rendering.
	DefaultLabelColumnWidth = 24
	DefaultValueColumnWidth = 8
)
