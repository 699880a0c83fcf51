package main

// Default limits for CLI commands.
const (
	DefaultListLimit   = 50
	DefaultAuditLimit  = 50
	DefaultExportLimit = 1000
)

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}
