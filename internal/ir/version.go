package ir

// Version constants.
const (
	// ManifestVersion is the manifest schema version.
	ManifestVersion = "1"

	// JournalVersion is the run record layout version.
	JournalVersion = "1"

	// ToolVersion is the modinit version.
	ToolVersion = "0.1.0"
)
