package config

// Default configuration values.
const (
	DefaultAnalysisDepth = "partial"
	DefaultMaxFileSize   = 10 * 1024 * 1024
	DefaultSnapshotPath  = ".leapuast/snapshots.db"
)

// DefaultInclude lists the source globs scanned when none are configured.
func DefaultInclude() []string { return []string{"**/*.kt", "**/*.kts"} }

// DefaultExclude lists the globs skipped when none are configured.
func DefaultExclude() []string { return []string{"**/build/**", "**/.gradle/**", "**/.git/**"} }

// ApplyDefaults applies default values to a ProjectConfig.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.AnalysisDepth == "" {
		c.AnalysisDepth = DefaultAnalysisDepth
	}
	if len(c.Include) == 0 {
		c.Include = DefaultInclude()
	}
	if c.Exclude == nil {
		c.Exclude = DefaultExclude()
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.Snapshot == nil {
		c.Snapshot = &SnapshotConfig{}
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = DefaultSnapshotPath
	}
}
