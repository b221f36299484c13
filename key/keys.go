// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 16

// Viewport Observation - these keys tune when deferred elements are considered visible.
const (
	ObserverImageThreshold  = "observer.image_threshold"
	ObserverPortalThreshold = "observer.portal_threshold"
)

// Bounded-Range Looping - these keys parameterize the loop watchdog.
const (
	LoopIntervalMs = "loop.interval_ms"
	LoopTolerance  = "loop.tolerance"
)

// Media Playback - these keys govern embedded player construction and autoplay policy.
const (
	PlayerReducedMotion = "player.reduced_motion"
	PlayerSdkURL        = "player.sdk_url"
)

// History Tracking - these keys configure the persistence of run outcomes.
const (
	HistorySaveOnRun = "history.save_on_run"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI) - these keys define the monitor's refresh and display behavior.
const (
	TUITickMs      = "tui.tick_ms"
	TUIShowTargets = "tui.show_targets"
)

// Networking - these keys control how bootstrap resources and deferred images are fetched.
const (
	NetworkTLSSpoof = "network.tls_spoof"
)
