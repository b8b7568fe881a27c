package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "pillbox"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/pillbox/pillbox.db"
	Version            = "v0.3.0"

	// KeyringConfig selects the connection string stored in the OS keyring
	KeyringConfig = "keyring"
	// DiskvPrefix selects the directory-backed key/value store
	DiskvPrefix = "dir://"

	// Storage keys for the whole-collection records
	KeyMedications = "medications"
	KeyEvents      = "events"
	KeyReminders   = "reminders"
	KeySettings    = "settings"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "pillbox-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "pillbox-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.pillbox"
	TrayExecutablePrefix   = "pillbox-tray"
	NotifyRequestTimeout   = 5 * time.Second

	// RetentionDays is the number of local days kept in the event log (today + yesterday)
	RetentionDays = 2
)

// Session States
const (
	StateToday SessionState = iota
	StateMedications
	StateAddMedication
	StateRefill
	StateConfirmDelete
)
