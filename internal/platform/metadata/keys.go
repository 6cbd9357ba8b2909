package metadata

// Keys stored in the 'key' column of the metadata table.
const (
	// LastBackupFingerprintKey identifies the open-cycle contents written by
	// the last successful backup ("<count>:<max updated_at>").
	LastBackupFingerprintKey = "last_backup_fingerprint"

	// LastArchivedCycleIDKey is the id of the most recently archived cycle.
	LastArchivedCycleIDKey = "last_archived_cycle_id"
)
