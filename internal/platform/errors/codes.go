// Package errors provides structured error handling for the scorebook core.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Game errors
	CodeGameAlreadyStarted   Code = "GAME_ALREADY_STARTED"
	CodeGameNotStarted       Code = "GAME_NOT_STARTED"
	CodeGameAlreadyCompleted Code = "GAME_ALREADY_COMPLETED"
	CodeGameNotFound         Code = "GAME_NOT_FOUND"
	CodeGameTeamNameEmpty    Code = "GAME_TEAM_NAME_EMPTY"

	// Lineup errors
	CodeLineupAlreadyCreated Code = "LINEUP_ALREADY_CREATED"
	CodeLineupNotCreated     Code = "LINEUP_NOT_CREATED"
	CodeLineupSlotInvalid    Code = "LINEUP_SLOT_INVALID"
	CodeLineupSlotOccupied   Code = "LINEUP_SLOT_OCCUPIED"
	CodeLineupSlotVacant     Code = "LINEUP_SLOT_VACANT"
	CodeLineupPlayerMismatch Code = "LINEUP_PLAYER_MISMATCH"
	CodeLineupPlayerEmpty    Code = "LINEUP_PLAYER_EMPTY"

	// Inning errors
	CodeInningAlreadyCreated Code = "INNING_ALREADY_CREATED"
	CodeInningNotCreated     Code = "INNING_NOT_CREATED"

	// Event contract errors
	CodeEventInvalid     Code = "EVENT_INVALID"
	CodeEventTypeUnknown Code = "EVENT_TYPE_UNKNOWN"

	// Storage errors
	CodeNotFound            Code = "NOT_FOUND"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
	CodeStorageLoadFailed   Code = "STORAGE_LOAD_FAILED"
	CodeStorageSaveFailed   Code = "STORAGE_SAVE_FAILED"
	CodeStorageAppendFailed Code = "STORAGE_APPEND_FAILED"

	// Read-model errors
	CodeSnapshotInconsistent Code = "SNAPSHOT_INCONSISTENT"
)
