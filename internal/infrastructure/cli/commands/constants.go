package commands

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrHistoryStoreUnavailable  = "history archive unavailable (history.archive is false)"
	ErrCacheStoreUnavailable    = "cache disabled (cache.backend is none)"
	ErrClientUnavailable        = "caption client unavailable"
	ErrKeyRequired              = "--key is required"
	ErrQueryRequired            = "--query required"
	ErrInvalidRetainDays        = "--days must be > 0"
	ErrNoImages                 = "no images given (pass paths or use --pick)"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgNoCachedResponses        = "No cached responses."
	MsgSelectionCanceled        = "Selection canceled."
)

// DefaultTopTerms bounds the caption terms shown by history stats
const DefaultTopTerms = 5
