package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Runtime environment errors
// 12000-12999: CLI invocation errors
// 13000-13999: Session & Account errors
// 14000-14999: Metadata & Cache errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalError  ErrorCode = 10001
	InvalidParams  ErrorCode = 10002
	NotFound       ErrorCode = 10003
	Timeout        ErrorCode = 10004
	Canceled       ErrorCode = 10005
	NotImplemented ErrorCode = 10006

	// Configuration errors (10100-10199)
	ConfigReadFailed  ErrorCode = 10100
	ConfigParseFailed ErrorCode = 10101
	ConfigInvalid     ErrorCode = 10102

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	RequiredFieldEmpty ErrorCode = 10302

	// ========== Runtime Environment Errors (11000-11999) ==========

	// Runtime resolution (11000-11099)
	NodeNotFound      ErrorCode = 11000
	NodeVersionTooOld ErrorCode = 11001
	NodeProbeFailed   ErrorCode = 11002

	// CLI installation (11100-11199)
	CLIScriptNotFound ErrorCode = 11100
	ToolHomeInvalid   ErrorCode = 11101

	// WSL bridge (11200-11299)
	WSLTranslateFailed ErrorCode = 11200
	WSLNotAvailable    ErrorCode = 11201

	// ========== CLI Invocation Errors (12000-12999) ==========

	// Execution (12000-12099)
	CommandFailed      ErrorCode = 12000
	CommandTimeout     ErrorCode = 12001
	CommandStartFailed ErrorCode = 12002
	CommandKilled      ErrorCode = 12003

	// Output handling (12100-12199)
	OutputParseFailed ErrorCode = 12100
	OutputTruncated   ErrorCode = 12101

	// Interactive flows (12200-12299)
	InteractiveAborted ErrorCode = 12200
	InteractiveEOF     ErrorCode = 12201

	// ========== Session & Account Errors (13000-13999) ==========

	// Sign-in (13000-13099)
	NotSignedIn      ErrorCode = 13000
	SignInFailed     ErrorCode = 13001
	SessionExpired   ErrorCode = 13002
	CookieInvalid    ErrorCode = 13003
	LoginUnsupported ErrorCode = 13004

	// Session management (13100-13199)
	SessionNotFound     ErrorCode = 13100
	SessionCreateFailed ErrorCode = 13101
	SessionSwitchFailed ErrorCode = 13102

	// Endpoint (13200-13299)
	EndpointUnknown      ErrorCode = 13200
	EndpointSwitchFailed ErrorCode = 13201

	// State file (13300-13399)
	StateReadFailed  ErrorCode = 13300
	StateWriteFailed ErrorCode = 13301

	// ========== Metadata & Cache Errors (14000-14999) ==========

	// Bundled data (14000-14099)
	MetadataNotFound    ErrorCode = 14000
	MetadataParseFailed ErrorCode = 14001
	TagNotFound         ErrorCode = 14002

	// Snapshot cache (14100-14199)
	CacheError        ErrorCode = 14100
	CacheCorrupted    ErrorCode = 14101
	CacheRepairFailed ErrorCode = 14102
)

// errorMessages maps error codes to default human readable messages
var errorMessages = map[ErrorCode]string{
	Success: "Success",

	InternalError:  "Internal error",
	InvalidParams:  "Invalid parameters",
	NotFound:       "Not found",
	Timeout:        "Operation timed out",
	Canceled:       "Operation canceled",
	NotImplemented: "Not implemented",

	ConfigReadFailed:  "Failed to read config file",
	ConfigParseFailed: "Failed to parse config file",
	ConfigInvalid:     "Invalid configuration",

	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	RequiredFieldEmpty: "Required field is empty",

	NodeNotFound:      "Node.js runtime not found",
	NodeVersionTooOld: "Node.js runtime is too old",
	NodeProbeFailed:   "Failed to probe Node.js runtime",

	CLIScriptNotFound: "CLI entry script not found",
	ToolHomeInvalid:   "Tool home directory is invalid",

	WSLTranslateFailed: "WSL path translation failed",
	WSLNotAvailable:    "WSL launcher is not available",

	CommandFailed:      "CLI command failed",
	CommandTimeout:     "CLI command timed out",
	CommandStartFailed: "Failed to start CLI command",
	CommandKilled:      "CLI command was killed",

	OutputParseFailed: "Failed to parse CLI output",
	OutputTruncated:   "CLI output was truncated",

	InteractiveAborted: "Interactive command aborted",
	InteractiveEOF:     "Interactive command ended unexpectedly",

	NotSignedIn:      "Not signed in",
	SignInFailed:     "Sign in failed",
	SessionExpired:   "Session expired, please sign in again",
	CookieInvalid:    "Session cookie is invalid",
	LoginUnsupported: "Login method is not supported",

	SessionNotFound:     "Session not found",
	SessionCreateFailed: "Failed to create session",
	SessionSwitchFailed: "Failed to switch session",

	EndpointUnknown:      "Unknown endpoint",
	EndpointSwitchFailed: "Failed to switch endpoint",

	StateReadFailed:  "Failed to read state file",
	StateWriteFailed: "Failed to write state file",

	MetadataNotFound:    "Bundled metadata file not found",
	MetadataParseFailed: "Failed to parse bundled metadata",
	TagNotFound:         "Tag not found",

	CacheError:        "Cache operation failed",
	CacheCorrupted:    "Cache is corrupted",
	CacheRepairFailed: "Cache repair failed",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// ExitStatus returns the process exit status the CLI front-end should use
// for the error code.
func (c ErrorCode) ExitStatus() int {
	switch {
	case c == Success:
		return 0
	case c == InvalidParams, c >= 10300 && c < 10400:
		return 2
	case c >= 10100 && c < 10200: // configuration errors
		return 2
	case c >= 11000 && c < 12000: // environment errors
		return 3
	case c >= 12000 && c < 13000: // invocation errors
		return 4
	case c >= 13000 && c < 14000: // session errors
		return 5
	case c >= 14000 && c < 15000: // metadata and cache errors
		return 6
	default:
		return 1
	}
}

// IsEnvironment reports whether the code belongs to the runtime
// environment range.
func (c ErrorCode) IsEnvironment() bool {
	return c >= 11000 && c < 12000
}

// IsRetryable reports whether retrying the same invocation can help.
// Only cache corruption and kill-induced failures qualify.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case CacheCorrupted, CommandKilled:
		return true
	default:
		return false
	}
}
