package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryRuntime,
		Message:  "Resize observation unavailable",
		Detail:   "The tracker was constructed without an observer factory. The host environment must provide a resize-notification source.",
	},
	"E102": {
		Category: CategoryRuntime,
		Message:  "State channel unavailable",
		Detail:   "The tracker was constructed without a publisher. Pass a raf.State or another value that accepts published sizes.",
	},
	"E103": {
		Category: CategoryRuntime,
		Message:  "Hook order changed",
		Detail:   "Hooks must be called unconditionally and in the same order on every render.",
	},
	"E104": {
		Category: CategoryRuntime,
		Message:  "Frame scheduler unavailable",
		Detail:   "Frame-coalesced state needs a scheduler that runs callbacks at the next frame boundary.",
	},

	// ============================================
	// Protocol Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryProtocol,
		Message:  "Malformed protocol frame",
		Detail:   "A frame or payload received from a client could not be decoded.",
	},
	"E202": {
		Category: CategoryProtocol,
		Message:  "Unexpected frame type",
		Detail:   "The client sent a frame type that is not valid in this direction.",
	},

	// ============================================
	// Config Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A value in elementsize.json is out of range.",
	},
	"E302": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
		Detail:   "elementsize.json exists but could not be read or parsed as JSON.",
	},

	// ============================================
	// CLI Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"E402": {
		Category: CategoryCLI,
		Message:  "Invalid simulation script",
		Detail:   "A line of the simulation script could not be parsed or refers to an unknown element.",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
