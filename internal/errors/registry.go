package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Configuration (E100-E199)
	"E101": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The configuration file does not exist or cannot be read.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file could not be parsed.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unsupported config format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is outside its allowed range.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
		Detail:   "An IMGUPLOAD_* environment variable has a value of the wrong type.",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Failed to load .env file",
		Detail:   "The .env file exists but could not be parsed.",
	},

	// Command line (E200-E299)
	"E201": {
		Category: CategoryCLI,
		Message:  "No files given",
		Detail:   "The upload command needs at least one file argument.",
	},
	"E202": {
		Category: CategoryCLI,
		Message:  "File not readable",
		Detail:   "A file argument does not exist or is not a regular file.",
	},
	"E203": {
		Category: CategoryCLI,
		Message:  "Upload failed",
		Detail:   "The upload endpoint did not report success.",
	},
	"E204": {
		Category: CategoryCLI,
		Message:  "No upload URL",
		Detail:   "Set uploadUrl in the config file, IMGUPLOAD_UPLOAD_URL, or --url.",
	},

	// Development server (E300-E399)
	"E301": {
		Category: CategoryServer,
		Message:  "Storage unavailable",
		Detail:   "The upload store could not be created.",
	},
	"E302": {
		Category: CategoryServer,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
