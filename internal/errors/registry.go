package errors

// ErrorTemplate defines a registered error code.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates. Codes are grouped by
// subsystem: F1xx scan, F2xx config, F3xx dev server, F4xx build, F5xx
// deploy, F6xx runtime.
var registry = map[string]ErrorTemplate{
	// Route scanning (F100-F119)

	"F100": {
		Category: CategoryScan,
		Message:  "Route directory not found",
		Detail:   "The routes directory does not exist. The route table compiles to an empty list and every request falls through to the not-found handler.",
		DocURL:   "https://flexireact.dev/docs/errors/F100",
	},
	"F101": {
		Category: CategoryScan,
		Message:  "Route directory not readable",
		Detail:   "The routes directory exists but could not be read. Check file permissions.",
		DocURL:   "https://flexireact.dev/docs/errors/F101",
	},
	"F102": {
		Category: CategoryScan,
		Message:  "Duplicate route pattern",
		Detail:   "Multiple route files resolve to the same URL pattern. Only the first one in scan order is ever matched.",
		DocURL:   "https://flexireact.dev/docs/errors/F102",
	},
	"F103": {
		Category: CategoryScan,
		Message:  "Unreachable route",
		Detail:   "The route is declared after a catch-all that covers its whole subtree, so it can never match.",
		DocURL:   "https://flexireact.dev/docs/errors/F103",
	},
	"F104": {
		Category: CategoryScan,
		Message:  "Unnamed route parameter",
		Detail:   "A parameter segment has an empty name. Its value binds under the fallback name and shadows other unnamed parameters.",
		DocURL:   "https://flexireact.dev/docs/errors/F104",
	},

	// Configuration (F200-F219)

	"F200": {
		Category: CategoryConfig,
		Message:  "Invalid flexi.json",
		Detail:   "The flexi.json configuration file is malformed.",
		DocURL:   "https://flexireact.dev/docs/errors/F200",
	},
	"F201": {
		Category: CategoryConfig,
		Message:  "Not a flexi project",
		Detail:   "No flexi.json was found here or in any parent directory. Run this command from inside a project.",
		DocURL:   "https://flexireact.dev/docs/errors/F201",
	},
	"F202": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is outside the valid range.",
		DocURL:   "https://flexireact.dev/docs/errors/F202",
	},

	// Dev server (F300-F319)

	"F300": {
		Category: CategoryDev,
		Message:  "Dev server failed to start",
		Detail:   "The development server could not bind its listen address. The port may be in use.",
		DocURL:   "https://flexireact.dev/docs/errors/F300",
	},
	"F301": {
		Category: CategoryDev,
		Message:  "File watcher failed",
		Detail:   "The filesystem watcher could not be created or lost its watch on the routes directory.",
		DocURL:   "https://flexireact.dev/docs/errors/F301",
	},
	"F302": {
		Category: CategoryDev,
		Message:  "Route table reload failed",
		Detail:   "Recompiling the route table after a file change failed. The previous table stays active.",
		DocURL:   "https://flexireact.dev/docs/errors/F302",
	},

	// Build (F400-F419)

	"F400": {
		Category: CategoryBuild,
		Message:  "Static export failed",
		Detail:   "Rendering a route to a static file failed. Check the route handler for errors.",
		DocURL:   "https://flexireact.dev/docs/errors/F400",
	},
	"F401": {
		Category: CategoryBuild,
		Message:  "Output directory not writable",
		Detail:   "The build output directory could not be created or written to.",
		DocURL:   "https://flexireact.dev/docs/errors/F401",
	},

	// Deploy (F500-F519)

	"F500": {
		Category: CategoryDeploy,
		Message:  "Upload failed",
		Detail:   "Uploading a build artifact to the configured bucket failed.",
		DocURL:   "https://flexireact.dev/docs/errors/F500",
	},
	"F501": {
		Category: CategoryDeploy,
		Message:  "Missing deploy configuration",
		Detail:   "Deploying requires a bucket name in flexi.json or on the command line.",
		DocURL:   "https://flexireact.dev/docs/errors/F501",
	},

	// Runtime (F600-F619)

	"F600": {
		Category: CategoryRuntime,
		Message:  "Route not found",
		Detail:   "No route matches the requested URL.",
		DocURL:   "https://flexireact.dev/docs/errors/F600",
	},
	"F601": {
		Category: CategoryRuntime,
		Message:  "Handler not registered",
		Detail:   "A compiled route has no registered handler for its source path.",
		DocURL:   "https://flexireact.dev/docs/errors/F601",
	},
	"F602": {
		Category: CategoryRuntime,
		Message:  "Route parameter type mismatch",
		Detail:   "A route parameter could not be converted to the type the handler expects.",
		DocURL:   "https://flexireact.dev/docs/errors/F602",
	},
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// Template returns the template for an error code.
func Template(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
