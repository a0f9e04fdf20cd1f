package router

// Kind classifies a route file.
type Kind int

const (
	// KindPage is a server-rendered page route.
	KindPage Kind = iota

	// KindAPI is a JSON route under an api segment.
	KindAPI
)

// String returns the kind as a short lowercase name.
func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// RenderKind describes how a page route is rendered and hydrated.
type RenderKind int

const (
	// RenderServer is a server component: rendered once, never hydrated.
	RenderServer RenderKind = iota

	// RenderClient is a client component: hydrated as part of the page.
	RenderClient

	// RenderIsland is hydrated independently, outside full-page hydration.
	RenderIsland
)

func (r RenderKind) String() string {
	switch r {
	case RenderServer:
		return "server"
	case RenderClient:
		return "client"
	case RenderIsland:
		return "island"
	default:
		return "unknown"
	}
}

// Route is one compiled route entry. Routes are created by the Compiler and
// immutable afterwards; a route is identified by its SourcePath.
type Route struct {
	// Kind is page or api.
	Kind Kind

	// Pattern is the URL pattern, e.g. "/blog/:id" or "/docs/*slug".
	Pattern string

	// SourcePath is the file the route was compiled from.
	SourcePath string

	// Segments are the pattern's path segments in order, parameter markers
	// included (":id", "*slug").
	Segments []string

	// Render is the hydration classification for page routes.
	Render RenderKind

	// Matcher is the compiled pattern. It is derived deterministically and
	// solely from Pattern.
	Matcher *Pattern

	// Layout, Loading, ErrorPage and NotFound reference the nearest special
	// file of each kind, inherited from ancestor directories. Empty when no
	// such file exists on the route's path.
	Layout    string
	Loading   string
	ErrorPage string
	NotFound  string
}

// MatchResult pairs a matched route with its extracted parameter values.
// Results are created per request and ephemeral.
type MatchResult struct {
	Route  *Route
	Params map[string]string
}
