package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the path of a route group's own root.
	RouterRootPath = "/"

	// APIPath prefixes every JSON endpoint.
	APIPath = "/api"

	// AdminPath prefixes the access administration endpoints.
	AdminPath = APIPath + "/admin"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
