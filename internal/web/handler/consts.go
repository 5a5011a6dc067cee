package handler

const (
	// APIPath is the prefix of every administrative route.
	APIPath = "/api"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ParamID is the route parameter holding a numeric id.
	ParamID = "id"

	// ErrNilDepsFatalLogMsg is used if router or a required dependency is nil.
	ErrNilDepsFatalLogMsg = "router or dependency is nil"
)
