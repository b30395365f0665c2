package records

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux mounts a sub-handler under a path prefix. It is satisfied by chi.Router.
type Mux interface {
	Mount(pattern string, handler http.Handler)
}

// RegisterRoutes mounts the collection under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("records: missing mux")
	}
	opts := NewOptions(fns...)
	pattern := joinPath(basePath, opts.RoutePath)
	mux.Mount(pattern, HandlerWithStore(NewStore(opts.IDField, opts.Records...), opts))
	return pattern, nil
}

func joinPath(basePath, routePath string) string {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	routePath = "/" + strings.TrimLeft(strings.TrimSpace(routePath), "/")
	if basePath == "" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return basePath + routePath
}
