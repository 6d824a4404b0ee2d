package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/souadELmaazouzi/audio-processing-and-ui/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*ServerComponent)(nil)
	_ component.Describable   = (*ServerComponent)(nil)
	_ component.RouteProvider = (*ServerComponent)(nil)
)

// systemPaths are listed after the API routes in the startup summary.
var systemPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// ServerComponent wraps Server to implement component.Component.
type ServerComponent struct {
	server *Server
}

// NewComponent returns a component.Component backed by the given Server.
func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

// Name returns the component name used for registration.
func (sc *ServerComponent) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (sc *ServerComponent) Start(ctx context.Context) error {
	return sc.server.Start(ctx)
}

// Stop gracefully shuts down the underlying HTTP server.
func (sc *ServerComponent) Stop(ctx context.Context) error {
	return sc.server.Stop(ctx)
}

// Health reports healthy once the server is constructed.
func (sc *ServerComponent) Health(_ context.Context) component.Health {
	if sc.server.httpServer == nil {
		return component.Health{
			Name:    componentName,
			Status:  component.StatusUnhealthy,
			Message: "HTTP server not initialized",
		}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe returns summary info for the startup display.
func (sc *ServerComponent) Describe() component.Description {
	cfg := sc.server.config
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Port:    cfg.Port,
	}
}

// Routes returns all registered routes: API routes by path, then system routes.
func (sc *ServerComponent) Routes() []component.Route {
	ginRoutes := sc.server.engine.Routes()

	sort.Slice(ginRoutes, func(i, j int) bool {
		iSys := systemPaths[ginRoutes[i].Path]
		jSys := systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
		})
	}
	return routes
}

// formatHandlerName shortens Gin's handler path, e.g.
// "github.com/x/y/api.(*Handler).StartRun-fm" becomes "Handler.StartRun".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures: "endpoint.Health.func1" becomes "health".
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}

	// Drop a lowercase package prefix.
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
