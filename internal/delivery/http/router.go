package http

import (
	"net/http"

	"partyplanner/internal/delivery/http/controllers"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Routes groups the handlers mounted by NewRouter.
type Routes struct {
	Viewer  *controllers.ViewerController
	Live    http.Handler
	Metrics http.Handler
	// Protect wraps every viewer route. Metrics are never wrapped.
	Protect func(http.Handler) http.Handler
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(routes Routes) *http.ServeMux {
	protect := routes.Protect
	if protect == nil {
		protect = func(h http.Handler) http.Handler { return h }
	}
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protect(h))
	}

	// Viewer
	handle("GET /{$}", routes.Viewer.Page)
	handle("GET /app", routes.Viewer.Fragment)
	handle("POST /parties/{partyID}/select", routes.Viewer.SelectParty)
	handle("POST /refresh", routes.Viewer.Refresh)
	handle("GET /api/state", routes.Viewer.State)
	if routes.Live != nil {
		mux.Handle("GET /live", protect(routes.Live))
	}

	if routes.Metrics != nil {
		mux.Handle("GET /metrics", routes.Metrics)
	}

	// Swagger
	mux.Handle("/swagger/", protect(httpSwagger.WrapHandler))

	return mux
}
