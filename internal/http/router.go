package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Sessions *SessionHandler
	Matches  *MatchHandler
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
	// Middleware wraps the API routes only, first entry outermost.
	Middleware []func(http.Handler) http.Handler
	// Outer wraps the whole router, including /healthz and /metrics.
	Outer []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	api := http.NewServeMux()

	if cfg.Sessions != nil {
		route(api, "/login", methods{http.MethodPost: cfg.Sessions.Login})
		route(api, "/logout", methods{http.MethodPost: cfg.Sessions.Logout})
		route(api, "/session", methods{http.MethodGet: cfg.Sessions.Current})
		route(api, "/session/extend", methods{http.MethodPost: cfg.Sessions.Extend})
		route(api, "/session/guard", methods{http.MethodGet: cfg.Sessions.Guard})
		route(api, "/profile", methods{http.MethodPut: cfg.Sessions.UpdateProfile})
		route(api, "/preferences/theme", methods{
			http.MethodGet: cfg.Sessions.Theme,
			http.MethodPut: cfg.Sessions.SetTheme,
		})
		route(api, "/preferences/theme/toggle", methods{http.MethodPost: cfg.Sessions.ToggleTheme})
	}

	if cfg.Matches != nil {
		route(api, "/opportunities", methods{http.MethodGet: cfg.Matches.Opportunities})
		route(api, "/opportunities/used", methods{http.MethodPut: cfg.Matches.SetUsed})
		route(api, "/match", methods{http.MethodPost: cfg.Matches.Match})
	}

	root := http.NewServeMux()
	root.Handle("/", chain(api, cfg.Middleware))
	route(root, "/healthz", methods{http.MethodGet: func(w http.ResponseWriter, r *http.Request) {
		newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}})
	if cfg.Metrics != nil {
		root.Handle("/metrics", cfg.Metrics)
	}

	return chain(root, cfg.Outer)
}

type methods map[string]http.HandlerFunc

func route(mux *http.ServeMux, path string, handlers methods) {
	allowed := make([]string, 0, len(handlers))
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		if handlers[m] != nil {
			allowed = append(allowed, m)
		}
	}
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.Method]; ok {
			h(w, r)
			return
		}
		methodNotAllowed(w, allowed...)
	})
}

func chain(handler http.Handler, middleware []func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		if middleware[i] != nil {
			handler = middleware[i](handler)
		}
	}
	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
