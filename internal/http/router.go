package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth   *AuthHandler
	Agenda *AgendaHandler
	// SessionMiddleware guards the agenda routes. Login and logout stay
	// outside it.
	SessionMiddleware func(http.Handler) http.Handler
	Middleware        []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Agenda != nil {
		agenda := http.NewServeMux()

		agenda.HandleFunc("/api/agenda/eventos", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Agenda.List(w, r)
			case http.MethodPost:
				cfg.Agenda.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		agenda.HandleFunc("/api/agenda/eventos/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/agenda/eventos/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if id == "all" {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Agenda.ListAll(w, r)
				return
			}
			r = r.WithContext(ContextWithEventID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Agenda.Update(w, r)
			case http.MethodDelete:
				cfg.Agenda.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
		agenda.HandleFunc("/api/agenda/visitas/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/agenda/visitas/")
			id, action, found := strings.Cut(rest, "/")
			if !found || id == "" || action != "reagendar" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			r = r.WithContext(ContextWithVisitID(r.Context(), id))
			cfg.Agenda.Reschedule(w, r)
		})
		agenda.HandleFunc("/api/agenda/global", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Agenda.Global(w, r)
		})
		agenda.HandleFunc("/api/agenda/relatorio", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Agenda.Report(w, r)
		})
		agenda.HandleFunc("/api/agenda/disponibilidade", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Agenda.Availability(w, r)
		})
		agenda.HandleFunc("/api/agenda/conflitos", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Agenda.Conflicts(w, r)
		})
		agenda.HandleFunc("/api/agenda/empresas", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Agenda.ByCompanies(w, r)
		})

		var protected http.Handler = agenda
		if cfg.SessionMiddleware != nil {
			protected = cfg.SessionMiddleware(protected)
		}
		mux.Handle("/api/agenda/", protected)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
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
