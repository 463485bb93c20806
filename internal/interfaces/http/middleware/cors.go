package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API from a browser.
	// ["*"] allows every origin; "*.example.com" entries need AllowWildcard.
	AllowedOrigins []string

	AllowedMethods []string
	AllowedHeaders []string

	// ExposedHeaders are response headers readable by the browser.  Export
	// downloads need Content-Disposition to learn the file name.
	ExposedHeaders []string

	AllowCredentials bool

	// MaxAge is how long, in seconds, a preflight result may be cached.
	MaxAge int

	AllowWildcard bool
}

// DefaultCORSConfig returns a configuration that allows no origin until
// AllowedOrigins is set.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		MaxAge: 86400,
	}
}

// CORSConfigForOrigins returns DefaultCORSConfig with the given origins.
// Entries starting with "*." enable subdomain matching.
func CORSConfigForOrigins(origins []string) CORSConfig {
	cfg := DefaultCORSConfig()
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if strings.HasPrefix(o, "*.") {
			cfg.AllowWildcard = true
		}
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
	}
	return cfg
}

// originPolicy is the precomputed matcher for a CORSConfig.
type originPolicy struct {
	allowAll bool
	exact    map[string]bool
	suffixes []string
}

func newOriginPolicy(cfg CORSConfig) originPolicy {
	p := originPolicy{exact: make(map[string]bool, len(cfg.AllowedOrigins))}
	for _, origin := range cfg.AllowedOrigins {
		switch {
		case origin == "*":
			p.allowAll = true
		case cfg.AllowWildcard && strings.HasPrefix(origin, "*."):
			p.suffixes = append(p.suffixes, strings.ToLower(origin[1:]))
		default:
			p.exact[strings.ToLower(origin)] = true
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if p.allowAll {
		return true
	}
	origin = strings.ToLower(origin)
	if p.exact[origin] {
		return true
	}
	for _, s := range p.suffixes {
		if strings.HasSuffix(origin, s) {
			return true
		}
	}
	return false
}

// CORS returns middleware that handles Cross-Origin Resource Sharing.
// Requests from origins outside the policy pass through without CORS
// headers and the browser blocks the response.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	exposed := strings.Join(config.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)
	policy := newOriginPolicy(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !policy.allows(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")

			// "*" cannot be combined with credentials
			if policy.allowAll && !config.AllowCredentials {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if config.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if config.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware wraps CORS for router configuration.
type CORSMiddleware struct {
	handler func(http.Handler) http.Handler
}

// NewCORSMiddleware creates a new CORS middleware with the given config.
func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{handler: CORS(config)}
}

// Handler returns the middleware handler function.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return m.handler(next)
}

//Personal.AI order the ending
