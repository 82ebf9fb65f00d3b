package ws

import (
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may open a lobby socket.
// Requests without an Origin header come from non-browser clients and are
// always accepted, as are same-origin requests. An empty policy accepts
// only those; "*" accepts any origin.
type OriginPolicy struct {
	any     bool
	allowed map[string]bool
}

// NewOriginPolicy builds a policy from origins such as
// "https://play.example.com" or "http://localhost:5173"
func NewOriginPolicy(origins []string) OriginPolicy {
	p := OriginPolicy{allowed: make(map[string]bool)}
	for _, o := range origins {
		o = normalizeOrigin(o)
		switch o {
		case "":
		case "*":
			p.any = true
		default:
			p.allowed[o] = true
		}
	}
	return p
}

// Check reports whether r may be upgraded
func (p OriginPolicy) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || p.any {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return p.allowed[normalizeOrigin(origin)]
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o), "/"))
}
