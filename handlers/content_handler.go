package handlers

import (
	"net/http"

	"github.com/finverse/accessgate/middleware"
	"github.com/finverse/accessgate/utils"
)

// ContentView is the placeholder body served for a protected product area.
// The product areas themselves are opaque to this service; it only decides
// whether they render.
type ContentView struct {
	Area string `json:"area"`
	Role string `json:"role"`
}

// ProtectedContent returns a handler serving the placeholder for one
// protected product area. The guard middleware has already evaluated
// access by the time this runs.
func ProtectedContent(area string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFromContext(r.Context())
		_ = utils.WriteOK(w, ContentView{
			Area: area,
			Role: string(sess.Role),
		})
	}
}
