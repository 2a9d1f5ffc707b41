package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-sync-go/internal/handler/http/response"
)

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := CurrentPrincipal(r)
		if err != nil {
			response.HandleError(w, auth.ErrManagerAccessRequired)
			return
		}

		if !principal.IsManager() {
			response.HandleError(w, auth.ErrManagerAccessRequired)
			return
		}

		if principal.EmployeeID == nil {
			response.HandleError(w, auth.ErrEmployeeClaimMissing)
			return
		}

		next.ServeHTTP(w, r)
	})
}
