package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-sync-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			if _, err := auth.PrincipalFromClaims(claims); err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// CurrentPrincipal reads the caller from the verified token in the request context.
func CurrentPrincipal(r *http.Request) (auth.Principal, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return auth.Principal{}, auth.ErrInvalidToken
	}
	return auth.PrincipalFromClaims(claims)
}
