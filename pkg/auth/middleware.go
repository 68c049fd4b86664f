package auth

import (
	apperrors "locmaroc/pkg/errors"
	httputil "locmaroc/pkg/http"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const bearerPrefix = "Bearer "

// Guard turns bearer tokens into sessions for httprouter handles.
type Guard struct {
	issuer *TokenIssuer
}

func NewGuard(issuer *TokenIssuer) *Guard {
	return &Guard{issuer: issuer}
}

// Required rejects the request with 401 unless it carries a valid token.
func (g *Guard) Required(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			_ = httputil.WriteError(w, apperrors.Unauthorized("missing or invalid authorization header"))
			return
		}

		claims, err := g.issuer.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			_ = httputil.WriteError(w, apperrors.Unauthorized("invalid or expired token"))
			return
		}

		ctx := WithSession(r.Context(), Session{UserID: claims.UserID})
		next(w, r.WithContext(ctx), ps)
	}
}
