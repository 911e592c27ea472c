package jwt

import (
	"fmt"
	"net/http"
	"strings"
)

// TokenExtractorFunc extracts a raw token from a request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// SkipFunc reports whether a request bypasses the middleware.
type SkipFunc func(r *http.Request) bool

// ErrorHandlerFunc writes the response for a rejected token.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareConfig configures the middleware.
type MiddlewareConfig struct {
	Service      *Service
	Extractor    TokenExtractorFunc // defaults to BearerTokenExtractor
	Denylist     Denylist           // optional
	Skip         SkipFunc           // optional
	ErrorHandler ErrorHandlerFunc   // defaults to a plain 401
}

// Middleware verifies bearer tokens and stores their claims in the
// request context.
func Middleware(service *Service) func(next http.Handler) http.Handler {
	return MiddlewareWithConfig(MiddlewareConfig{Service: service})
}

// MiddlewareWithConfig creates the middleware with custom configuration.
func MiddlewareWithConfig(config MiddlewareConfig) func(next http.Handler) http.Handler {
	if config.Extractor == nil {
		config.Extractor = BearerTokenExtractor
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Skip != nil && config.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := config.Extractor(r)
			if err != nil {
				config.ErrorHandler(w, r, err)
				return
			}
			claims, err := config.Service.ParseClaims(token)
			if err != nil {
				config.ErrorHandler(w, r, err)
				return
			}
			if config.Denylist != nil {
				revoked, err := config.Denylist.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					config.ErrorHandler(w, r, fmt.Errorf("check revocation: %w", err))
					return
				}
				if revoked {
					config.ErrorHandler(w, r, ErrRevokedToken)
					return
				}
			}

			ctx := SetToken(r.Context(), token)
			ctx = SetClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// CookieTokenExtractor reads the token from a cookie.
func CookieTokenExtractor(cookieName string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			return "", ErrMissingToken
		}
		return cookie.Value, nil
	}
}

// ChainExtractors returns the first token any extractor finds.
func ChainExtractors(extractors ...TokenExtractorFunc) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		err := ErrMissingToken
		for _, extract := range extractors {
			token, e := extract(r)
			if e == nil {
				return token, nil
			}
			err = e
		}
		return "", err
	}
}
