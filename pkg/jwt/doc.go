// Package jwt issues and verifies the HS256 tokens used by platform admins
// and tenant users, built on github.com/golang-jwt/jwt/v5.
//
// Tokens carry Claims{UserID, Subdomain} next to the registered claims.
// Each token gets a unique "jti", which a Denylist uses to revoke it on
// logout until its natural expiry.
//
//	svc, err := jwt.NewFromConfig(cfg.JWT)
//	token, claims, err := svc.Issue(user.ID, "acme")
//
//	r.Use(jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
//		Service:  svc,
//		Denylist: denylist,
//	}))
//
//	claims, ok := jwt.GetClaims(r.Context())
//
// Parse maps library errors onto the package sentinels: ErrExpiredToken,
// ErrInvalidSignature, ErrInvalidClaims and ErrInvalidToken.
package jwt
