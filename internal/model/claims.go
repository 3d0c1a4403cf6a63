package model

// JWTClaims is the payload carried by platform access tokens. Tenant scoping
// is never encoded in the token; it is resolved per request from the host.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
	Iss   string `json:"iss"`
}
