package common

// AuthCookieName is the cookie that carries the session token.
const AuthCookieName = "auth-token"

// AuthHeaderName is the header checked when no cookie is present.
// The value is expected in the form "Bearer <token>".
const AuthHeaderName = "Authorization"
