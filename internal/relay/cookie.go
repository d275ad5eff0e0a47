// Package relay implements the guild-scoped live-update socket: session
// authentication at upgrade time, a registry of open connections, and
// best-effort fan-out of bot events to subscribed dashboard clients.
package relay

import "strings"

// SessionCookie is the name of the cookie carrying the panel session JWT.
const SessionCookie = "aura_session"

// SessionTokenFromHeader extracts the session token from a raw Cookie
// header. The first cookie with a matching name wins when the name appears
// more than once; an absent header or an empty value yields false.
func SessionTokenFromHeader(header string) (string, bool) {
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name != SessionCookie {
			continue
		}
		value = strings.Trim(value, `"`)
		if value == "" {
			return "", false
		}
		return value, true
	}
	return "", false
}
