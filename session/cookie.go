package session

import "strings"

const CookieName = "session"

func SetCookie(token string) string {
	return CookieName + "=" + token + "; SameSite=Lax; HttpOnly; Path=/"
}

func LogoutCookie() string {
	return CookieName + "=; SameSite=Lax; HttpOnly; Path=/; Expires=Thu, 01 Jan 1970 00:00:00 GMT"
}

// TokenFromCookie 从Cookie头中取出会话token
func TokenFromCookie(header string) (string, bool) {
	for _, part := range strings.Split(header, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || k != CookieName || len(v) == 0 {
			continue
		}
		return v, true
	}
	return "", false
}
