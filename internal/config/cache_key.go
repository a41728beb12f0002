package config

// Redis keys live under one namespace so the session store can share a
// database with other apps.
const cacheNamespace = "enroll"

// SessionKey is where a browser session's JSON is stored.
func SessionKey(sessionID string) string {
	return cacheNamespace + ":session:" + sessionID
}
