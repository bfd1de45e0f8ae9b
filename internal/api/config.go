package api

// Config holds server configuration.
type Config struct {
	Port           int
	DBPath         string   // SQLite dataset store path
	AllowedOrigins []string // CORS allowed origins (empty = allow all)
}
