package config

import (
	"os"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline" // clinic LAN / single-site deployments
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	// RefTablePath overrides the embedded population reference table.
	// Empty means use the embedded default.
	RefTablePath string

	// DefaultQuizID is the questionnaire served to caregivers.
	DefaultQuizID string
	// QuizPath seeds the default questionnaire from a JSON file at startup.
	QuizPath string

	EnableLocalAuth bool
	// RequireEntitlement gates quiz access behind a paid entitlement.
	// Off by default in offline mode (clinic installs are pre-paid).
	RequireEntitlement bool

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           addr,
		PublicURL:          os.Getenv("PUBLIC_URL"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		RefTablePath:       os.Getenv("REF_TABLE_PATH"),
		DefaultQuizID:      envOr("DEFAULT_QUIZ_ID", "ddand-v1"),
		QuizPath:           os.Getenv("QUIZ_PATH"),
		EnableLocalAuth:    envBool("ENABLE_LOCAL_AUTH", true),
		RequireEntitlement: envBool("REQUIRE_ENTITLEMENT", mode == ModeOnline),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      envOr("ADMIN_PASS_HASH", ""),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://ddand.dravet-care.org"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
