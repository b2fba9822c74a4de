package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Server holds the store server configuration.
type Server struct {
	Addr               string
	DBPath             string
	CORSAllowedOrigins []string
}

// Client holds the CLI client configuration.
type Client struct {
	ServerURL string
	AccessKey string
}

// LoadServer reads server settings from the environment, with an
// optional .env file. Flags override these in cmd.
func LoadServer() Server {
	_ = godotenv.Load()

	cfg := Server{
		Addr:   getenv("WONDERWOODS_ADDR", ":8080"),
		DBPath: getenv("WONDERWOODS_DB", "wonderwoods.sqlite3"),
	}

	for _, o := range strings.Split(getenv("WONDERWOODS_CORS_ORIGINS", ""), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg
}

// LoadClient reads client settings from the environment, with an
// optional .env file.
func LoadClient() Client {
	_ = godotenv.Load()

	return Client{
		ServerURL: getenv("WONDERWOODS_SERVER", "http://localhost:8080"),
		AccessKey: getenv("WONDERWOODS_ACCESS_KEY", ""),
	}
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
