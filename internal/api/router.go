package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	catalogHandler := &CatalogHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret)

	// Public: health and session creation.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/auth/session", authHandler.CreateSession)

	// Aggregate document.
	mux.Handle("GET /api/catalog", authMW(http.HandlerFunc(catalogHandler.Get)))
	mux.Handle("POST /api/catalog", authMW(http.HandlerFunc(catalogHandler.Ensure)))
	mux.Handle("POST /api/catalog/items", authMW(http.HandlerFunc(catalogHandler.AppendItem)))
	mux.Handle("PUT /api/catalog/items", authMW(http.HandlerFunc(catalogHandler.ReplaceItems)))

	// Image blobs.
	mux.Handle("GET /api/catalog/images/{id}", authMW(http.HandlerFunc(catalogHandler.GetImage)))
	mux.Handle("PUT /api/catalog/images/{id}", authMW(http.HandlerFunc(catalogHandler.SaveImage)))

	return CORSMiddleware(allowedOrigins)(mux)
}
