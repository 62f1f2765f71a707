package main

import (
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"seamline/config"
	"seamline/i18n"
	"seamline/loader"
	"seamline/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: No .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("WARN: Failed to load config file: %v. Using defaults.", err)
		cfg = config.GetConfig()
	}
	if cfg.JWTSecret == "" {
		log.Fatalf("SEAMLINE_JWT_SECRET is not set")
	}

	log.Println("Connecting to database...")
	dbConn, err := sqlx.Open("sqlite3", cfg.DatabasePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer dbConn.Close()
	log.Println("Database connection successful.")

	if err := loader.InitDatabase(dbConn); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	log.Println("Database initialization complete.")

	if err := i18n.LoadCatalogs("locales"); err != nil {
		log.Printf("WARN: Failed to load locale catalogs: %v. English messages only.", err)
	}

	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir("./static"))))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, "./static/index.html")
	})

	SetupRoutes(mux, dbConn)

	log.Printf("Starting server on http://localhost%s", cfg.Port)

	if err := http.ListenAndServe(cfg.Port, metrics.Middleware(mux)); err != nil {
		log.Fatalf("server start error: %v", err)
	}
}
