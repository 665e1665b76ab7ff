package db

import (
	"database/sql"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// InitDB abre la base de datos sqlite en la ruta indicada y crea las tablas.
// La ruta admite las URIs de sqlite (p.ej. una base en memoria compartida).
func InitDB(path string) {
	var err error
	DB, err = sql.Open("sqlite3", path)
	if err != nil {
		log.Fatal("Error abriendo la base de datos:", err)
	}
	createTables()
}

func createTables() {
	query := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		filename TEXT NOT NULL,
		original_name TEXT NOT NULL,
		size INTEGER NOT NULL,
		bunny_video_id TEXT NOT NULL,
		bunny_library_id TEXT NOT NULL,
		status TEXT CHECK(status IN ('uploading', 'processing', 'ready', 'failed')) NOT NULL DEFAULT 'uploading',
		thumbnail_url TEXT,
		playback_url TEXT,
		uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME,
		UNIQUE(bunny_video_id)
	);
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		original_name TEXT NOT NULL,
		size INTEGER NOT NULL,
		mime_type TEXT NOT NULL,
		bunny_url TEXT,
		file_type TEXT CHECK(file_type IN ('image', 'document', 'other')) NOT NULL,
		uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := DB.Exec(query)
	if err != nil {
		log.Fatal("Error creando tablas:", err)
	}
}
