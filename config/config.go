package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	Production           bool
	DatabasePath         string
	BunnyStreamLibraryID string
	BunnyStreamApiKey    string
	BunnyStreamApiUrl    string
	BunnyTusEndpoint     string
	BunnyStorageZoneName string
	BunnyStorageApiKey   string
	BunnyStorageApiUrl   string
	PollIntervalSeconds  int
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No se ha encontrado un archivo .env, usando variables de entorno del sistema")
	}

	return Config{
		Port:                 getEnv("PORT", "3000"),
		Production:           getEnv("PRODUCTION", "false") == "true",
		DatabasePath:         getEnv("DB_PATH", "db/database.db"),
		BunnyStreamLibraryID: getEnv("BUNNY_STREAM_LIBRARY_ID", ""),
		BunnyStreamApiKey:    getEnv("BUNNY_STREAM_API_KEY", ""),
		BunnyStreamApiUrl:    getEnv("BUNNY_STREAM_API_URL", "https://video.bunnycdn.com"),
		BunnyTusEndpoint:     getEnv("BUNNY_TUS_ENDPOINT", "https://video.bunnycdn.com/tusupload"),
		BunnyStorageZoneName: getEnv("BUNNY_STORAGE_ZONE_NAME", ""),
		BunnyStorageApiKey:   getEnv("BUNNY_STORAGE_API_KEY", ""),
		BunnyStorageApiUrl:   getEnv("BUNNY_STORAGE_API_URL", "https://storage.bunnycdn.com"),
		PollIntervalSeconds:  getEnvInt("POLL_INTERVAL_SECONDS", 5),
	}
}

// getEnv obtiene una variable de entorno o usa un valor por defecto
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt obtiene una variable de entorno numérica o usa un valor por defecto
func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
