package main

import (
	"log"

	"bunny-media-api/config"
	"bunny-media-api/db"
	"bunny-media-api/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	// Sin las credenciales de Bunny no se puede operar, se corta el arranque
	if cfg.BunnyStreamLibraryID == "" || cfg.BunnyStreamApiKey == "" {
		log.Fatal("Bunny Stream Library ID o API Key no establecidos")
	}

	if cfg.Production {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Iniciar la aplicación y configurar CORS
	app := fiber.New(fiber.Config{
		BodyLimit: 2 * 1024 * 1024 * 1024, // los videos pueden ser grandes
	})
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin,Content-Type,Accept,Content-Length,Accept-Language,Accept-Encoding,Connection,Access-Control-Allow-Origin,Authorization",
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
	}))

	// Iniciar la base de datos
	db.InitDB(cfg.DatabasePath)

	api := app.Group("/api")

	// Status
	api.Get("/status", routes.GetStatus)

	/* -----------------------------------------------------------------
	|                                                                   |
	|                             VIDEOS                                |
	|                                                                   |
	------------------------------------------------------------------- */
	videos := api.Group("/videos")

	videos.Post("/", routes.CreateVideo)                   // Crea la sesión de subida y devuelve la credencial tus
	videos.Get("/", routes.GetVideos)                      // Obtiene todos los videos, del más reciente al más antiguo
	videos.Get("/:video_id/status", routes.GetVideoStatus) // Reconcilia y devuelve el estado de un video
	videos.Post("/:video_id/upload", routes.UploadVideo)   // Sube el contenido del video a Bunny desde el servidor

	/* -----------------------------------------------------------------
	|                                                                   |
	|                             FILES                                 |
	|                                                                   |
	------------------------------------------------------------------- */
	files := api.Group("/files")

	files.Post("/", routes.UploadFile) // Sube un archivo normal a Bunny Storage
	files.Get("/", routes.GetFiles)    // Obtiene todos los archivos

	port := cfg.Port
	log.Printf("Server is running on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
