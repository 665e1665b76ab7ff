package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"bunny-media-api/config"
	"bunny-media-api/db"
	"bunny-media-api/models"
	"bunny-media-api/pkg"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

// Minutos de validez de la credencial firmada que se entrega al cliente
const authExpirationMinutes = 60

// CreateVideo crea una sesión de subida: registra el video en Bunny Stream,
// lo persiste en estado 'uploading' y devuelve la credencial firmada con la
// que el cliente puede hacer la subida tus
func CreateVideo(c *fiber.Ctx) error {
	type Request struct {
		Title    string `json:"title" validate:"required"`
		Filename string `json:"filename" validate:"required"`
		Size     int64  `json:"size" validate:"required,gt=0"`
	}

	var request Request
	if err := c.BodyParser(&request); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Error al analizar el cuerpo de la solicitud",
		})
	}

	if err := validate.Struct(request); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "title, filename y size son obligatorios",
		})
	}

	cfg := config.LoadConfig()

	// Crear el contenedor del video en Bunny Stream. Si falla no se persiste
	// nada: sin id remoto no puede existir la sesión
	bunnyVideoID, err := pkg.CreateStreamVideo(request.Title)
	if err != nil {
		logrus.WithError(err).Error("Error creando el video en Bunny Stream")
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al crear el video en Bunny Stream",
		})
	}

	video := models.Video{
		ID:             uuid.NewString(),
		Title:          request.Title,
		Filename:       request.Filename,
		OriginalName:   request.Filename,
		Size:           request.Size,
		BunnyVideoID:   bunnyVideoID,
		BunnyLibraryID: cfg.BunnyStreamLibraryID,
		Status:         models.StatusUploading,
	}

	_, err = db.DB.Exec(`INSERT INTO videos (id, title, filename, original_name, size, bunny_video_id, bunny_library_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID, video.Title, video.Filename, video.OriginalName, video.Size, video.BunnyVideoID, video.BunnyLibraryID, video.Status)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Error al insertar el video",
			"errorTrace": err.Error(),
		})
	}

	// La credencial se genera por sesión y nunca se reutiliza entre sesiones
	auth := pkg.GenerateBunnyStreamAuth(cfg.BunnyStreamLibraryID, cfg.BunnyStreamApiKey, bunnyVideoID, authExpirationMinutes)

	return c.JSON(fiber.Map{
		"videoId":      video.ID,
		"bunnyVideoId": bunnyVideoID,
		"tusEndpoint":  cfg.BunnyTusEndpoint,
		"metadata": fiber.Map{
			"videoId":        bunnyVideoID,
			"libraryId":      cfg.BunnyStreamLibraryID,
			"expirationTime": auth.ExpirationTime,
			"hash":           auth.Hash,
		},
	})
}

// GetVideos obtiene todos los videos ordenados del más reciente al más antiguo
func GetVideos(c *fiber.Ctx) error {
	rows, err := db.DB.Query(`SELECT id, title, filename, original_name, size, bunny_video_id, bunny_library_id, status,
		thumbnail_url, playback_url, uploaded_at, processed_at FROM videos ORDER BY uploaded_at DESC`)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al obtener los videos",
		})
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error":      "Error al leer el video",
				"errorTrace": err.Error(),
			})
		}
		videos = append(videos, video)
	}

	if err = rows.Err(); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al procesar los resultados",
		})
	}

	return c.JSON(fiber.Map{
		"videos": videos,
	})
}

// GetVideoStatus reconcilia el estado de un video contra Bunny y lo devuelve
func GetVideoStatus(c *fiber.Ctx) error {
	videoID := c.Params("video_id")

	video, err := ReconcileVideo(videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": "Video no encontrado",
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Error al obtener el estado del video",
			"errorTrace": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"video": video,
	})
}

// ReconcileVideo consulta el estado actual del video en Bunny y lo fusiona en
// el registro local. Es idempotente y puede llamarse desde el handler HTTP,
// desde el poller o en el futuro desde un webhook sin cambiar su contrato.
// Si la consulta al proveedor falla, el estado almacenado se deja tal cual:
// la reconciliación es best-effort y solo se registra el fallo.
func ReconcileVideo(videoID string) (models.Video, error) {
	video, err := fetchVideo(videoID)
	if err != nil {
		return models.Video{}, err
	}

	// Un estado terminal nunca cambia, no hace falta preguntar al proveedor
	if video.IsTerminal() {
		return video, nil
	}

	bunnyVideo, err := pkg.GetStreamVideo(video.BunnyLibraryID, video.BunnyVideoID)
	if err != nil {
		logrus.WithError(err).WithField("bunnyVideoId", video.BunnyVideoID).Warn("No se ha podido consultar el estado en Bunny Stream")
		return video, nil
	}

	changed := video.ApplyBunnyStatus(models.BunnyStatusFromCode(bunnyVideo.Status), bunnyVideo.ThumbnailFileName, bunnyVideo.StorageZoneName, time.Now())
	if !changed {
		return video, nil
	}

	var processedAt interface{}
	if video.ProcessedAt != "" {
		processedAt = video.ProcessedAt
	}
	var thumbnailURL, playbackURL interface{}
	if video.ThumbnailUrl != "" {
		thumbnailURL = video.ThumbnailUrl
	}
	if video.PlaybackUrl != "" {
		playbackURL = video.PlaybackUrl
	}

	_, err = db.DB.Exec(`UPDATE videos SET status = ?, thumbnail_url = ?, playback_url = ?, processed_at = ? WHERE id = ?`,
		video.Status, thumbnailURL, playbackURL, processedAt, video.ID)
	if err != nil {
		return models.Video{}, err
	}

	return video, nil
}

// UploadVideo recibe el contenido del video por multipart y ejecuta la subida
// reanudable contra Bunny desde el servidor. Al terminar lanza el poller que
// mantiene fresco el estado hasta que el video esté listo o falle.
func UploadVideo(c *fiber.Ctx) error {
	videoID := c.Params("video_id")

	video, err := fetchVideo(videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": "Video no encontrado",
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al obtener el video",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "No se pudo leer el archivo de video",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al abrir el archivo de video",
		})
	}
	defer file.Close()

	cfg := config.LoadConfig()
	auth := pkg.GenerateBunnyStreamAuth(cfg.BunnyStreamLibraryID, cfg.BunnyStreamApiKey, video.BunnyVideoID, authExpirationMinutes)

	uploader := pkg.NewUploader(pkg.UploadData{
		Content:   file,
		Size:      fileHeader.Size,
		Filename:  video.Filename,
		VideoID:   video.BunnyVideoID,
		LibraryID: video.BunnyLibraryID,
		Auth:      auth,
		Endpoint:  cfg.BunnyTusEndpoint,
	})

	if err := uploader.Start(); err != nil {
		if errors.Is(err, pkg.ErrCredencialExpirada) {
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{
				"error": "La credencial de subida ha expirado, inicia una sesión nueva",
			})
		}
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error":      "Error al subir el video a Bunny",
			"errorTrace": err.Error(),
		})
	}

	// Bunny transcodifica de forma asíncrona: sondear hasta estado terminal
	poller := pkg.NewStatusPoller(time.Duration(cfg.PollIntervalSeconds)*time.Second, func(id string) (string, error) {
		v, err := ReconcileVideo(id)
		if err != nil {
			return "", err
		}
		return v.Status, nil
	})
	go poller.Run(video.ID)

	return c.JSON(fiber.Map{
		"message":  "Video subido correctamente, puedes consultar el estado en el endpoint GET /videos/:video_id/status",
		"videoId":  video.ID,
		"progress": uploader.Progress(),
	})
}

// fetchVideo obtiene un video por su id local
func fetchVideo(videoID string) (models.Video, error) {
	row := db.DB.QueryRow(`SELECT id, title, filename, original_name, size, bunny_video_id, bunny_library_id, status,
		thumbnail_url, playback_url, uploaded_at, processed_at FROM videos WHERE id = ?`, videoID)
	return scanVideo(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanVideo lee una fila de la tabla videos manejando las columnas que pueden
// ser NULL con punteros
func scanVideo(row rowScanner) (models.Video, error) {
	var video models.Video
	var thumbnailURL, playbackURL, processedAt *string

	err := row.Scan(
		&video.ID,
		&video.Title,
		&video.Filename,
		&video.OriginalName,
		&video.Size,
		&video.BunnyVideoID,
		&video.BunnyLibraryID,
		&video.Status,
		&thumbnailURL,
		&playbackURL,
		&video.UploadedAt,
		&processedAt,
	)
	if err != nil {
		return models.Video{}, err
	}

	if thumbnailURL != nil {
		video.ThumbnailUrl = *thumbnailURL
	}
	if playbackURL != nil {
		video.PlaybackUrl = *playbackURL
	}
	if processedAt != nil {
		video.ProcessedAt = *processedAt
	}

	return video, nil
}
