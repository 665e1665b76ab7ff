package routes

import (
	"fmt"
	"net/http"
	"time"

	"bunny-media-api/db"
	"bunny-media-api/models"
	"bunny-media-api/pkg"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadFile sube un archivo normal (imagen, documento...) a Bunny Storage
// con un único PUT y guarda el registro con su URL pública
func UploadFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "No se ha proporcionado ningún archivo",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al abrir el archivo",
		})
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	// Prefijar con el timestamp para que la clave en el CDN sea única
	fileName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), fileHeader.Filename)

	bunnyURL, err := pkg.UploadToStorage(fileName, mimeType, file)
	if err != nil {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error":      "Error al subir el archivo a Bunny Storage",
			"errorTrace": err.Error(),
		})
	}

	record := models.File{
		ID:           uuid.NewString(),
		Filename:     fileName,
		OriginalName: fileHeader.Filename,
		Size:         fileHeader.Size,
		MimeType:     mimeType,
		BunnyUrl:     bunnyURL,
		FileType:     models.FileTypeFromMime(mimeType),
	}

	_, err = db.DB.Exec(`INSERT INTO files (id, filename, original_name, size, mime_type, bunny_url, file_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Filename, record.OriginalName, record.Size, record.MimeType, record.BunnyUrl, record.FileType)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Error al insertar el archivo",
			"errorTrace": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"fileId":  record.ID,
		"url":     record.BunnyUrl,
		"message": "Archivo subido correctamente",
	})
}

// GetFiles obtiene todos los archivos ordenados del más reciente al más antiguo
func GetFiles(c *fiber.Ctx) error {
	rows, err := db.DB.Query(`SELECT id, filename, original_name, size, mime_type, bunny_url, file_type, uploaded_at
		FROM files ORDER BY uploaded_at DESC`)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al obtener los archivos",
		})
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		var record models.File
		var bunnyURL *string
		err := rows.Scan(&record.ID, &record.Filename, &record.OriginalName, &record.Size, &record.MimeType, &bunnyURL, &record.FileType, &record.UploadedAt)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error":      "Error al leer el archivo",
				"errorTrace": err.Error(),
			})
		}
		if bunnyURL != nil {
			record.BunnyUrl = *bunnyURL
		}
		files = append(files, record)
	}

	if err = rows.Err(); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al procesar los resultados",
		})
	}

	return c.JSON(fiber.Map{
		"files": files,
	})
}
