package pkg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bunny-media-api/config"
)

// BunnyVideoResponse es la respuesta de la API de Bunny Stream para un video.
// El campo status es el código numérico del proveedor (3=procesando, 4=listo,
// 5=fallido; puede haber otros valores que no modelamos).
type BunnyVideoResponse struct {
	Guid              string `json:"guid"`
	Title             string `json:"title"`
	Status            int    `json:"status"`
	ThumbnailFileName string `json:"thumbnailFileName"`
	StorageZoneName   string `json:"storageZoneName"`
}

var bunnyClient = &http.Client{
	Timeout: time.Second * 30,
}

// CreateStreamVideo crea el contenedor del video en Bunny Stream y devuelve
// el identificador remoto (guid) que asigna el proveedor
func CreateStreamVideo(title string) (string, error) {
	cfg := config.LoadConfig()
	apiURL := fmt.Sprintf("%s/library/%s/videos", cfg.BunnyStreamApiUrl, cfg.BunnyStreamLibraryID)

	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return "", fmt.Errorf("error serializando el cuerpo de la petición: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error construyendo la petición a Bunny Stream: %w", err)
	}
	req.Header.Set("AccessKey", cfg.BunnyStreamApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := bunnyClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error al hacer la solicitud HTTP a Bunny Stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("Bunny Stream ha rechazado la creación del video, código de estado: %d", resp.StatusCode)
	}

	var bunnyVideo BunnyVideoResponse
	if err := json.NewDecoder(resp.Body).Decode(&bunnyVideo); err != nil {
		return "", fmt.Errorf("error deserializando la respuesta de Bunny Stream: %w", err)
	}

	if bunnyVideo.Guid == "" {
		return "", fmt.Errorf("Bunny Stream no ha devuelto un guid para el video")
	}

	return bunnyVideo.Guid, nil
}

// GetStreamVideo consulta el estado actual de un video en Bunny Stream
func GetStreamVideo(libraryID string, videoID string) (*BunnyVideoResponse, error) {
	cfg := config.LoadConfig()
	apiURL := fmt.Sprintf("%s/library/%s/videos/%s", cfg.BunnyStreamApiUrl, libraryID, videoID)

	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error construyendo la petición a Bunny Stream: %w", err)
	}
	req.Header.Set("AccessKey", cfg.BunnyStreamApiKey)

	resp, err := bunnyClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error al hacer la solicitud HTTP a Bunny Stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("Bunny Stream ha devuelto un código de estado inesperado: %d", resp.StatusCode)
	}

	var bunnyVideo BunnyVideoResponse
	if err := json.NewDecoder(resp.Body).Decode(&bunnyVideo); err != nil {
		return nil, fmt.Errorf("error deserializando la respuesta de Bunny Stream: %w", err)
	}

	return &bunnyVideo, nil
}

// UploadToStorage sube el contenido de un archivo a Bunny Storage mediante un
// único PUT y devuelve la URL pública del CDN
func UploadToStorage(fileName string, contentType string, content io.Reader) (string, error) {
	cfg := config.LoadConfig()
	uploadURL := fmt.Sprintf("%s/%s/%s", cfg.BunnyStorageApiUrl, cfg.BunnyStorageZoneName, fileName)

	req, err := http.NewRequest(http.MethodPut, uploadURL, content)
	if err != nil {
		return "", fmt.Errorf("error construyendo la petición a Bunny Storage: %w", err)
	}
	req.Header.Set("AccessKey", cfg.BunnyStorageApiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := bunnyClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error al subir el archivo a Bunny Storage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("Bunny Storage ha rechazado la subida, código de estado: %d", resp.StatusCode)
	}

	return fmt.Sprintf("https://%s.b-cdn.net/%s", cfg.BunnyStorageZoneName, fileName), nil
}
