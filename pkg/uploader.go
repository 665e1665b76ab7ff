package pkg

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Estados observables de una subida reanudable
const (
	UploadNotStarted = "not_started"
	UploadRunning    = "running"
	UploadPaused     = "paused"
	UploadCompleted  = "completed"
	UploadFailed     = "failed"
)

// RetryDelays es el calendario fijo de reintentos ante fallos transitorios,
// en orden creciente. Agotado el calendario la subida se da por fallida.
var RetryDelays = []time.Duration{
	0,
	3 * time.Second,
	5 * time.Second,
	10 * time.Second,
	20 * time.Second,
}

// ErrCredencialExpirada indica que Bunny ha rechazado la firma de
// autorización. Reintentar con la misma credencial caducada no puede
// funcionar, así que el fallo es terminal y no se reintenta.
var ErrCredencialExpirada = errors.New("la credencial de subida ha expirado o no es válida")

// Tamaño de chunk por defecto para la subida tus (5 MB)
const DefaultChunkSize int64 = 5 * 1024 * 1024

// UploadData contiene todo lo necesario para subir un video a Bunny
type UploadData struct {
	Content    io.ReadSeeker
	Size       int64
	Filename   string
	VideoID    string
	LibraryID  string
	Auth       BunnyStreamAuth
	Endpoint   string
	ChunkSize  int64
	OnProgress func(bytesUploaded int64, bytesTotal int64)
}

// Uploader sube el contenido de un video a Bunny mediante el protocolo tus:
// un POST de creación, y después chunks PATCH desde el último offset
// confirmado por el servidor. El checkpoint vive en el servidor, por lo que
// pausar y reanudar continúa donde se quedó en vez de empezar de cero.
type Uploader struct {
	client *http.Client
	data   UploadData

	mu        sync.Mutex
	state     string
	uploadURL string
	offset    int64
	cancel    context.CancelFunc
}

func NewUploader(data UploadData) *Uploader {
	if data.ChunkSize <= 0 {
		data.ChunkSize = DefaultChunkSize
	}
	return &Uploader{
		client: &http.Client{Timeout: time.Minute * 5},
		data:   data,
		state:  UploadNotStarted,
	}
}

// State devuelve el estado observable actual de la subida
func (u *Uploader) State() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Progress devuelve el porcentaje de bytes confirmados por el servidor.
// Nunca decrece: el offset solo avanza cuando Bunny confirma un chunk.
func (u *Uploader) Progress() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.data.Size == 0 {
		return 0
	}
	return float64(u.offset) / float64(u.data.Size) * 100
}

// Start ejecuta la subida hasta completarla, fallar o ser pausada. Tras una
// pausa se puede volver a llamar: recupera el offset confirmado con un HEAD
// y continúa desde ahí.
func (u *Uploader) Start() error {
	u.mu.Lock()
	switch u.state {
	case UploadRunning:
		u.mu.Unlock()
		return fmt.Errorf("la subida ya está en curso")
	case UploadCompleted:
		u.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.state = UploadRunning
	u.mu.Unlock()

	err := u.run(ctx)

	u.mu.Lock()
	defer u.mu.Unlock()
	switch {
	case err == nil:
		u.state = UploadCompleted
		return nil
	case errors.Is(err, context.Canceled):
		// Pausa solicitada por el llamador, el checkpoint queda en el servidor
		u.state = UploadPaused
		return nil
	default:
		u.state = UploadFailed
		return err
	}
}

// Pause aborta la transferencia en curso sin descartar los bytes ya
// confirmados. No es un estado del proveedor: solo detiene al cliente.
func (u *Uploader) Pause() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == UploadRunning && u.cancel != nil {
		u.cancel()
	}
}

func (u *Uploader) run(ctx context.Context) error {
	if u.uploadURL == "" {
		if err := u.createUpload(ctx); err != nil {
			return err
		}
	} else {
		if err := u.recoverOffset(ctx); err != nil {
			return err
		}
	}

	for {
		u.mu.Lock()
		offset := u.offset
		u.mu.Unlock()

		if offset >= u.data.Size {
			return nil
		}

		if err := u.uploadChunk(ctx, offset); err != nil {
			return err
		}
	}
}

// createUpload hace el POST de creación tus y guarda la URL de subida que
// devuelve el servidor en la cabecera Location
func (u *Uploader) createUpload(ctx context.Context) error {
	resp, err := u.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, u.data.Endpoint, nil)
		if err != nil {
			return nil, err
		}
		u.setCommonHeaders(req)
		req.Header.Set("Upload-Length", strconv.FormatInt(u.data.Size, 10))
		req.Header.Set("Upload-Metadata", tusMetadata(map[string]string{
			"filename":  u.data.Filename,
			"videoId":   u.data.VideoID,
			"libraryId": u.data.LibraryID,
		}))
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	location := resp.Header.Get("Location")
	if location == "" {
		return fmt.Errorf("el servidor tus no ha devuelto la cabecera Location")
	}

	u.mu.Lock()
	u.uploadURL = resolveLocation(u.data.Endpoint, location)
	u.mu.Unlock()
	return nil
}

// recoverOffset consulta con HEAD cuántos bytes tiene ya el servidor, para
// continuar una subida interrumpida desde el último offset confirmado
func (u *Uploader) recoverOffset(ctx context.Context) error {
	resp, err := u.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodHead, u.uploadURL, nil)
		if err != nil {
			return nil, err
		}
		u.setCommonHeaders(req)
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	offset, err := strconv.ParseInt(resp.Header.Get("Upload-Offset"), 10, 64)
	if err != nil {
		return fmt.Errorf("cabecera Upload-Offset inválida en la respuesta HEAD: %w", err)
	}

	u.mu.Lock()
	u.offset = offset
	u.mu.Unlock()
	return nil
}

// uploadChunk sube un chunk desde el offset indicado y avanza el offset local
// hasta el que confirme el servidor
func (u *Uploader) uploadChunk(ctx context.Context, offset int64) error {
	size := u.data.ChunkSize
	if offset+size > u.data.Size {
		size = u.data.Size - offset
	}

	resp, err := u.doWithRetry(ctx, func() (*http.Request, error) {
		if _, err := u.data.Content.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("error posicionando el contenido en el offset %d: %w", offset, err)
		}
		req, err := http.NewRequest(http.MethodPatch, u.uploadURL, io.LimitReader(u.data.Content, size))
		if err != nil {
			return nil, err
		}
		u.setCommonHeaders(req)
		req.Header.Set("Content-Type", "application/offset+octet-stream")
		req.Header.Set("Upload-Offset", strconv.FormatInt(offset, 10))
		req.ContentLength = size
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	newOffset := offset + size
	if v := resp.Header.Get("Upload-Offset"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			newOffset = parsed
		}
	}

	u.mu.Lock()
	u.offset = newOffset
	u.mu.Unlock()

	if u.data.OnProgress != nil {
		u.data.OnProgress(newOffset, u.data.Size)
	}
	return nil
}

// doWithRetry ejecuta una petición siguiendo el calendario de reintentos.
// Un rechazo de autorización (401/403) es terminal y no se reintenta; los
// fallos de red y los 5xx se reintentan hasta agotar el calendario.
func (u *Uploader) doWithRetry(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for _, delay := range RetryDelays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)
		req.Header.Set("Tus-Resumable", "1.0.0")

		resp, err := u.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			logrus.WithError(err).Warn("Fallo transitorio en la subida tus, reintentando")
			continue
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return nil, ErrCredencialExpirada
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("el servidor tus ha devuelto el código de estado %d", resp.StatusCode)
			resp.Body.Close()
			logrus.WithField("status", resp.StatusCode).Warn("Fallo transitorio en la subida tus, reintentando")
			continue
		case resp.StatusCode >= 400:
			defer resp.Body.Close()
			return nil, fmt.Errorf("el servidor tus ha rechazado la petición, código de estado: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("reintentos agotados subiendo a Bunny: %w", lastErr)
}

// tusMetadata codifica los metadatos de la subida según el protocolo tus:
// pares "clave base64(valor)" separados por comas
func tusMetadata(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+base64.StdEncoding.EncodeToString([]byte(pairs[k])))
	}
	return strings.Join(parts, ",")
}

// resolveLocation resuelve la cabecera Location contra el endpoint de subida,
// ya que el servidor puede devolver una URL relativa
func resolveLocation(endpoint string, location string) string {
	base, err := url.Parse(endpoint)
	if err != nil {
		return location
	}
	ref, err := url.Parse(location)
	if err != nil {
		return location
	}
	return base.ResolveReference(ref).String()
}

// setCommonHeaders añade las cabeceras de autorización que Bunny exige en
// cada petición de la sesión tus
func (u *Uploader) setCommonHeaders(req *http.Request) {
	req.Header.Set("AuthorizationSignature", u.data.Auth.Hash)
	req.Header.Set("AuthorizationExpire", strconv.FormatInt(u.data.Auth.ExpirationTime, 10))
	req.Header.Set("LibraryId", u.data.LibraryID)
	req.Header.Set("VideoId", u.data.VideoID)
}
