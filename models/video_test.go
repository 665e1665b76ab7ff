package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func nuevoVideoEnSubida() Video {
	return Video{
		ID:             "local-1",
		Title:          "t",
		Filename:       "f.mp4",
		OriginalName:   "f.mp4",
		Size:           1000,
		BunnyVideoID:   "guid-1",
		BunnyLibraryID: "lib123",
		Status:         StatusUploading,
	}
}

func TestBunnyStatusFromCode(t *testing.T) {
	assert.Equal(t, BunnyStatusProcessing, BunnyStatusFromCode(3))
	assert.Equal(t, BunnyStatusReady, BunnyStatusFromCode(4))
	assert.Equal(t, BunnyStatusFailed, BunnyStatusFromCode(5))

	// Cualquier otro código cae en la variante desconocida
	for _, code := range []int{-1, 0, 1, 2, 6, 7, 100} {
		assert.Equal(t, BunnyStatusUnknown, BunnyStatusFromCode(code), "código %d", code)
	}
}

// El código 4 marca el video como listo y deriva las URLs de reproducción
func TestApplyBunnyStatusReady(t *testing.T) {
	video := nuevoVideoEnSubida()
	ahora := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	changed := video.ApplyBunnyStatus(BunnyStatusReady, "thumb.jpg", "vz-abc", ahora)

	assert.True(t, changed)
	assert.Equal(t, StatusReady, video.Status)
	assert.Contains(t, video.ThumbnailUrl, "vz-abc")
	assert.Contains(t, video.ThumbnailUrl, "thumb.jpg")
	assert.Contains(t, video.PlaybackUrl, "lib123")
	assert.Contains(t, video.PlaybackUrl, "guid-1")
	assert.Equal(t, "2024-05-01 12:00:00", video.ProcessedAt)
}

// Sin nombre de miniatura no se inventa una URL de miniatura
func TestApplyBunnyStatusReadySinMiniatura(t *testing.T) {
	video := nuevoVideoEnSubida()

	changed := video.ApplyBunnyStatus(BunnyStatusReady, "", "vz-abc", time.Now())

	assert.True(t, changed)
	assert.Equal(t, StatusReady, video.Status)
	assert.Empty(t, video.ThumbnailUrl)
	assert.NotEmpty(t, video.PlaybackUrl)
}

// El código 5 marca el video como fallido sin tocar las URLs
func TestApplyBunnyStatusFailed(t *testing.T) {
	video := nuevoVideoEnSubida()

	changed := video.ApplyBunnyStatus(BunnyStatusFailed, "thumb.jpg", "vz-abc", time.Now())

	assert.True(t, changed)
	assert.Equal(t, StatusFailed, video.Status)
	assert.Empty(t, video.ThumbnailUrl)
	assert.Empty(t, video.PlaybackUrl)
	assert.Empty(t, video.ProcessedAt)
}

func TestApplyBunnyStatusProcessing(t *testing.T) {
	video := nuevoVideoEnSubida()

	changed := video.ApplyBunnyStatus(BunnyStatusProcessing, "", "", time.Now())
	assert.True(t, changed)
	assert.Equal(t, StatusProcessing, video.Status)

	// Repetir el mismo estado no cuenta como cambio
	changed = video.ApplyBunnyStatus(BunnyStatusProcessing, "", "", time.Now())
	assert.False(t, changed)
	assert.Equal(t, StatusProcessing, video.Status)
}

// Los códigos que no modelamos no aportan información y no cambian nada
func TestApplyBunnyStatusDesconocidoNoCambiaNada(t *testing.T) {
	video := nuevoVideoEnSubida()

	changed := video.ApplyBunnyStatus(BunnyStatusUnknown, "thumb.jpg", "vz-abc", time.Now())

	assert.False(t, changed)
	assert.Equal(t, StatusUploading, video.Status)
	assert.Empty(t, video.ThumbnailUrl)
	assert.Empty(t, video.PlaybackUrl)
}

// Un estado terminal nunca se revierte, reporte lo que reporte el proveedor
func TestApplyBunnyStatusTerminalEsMonotono(t *testing.T) {
	listo := nuevoVideoEnSubida()
	listo.ApplyBunnyStatus(BunnyStatusReady, "thumb.jpg", "vz-abc", time.Now())

	for _, status := range []BunnyStatus{BunnyStatusProcessing, BunnyStatusFailed, BunnyStatusUnknown} {
		changed := listo.ApplyBunnyStatus(status, "", "", time.Now())
		assert.False(t, changed)
		assert.Equal(t, StatusReady, listo.Status)
	}

	fallido := nuevoVideoEnSubida()
	fallido.ApplyBunnyStatus(BunnyStatusFailed, "", "", time.Now())

	for _, status := range []BunnyStatus{BunnyStatusProcessing, BunnyStatusReady, BunnyStatusUnknown} {
		changed := fallido.ApplyBunnyStatus(status, "thumb.jpg", "vz-abc", time.Now())
		assert.False(t, changed)
		assert.Equal(t, StatusFailed, fallido.Status)
	}
}

func TestFileTypeFromMime(t *testing.T) {
	assert.Equal(t, FileTypeImage, FileTypeFromMime("image/png"))
	assert.Equal(t, FileTypeDocument, FileTypeFromMime("application/pdf"))
	assert.Equal(t, FileTypeDocument, FileTypeFromMime("text/plain"))
	assert.Equal(t, FileTypeOther, FileTypeFromMime("video/mp4"))
	assert.Equal(t, FileTypeOther, FileTypeFromMime("application/octet-stream"))
}
