package models

import (
	"fmt"
	"time"
)

type Video struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Filename       string `json:"filename"`
	OriginalName   string `json:"original_name"`
	Size           int64  `json:"size"`
	BunnyVideoID   string `json:"bunny_video_id"`
	BunnyLibraryID string `json:"bunny_library_id"`
	Status         string `json:"status"`
	ThumbnailUrl   string `json:"thumbnail_url,omitempty"`
	PlaybackUrl    string `json:"playback_url,omitempty"`
	UploadedAt     string `json:"uploaded_at"`
	ProcessedAt    string `json:"processed_at,omitempty"`
}

// Estados locales del ciclo de vida de un video. 'ready' y 'failed' son
// terminales: una vez alcanzados no se vuelve atrás.
const (
	StatusUploading  = "uploading"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// BunnyStatus representa el código numérico de estado que devuelve Bunny
// Stream como variante cerrada. Cualquier código que no modelamos se mapea a
// BunnyStatusUnknown y no produce ningún cambio de estado.
type BunnyStatus int

const (
	BunnyStatusUnknown BunnyStatus = iota
	BunnyStatusProcessing
	BunnyStatusReady
	BunnyStatusFailed
)

// BunnyStatusFromCode traduce el código numérico del proveedor (3=procesando,
// 4=listo, 5=fallido) a la variante interna
func BunnyStatusFromCode(code int) BunnyStatus {
	switch code {
	case 3:
		return BunnyStatusProcessing
	case 4:
		return BunnyStatusReady
	case 5:
		return BunnyStatusFailed
	default:
		return BunnyStatusUnknown
	}
}

// IsTerminal indica si el video ya no admite más transiciones de estado
func (v *Video) IsTerminal() bool {
	return v.Status == StatusReady || v.Status == StatusFailed
}

// ApplyBunnyStatus aplica al video el estado que reporta Bunny. Devuelve true
// si el video ha cambiado. Es una función pura sobre el estado del proveedor:
// un estado terminal local nunca se sobreescribe y los códigos desconocidos
// no modifican nada.
func (v *Video) ApplyBunnyStatus(status BunnyStatus, thumbnailFileName string, storageZoneName string, now time.Time) bool {
	if v.IsTerminal() {
		return false
	}

	switch status {
	case BunnyStatusReady:
		v.Status = StatusReady
		if thumbnailFileName != "" {
			v.ThumbnailUrl = fmt.Sprintf("https://vz-%s.b-cdn.net/%s/%s", storageZoneName, v.BunnyVideoID, thumbnailFileName)
		}
		v.PlaybackUrl = fmt.Sprintf("https://iframe.mediadelivery.net/embed/%s/%s", v.BunnyLibraryID, v.BunnyVideoID)
		v.ProcessedAt = now.UTC().Format("2006-01-02 15:04:05")
		return true
	case BunnyStatusFailed:
		v.Status = StatusFailed
		return true
	case BunnyStatusProcessing:
		if v.Status == StatusProcessing {
			return false
		}
		v.Status = StatusProcessing
		return true
	default:
		// Código que no modelamos (p.ej. estados en cola), no hay información nueva
		return false
	}
}
