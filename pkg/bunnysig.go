package pkg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// BunnyStreamAuth es la credencial firmada que autoriza una sesión de subida
// reanudable contra Bunny Stream. Expira en ExpirationTime (epoch segundos).
type BunnyStreamAuth struct {
	Hash           string `json:"hash"`
	ExpirationTime int64  `json:"expirationTime"`
	Expires        string `json:"expires"`
}

// GenerateBunnyStreamHash calcula la firma SHA-256 que exige Bunny para la
// subida tus: sha256(libraryId + apiKey + expirationTime + videoId), en ese
// orden exacto y sin separadores, codificada en hexadecimal. Es una función
// pura: mismas entradas, misma firma.
func GenerateBunnyStreamHash(libraryID string, apiKey string, expirationTime int64, videoID string) string {
	stringToHash := libraryID + apiKey + fmt.Sprintf("%d", expirationTime) + videoID
	digest := sha256.Sum256([]byte(stringToHash))
	return hex.EncodeToString(digest[:])
}

// GenerateBunnyStreamAuth genera la credencial completa para un video con una
// ventana de validez en minutos. La expiración la impone Bunny, no nosotros:
// pasada la fecha la firma deja de servir aunque sea correcta.
func GenerateBunnyStreamAuth(libraryID string, apiKey string, videoID string, expiresInMinutes int) BunnyStreamAuth {
	expirationTime := time.Now().Unix() + int64(expiresInMinutes)*60
	hash := GenerateBunnyStreamHash(libraryID, apiKey, expirationTime, videoID)

	return BunnyStreamAuth{
		Hash:           hash,
		ExpirationTime: expirationTime,
		Expires:        time.Unix(expirationTime, 0).UTC().Format(time.RFC3339),
	}
}
