package pkg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// La firma debe ser determinista: mismas entradas, mismo hash
func TestGenerateBunnyStreamHashDeterminista(t *testing.T) {
	hash1 := GenerateBunnyStreamHash("lib123", "clave-secreta", 1700000000, "video-abc")
	hash2 := GenerateBunnyStreamHash("lib123", "clave-secreta", 1700000000, "video-abc")

	assert.Equal(t, hash1, hash2, "Las mismas entradas deben producir la misma firma")
	assert.Len(t, hash1, 64, "La firma debe ser un SHA-256 en hexadecimal")
}

// El hash debe ser exactamente sha256(libraryId + apiKey + expiration + videoId)
// sin separadores, con la expiración como entero en base 10
func TestGenerateBunnyStreamHashConcatenacion(t *testing.T) {
	libraryID := "42"
	apiKey := "api-key"
	var expiration int64 = 1699999999
	videoID := "guid-1"

	esperado := sha256.Sum256([]byte(libraryID + apiKey + fmt.Sprintf("%d", expiration) + videoID))

	hash := GenerateBunnyStreamHash(libraryID, apiKey, expiration, videoID)
	assert.Equal(t, hex.EncodeToString(esperado[:]), hash)
}

// Entradas distintas deben producir firmas distintas
func TestGenerateBunnyStreamHashEntradasDistintas(t *testing.T) {
	base := GenerateBunnyStreamHash("lib123", "clave", 1700000000, "video-abc")

	assert.NotEqual(t, base, GenerateBunnyStreamHash("lib124", "clave", 1700000000, "video-abc"))
	assert.NotEqual(t, base, GenerateBunnyStreamHash("lib123", "otra", 1700000000, "video-abc"))
	assert.NotEqual(t, base, GenerateBunnyStreamHash("lib123", "clave", 1700000001, "video-abc"))
	assert.NotEqual(t, base, GenerateBunnyStreamHash("lib123", "clave", 1700000000, "video-abd"))
}

func TestGenerateBunnyStreamAuth(t *testing.T) {
	antes := time.Now().Unix()
	auth := GenerateBunnyStreamAuth("lib123", "clave-secreta", "video-abc", 60)
	despues := time.Now().Unix()

	// La expiración debe caer dentro de la ventana de 60 minutos
	assert.GreaterOrEqual(t, auth.ExpirationTime, antes+60*60)
	assert.LessOrEqual(t, auth.ExpirationTime, despues+60*60)

	// La firma debe corresponder a la expiración devuelta
	assert.Equal(t, GenerateBunnyStreamHash("lib123", "clave-secreta", auth.ExpirationTime, "video-abc"), auth.Hash)

	// Expires debe ser la misma marca de tiempo en formato legible
	parsed, err := time.Parse(time.RFC3339, auth.Expires)
	assert.NoError(t, err)
	assert.Equal(t, auth.ExpirationTime, parsed.Unix())
}
