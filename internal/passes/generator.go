package passes

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"ms-pricing/internal/models"

	"github.com/skip2/go-qrcode"
)

// Generator issues the QR passes shown in the buyer's order view and scanned
// at the door. The payload is the price confirmation, AES-encrypted so a
// screenshot cannot be forged by editing the JSON.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// IssuePass renders a confirmation into a QR PNG.
func (g *Generator) IssuePass(conf models.PriceConfirmation) ([]byte, error) {
	encrypted, err := g.EncodePayload(conf)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// EncodePayload encrypts a confirmation into the string embedded in the QR.
func (g *Generator) EncodePayload(conf models.PriceConfirmation) (string, error) {
	data, err := json.Marshal(conf)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// DecodePayload reverses EncodePayload; used by the check-in scanner path.
func (g *Generator) DecodePayload(encoded string) (*models.PriceConfirmation, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid pass encoding: %w", err)
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, fmt.Errorf("pass payload too short")
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])

	var conf models.PriceConfirmation
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("invalid pass payload: %w", err)
	}
	return &conf, nil
}
