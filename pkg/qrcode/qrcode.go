// Package qrcode renders ticket payloads as PNG data URIs.
package qrcode

import (
	"encoding/base64"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const dataURIPrefix = "data:image/png;base64,"

type Generator struct {
	Size  int
	Level goqrcode.RecoveryLevel
}

func NewGenerator() *Generator {
	return &Generator{Size: 256, Level: goqrcode.Medium}
}

// DataURI encodes payload as a QR code and returns it as a PNG data URI.
func (g *Generator) DataURI(payload string) (string, error) {
	png, err := goqrcode.Encode(payload, g.Level, g.Size)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
