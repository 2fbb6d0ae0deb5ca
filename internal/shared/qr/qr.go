package qr

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// Encode renders the booking code as a QR PNG and returns it as a data URI.
// The QR payload is exactly the code string, so a scan yields the same value
// the owner would type by hand.
func Encode(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, pngSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// EncodePNG returns the raw PNG bytes, for callers that upload the artifact
// to object storage instead of inlining it.
func EncodePNG(code string) ([]byte, error) {
	return qrcode.Encode(code, qrcode.Medium, pngSize)
}
