// Package qr renders signed ticket envelopes as QR images and reads them back.
package qr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/codec"
)

const (
	DefaultSize   = 400
	dataURLPrefix = "data:image/png;base64,"
)

// Encoder renders QR PNGs. The zero value uses DefaultSize and the highest
// error-correction level, which survives scuffed or partly covered codes.
type Encoder struct {
	Size int
}

func (e Encoder) Render(content []byte) ([]byte, error) {
	size := e.Size
	if size <= 0 {
		size = DefaultSize
	}
	code, err := qrcode.New(string(content), qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("build qr code: %w", err)
	}
	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return png, nil
}

func (e Encoder) DataURL(png []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

// Encode renders a signed claim as a QR PNG.
func Encode(signed domain.SignedClaim) ([]byte, error) {
	envelope, err := codec.EncodeEnvelope(signed)
	if err != nil {
		return nil, err
	}
	return Encoder{}.Render(envelope)
}

// EncodeDataURL renders a signed claim as a data URL for e-mail or web pages.
func EncodeDataURL(signed domain.SignedClaim) (string, error) {
	png, err := Encode(signed)
	if err != nil {
		return "", err
	}
	return Encoder{}.DataURL(png), nil
}

// DecodeImage reads a QR code from a PNG or JPEG image and decodes the
// envelope it carries.
func DecodeImage(data []byte) (domain.SignedClaim, error) {
	text, err := ReadText(data)
	if err != nil {
		return domain.SignedClaim{}, err
	}
	return DecodeText(text)
}

// ReadText extracts the raw text of the QR code in an image.
func ReadText(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: read image: %v", domain.ErrDecode, err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: binarize image: %v", domain.ErrDecode, err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := zxingqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: no qr code found: %v", domain.ErrDecode, err)
	}
	return result.GetText(), nil
}

// DecodeText decodes envelope text scanned by a camera app or hardware
// scanner. A bad payload surfaces as ErrDecode wrapping ErrMalformedClaim.
func DecodeText(text string) (domain.SignedClaim, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.SignedClaim{}, fmt.Errorf("%w: empty qr text", domain.ErrDecode)
	}
	signed, err := codec.DecodeEnvelope([]byte(text))
	if err != nil {
		if errors.Is(err, domain.ErrDecode) {
			return domain.SignedClaim{}, err
		}
		return domain.SignedClaim{}, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return signed, nil
}
