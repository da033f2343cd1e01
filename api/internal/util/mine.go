package util

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strings"
)

var (
	magicJPEG = []byte{0xFF, 0xD8}
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// SniffMimeForOCR returns the upper-case format token cloud OCR APIs expect.
func SniffMimeForOCR(b []byte) string {
	switch SniffMimeHTTP(b) {
	case "image/jpeg":
		return "JPEG"
	case "image/png":
		return "PNG"
	}
	return ""
}

func SniffMimeHTTP(b []byte) string {
	switch {
	case bytes.HasPrefix(b, magicJPEG):
		return "image/jpeg"
	case bytes.HasPrefix(b, magicPNG):
		return "image/png"
	case len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "image/webp"
	}
	return "application/octet-stream"
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// DecodeBase64MaybeDataURL decodes plain or data:URI base64 and returns the
// mime type from the data:URI prefix when present.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(s, "data:") {
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hintMIME = meta[:semi]
			} else {
				hintMIME = meta
			}
			s = s[idx+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return b, hintMIME, nil
	}
	if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, hintMIME, nil
	}
	return nil, "", err
}

// PickMIME prefers an explicit type, then a hint, then sniffs the bytes.
// Generic types such as application/octet-stream do not count as explicit.
func PickMIME(explicit, hint string, data []byte) string {
	for _, v := range []string{explicit, hint} {
		if v = strings.TrimSpace(v); v != "" && v != "application/octet-stream" {
			return v
		}
	}
	if m := SniffMimeHTTP(data); m != "application/octet-stream" {
		return m
	}
	if len(data) > 0 {
		if m := http.DetectContentType(data); strings.HasPrefix(m, "image/") {
			return m
		}
	}
	return "image/jpeg"
}
