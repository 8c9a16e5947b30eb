package zip

import (
	"archive/zip"
	"bytes"
)

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(asset.Filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

// ExtensionForMIME maps the MIME types generated assets carry onto file
// extensions for archive entries. Unknown types get ".bin".
func ExtensionForMIME(mime string) string {
	switch mime {
	case "image/svg+xml":
		return ".svg"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "audio/mpeg":
		return ".mp3"
	default:
		return ".bin"
	}
}
