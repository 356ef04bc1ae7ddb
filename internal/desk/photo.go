package desk

import (
	"encoding/base64"
	"io/fs"
	"net/http"
	"os"
)

// PhotoSource gives the form access to local files picked as photos. Stat is
// always called first so oversize files are rejected unread.
type PhotoSource interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// OSPhotos reads photos from the local filesystem.
type OSPhotos struct{}

func (OSPhotos) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (OSPhotos) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// dataURL renders data as an inline preview.
func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func sniff(data []byte) string {
	return http.DetectContentType(data)
}
