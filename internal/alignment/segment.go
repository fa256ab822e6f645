package alignment

import (
	"fmt"
	"path/filepath"

	"reelsmith/internal/keywords"
)

// Segment binds one keyword to a time window and the media file that will
// illustrate it.
type Segment struct {
	OrderID int                `json:"order_id"`
	Type    keywords.MediaType `json:"type"`
	Keyword string             `json:"keyword"`
	Start   int64              `json:"start"`
	End     int64              `json:"end"`
	Path    string             `json:"path"`
}

// Duration returns End - Start in milliseconds.
func (s Segment) Duration() int64 {
	return s.End - s.Start
}

// MediaExtension returns the file extension used for a media type.
func MediaExtension(t keywords.MediaType) string {
	switch t {
	case keywords.MediaText, keywords.MediaGIF:
		return "mp4"
	case keywords.MediaImage:
		return "jpg"
	default:
		return "other"
	}
}

// MediaPath derives <root>/<type>/<order_id>.<ext>.
func MediaPath(root string, t keywords.MediaType, orderID int) string {
	return filepath.Join(root, string(t), fmt.Sprintf("%d.%s", orderID, MediaExtension(t)))
}
