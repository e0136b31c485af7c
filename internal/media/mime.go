package media

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// imageExtensions maps the accepted image types to the object suffix.
var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

var allowedImageDescription = describeAllowed()

func describeAllowed() string {
	names := make([]string, 0, len(imageExtensions))
	for _, ext := range imageExtensions {
		names = append(names, ext)
	}
	sort.Strings(names)
	return humanReadableList(names)
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}

// sniffImage detects the content type from the payload itself and returns the
// bare media type plus the extension used for the object name.
func sniffImage(data []byte) (string, string, error) {
	detected := mimetype.Detect(data)
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(detected.String(), ";", 2)[0]))
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return mediaType, "", fmt.Errorf("unsupported content type %q: expected %s", mediaType, allowedImageDescription)
	}
	return mediaType, ext, nil
}
