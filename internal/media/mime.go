package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
)

type mimeGroup string

const (
	mimeGroupImages mimeGroup = "images"
	mimeGroupVideos mimeGroup = "videos"
	mimeGroupOther  mimeGroup = "files"
)

var extensionGroups = map[string]mimeGroup{
	"png":  mimeGroupImages,
	"jpg":  mimeGroupImages,
	"jpeg": mimeGroupImages,
	"gif":  mimeGroupImages,
	"bmp":  mimeGroupImages,
	"webp": mimeGroupImages,
	"mp4":  mimeGroupVideos,
	"mov":  mimeGroupVideos,
	"avi":  mimeGroupVideos,
	"webm": mimeGroupVideos,
}

// embeddableImages are the raster formats the protocol report can embed.
var embeddableImages = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "webp": {},
}

var fallbackContentTypes = map[string]string{
	"webp": "image/webp",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"webm": "video/webm",
	"bmp":  "image/bmp",
}

// Ext returns the lower-case extension of name without the dot.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// IsImage reports whether name carries an embeddable raster extension.
func IsImage(name string) bool {
	_, ok := embeddableImages[Ext(name)]
	return ok
}

// ContentType guesses the MIME type from the extension.
func ContentType(name string) string {
	ext := Ext(name)
	if ext == "" {
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	if ct, ok := fallbackContentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

func normalizeExtensions(values []string) []string {
	set := map[string]struct{}{}
	for _, v := range values {
		clean := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v), "."))
		if clean != "" {
			set[clean] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func describeAllowed(exts []string) string {
	groups := map[mimeGroup]struct{}{}
	for _, ext := range exts {
		g, ok := extensionGroups[ext]
		if !ok {
			g = mimeGroupOther
		}
		groups[g] = struct{}{}
	}
	var names []string
	for _, g := range []mimeGroup{mimeGroupImages, mimeGroupVideos, mimeGroupOther} {
		if _, ok := groups[g]; ok {
			names = append(names, string(g))
		}
	}
	return fmt.Sprintf("%s (%s)", humanReadableList(names), strings.Join(exts, ", "))
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
