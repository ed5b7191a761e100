package domain

// MediaType is the coarse category of a servable file.
type MediaType string

const (
	MediaTypeVideo   MediaType = "video"
	MediaTypeAudio   MediaType = "audio"
	MediaTypeImage   MediaType = "image"
	MediaTypeUnknown MediaType = "unknown"
)

// MediaDescriptor is metadata about a servable file, without its content.
type MediaDescriptor struct {
	Name string    `json:"name"`
	Size int64     `json:"size"`
	Type MediaType `json:"type"`
	MIME string    `json:"mime"`
}

var mimeTypes = map[string]string{
	// video
	".mp4":  "video/mp4",
	".avi":  "video/avi",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/mp4",
	".3gp":  "video/3gpp",

	// audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".wma":  "audio/x-ms-wma",

	// image
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".tiff": "image/tiff",
}

var mediaTypes = map[string]MediaType{
	".mp4": MediaTypeVideo, ".avi": MediaTypeVideo, ".mov": MediaTypeVideo,
	".mkv": MediaTypeVideo, ".wmv": MediaTypeVideo, ".flv": MediaTypeVideo,
	".webm": MediaTypeVideo, ".m4v": MediaTypeVideo, ".3gp": MediaTypeVideo,

	".mp3": MediaTypeAudio, ".wav": MediaTypeAudio, ".aac": MediaTypeAudio,
	".flac": MediaTypeAudio, ".ogg": MediaTypeAudio, ".m4a": MediaTypeAudio,
	".wma": MediaTypeAudio,

	".jpg": MediaTypeImage, ".jpeg": MediaTypeImage, ".png": MediaTypeImage,
	".gif": MediaTypeImage, ".bmp": MediaTypeImage, ".webp": MediaTypeImage,
	".svg": MediaTypeImage, ".tiff": MediaTypeImage,
}

// MediaTypeFor returns the coarse media type for a lowercase file extension
// (including the leading dot).
func MediaTypeFor(ext string) MediaType {
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	return MediaTypeUnknown
}

// MIMEFor returns the MIME type for a lowercase file extension, defaulting
// to application/octet-stream.
func MIMEFor(ext string) string {
	if m, ok := mimeTypes[ext]; ok {
		return m
	}
	return "application/octet-stream"
}

// SupportedExtension reports whether files with this extension appear in
// media listings. Unsupported extensions can still be probed and streamed.
func SupportedExtension(ext string) bool {
	_, ok := mediaTypes[ext]
	return ok
}
