// Package loader reads fiscal XML files from disk, resolves their text
// encoding and sanitizes the content so that a tolerant XML parser succeeds
// on the malformed documents common in the wild.
package loader

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/fiscalxml/processor/internal/model"
)

// DefaultMaxFileSize is the default ceiling for a single XML file.
const DefaultMaxFileSize = 50 << 20 // 50 MB

var (
	controlCharRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	entityFixRe   = regexp.MustCompile(`&amp;(lt|gt|quot|apos|amp);`)
)

// fallbackEncodings tried in order when the content is not valid UTF-8.
// ISO 8859-1 accepts any byte sequence, so the chain is effectively total;
// Windows-1252 stays listed for documents that a stricter decoder flags.
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"iso-8859-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
}

// Loader validates and reads raw XML inputs.
type Loader struct {
	maxSize int64
	log     zerolog.Logger
}

// New creates a loader with the given file-size ceiling in bytes.
// A non-positive ceiling falls back to DefaultMaxFileSize.
func New(maxSize int64, log zerolog.Logger) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Loader{maxSize: maxSize, log: log}
}

// Load reads and sanitizes one file. It fails only on file-level fatal
// conditions: missing path, wrong extension, oversized file, undecodable
// content, or content that is not XML at all.
func (l *Loader) Load(path string) (*model.RawInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, model.NewLoadError(path, model.LoadIOFailure, err)
	}
	if info.IsDir() {
		return nil, model.NewLoadError(path, model.LoadIOFailure, nil)
	}
	if strings.ToLower(filepath.Ext(path)) != ".xml" {
		return nil, model.NewLoadError(path, model.LoadBadExtension, nil)
	}
	if info.Size() > l.maxSize {
		return nil, model.NewLoadError(path, model.LoadSizeExceeded, nil)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewLoadError(path, model.LoadIOFailure, err)
	}

	return l.FromBytes(path, raw)
}

// FromBytes builds a RawInput from in-memory content, applying the same
// encoding resolution and sanitization as Load. Used by the HTTP surface
// where no file path exists.
func (l *Loader) FromBytes(name string, raw []byte) (*model.RawInput, error) {
	text, encName, err := l.decode(name, raw)
	if err != nil {
		return nil, err
	}

	text = Sanitize(text)

	if !looksLikeXML(text) {
		return nil, model.NewLoadError(name, model.LoadNotXML, nil)
	}

	return &model.RawInput{
		Name:     filepath.Base(name),
		Path:     name,
		Size:     int64(len(raw)),
		Encoding: encName,
		Raw:      raw,
		Content:  []byte(text),
	}, nil
}

func (l *Loader) decode(name string, raw []byte) (string, string, error) {
	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}

	for _, fb := range fallbackEncodings {
		decoded, err := fb.enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		l.log.Warn().Str("file", name).Str("encoding", fb.name).Msg("decoded with fallback encoding")
		return string(decoded), fb.name, nil
	}

	return "", "", model.NewLoadError(name, model.LoadEncodingFailure, nil)
}

// Sanitize strips a leading BOM and the ASCII control characters that break
// XML parsers (keeping tab, newline and carriage return), and re-escapes bare
// "&" characters that are not already part of a recognized entity. Lossy by
// design; it never fails.
func Sanitize(content string) string {
	content = strings.TrimPrefix(content, "\uFEFF")
	content = controlCharRe.ReplaceAllString(content, "")

	// Escape every ampersand, then undo the double escaping of the ones
	// that already started a known entity.
	content = strings.ReplaceAll(content, "&", "&amp;")
	content = entityFixRe.ReplaceAllString(content, "&$1;")

	return content
}

// looksLikeXML requires an XML declaration or at least an opening tag within
// the first non-blank bytes.
func looksLikeXML(content string) bool {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	return strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<")
}

// IsXMLFile reports whether the path carries the .xml extension.
func IsXMLFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".xml"
}
