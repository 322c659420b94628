package loader_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalxml/processor/internal/loader"
	"github.com/fiscalxml/processor/internal/model"
)

func newLoader() *loader.Loader {
	return loader.New(0, zerolog.Nop())
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad_UTF8(t *testing.T) {
	path := writeFile(t, "doc.xml", []byte(`<?xml version="1.0"?><root><a>ação</a></root>`))

	in, err := newLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "utf-8", in.Encoding)
	assert.Equal(t, "doc.xml", in.Name)
	assert.Contains(t, string(in.Content), "ação")
}

func TestLoad_Latin1Fallback(t *testing.T) {
	// "ação" encoded as ISO 8859-1: e7/e3 bytes are invalid UTF-8.
	content := append([]byte(`<?xml version="1.0"?><root>a`), 0xE7, 0xE3, 'o')
	content = append(content, []byte(`</root>`)...)
	path := writeFile(t, "latin.xml", content)

	in, err := newLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "iso-8859-1", in.Encoding)
	assert.Contains(t, string(in.Content), "ação")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := newLoader().Load(filepath.Join(t.TempDir(), "absent.xml"))

	var loadErr *model.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, model.LoadIOFailure, loadErr.Kind)
}

func TestLoad_BadExtension(t *testing.T) {
	path := writeFile(t, "doc.txt", []byte(`<?xml version="1.0"?><root/>`))

	_, err := newLoader().Load(path)

	var loadErr *model.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, model.LoadBadExtension, loadErr.Kind)
}

func TestLoad_SizeExceeded(t *testing.T) {
	path := writeFile(t, "big.xml", []byte(strings.Repeat("x", 2048)))

	_, err := loader.New(1024, zerolog.Nop()).Load(path)

	var loadErr *model.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, model.LoadSizeExceeded, loadErr.Kind)
}

func TestLoad_NotXML(t *testing.T) {
	path := writeFile(t, "not.xml", []byte("just some text"))

	_, err := newLoader().Load(path)

	var loadErr *model.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, model.LoadNotXML, loadErr.Kind)
}

func TestFingerprint_RawBytes(t *testing.T) {
	// The fingerprint covers the original bytes, not the sanitized text, so
	// byte-identical files match even when sanitization rewrites content.
	raw := []byte("\uFEFF" + `<?xml version="1.0"?><root>A & B</root>`)
	pathA := writeFile(t, "a.xml", raw)
	pathB := writeFile(t, "b.xml", raw)

	l := newLoader()
	inA, err := l.Load(pathA)
	require.NoError(t, err)
	inB, err := l.Load(pathB)
	require.NoError(t, err)

	assert.Equal(t, inA.Fingerprint(), inB.Fingerprint())
	assert.NotEqual(t, string(raw), string(inA.Content))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips BOM",
			input:    "\uFEFF<?xml version=\"1.0\"?><r/>",
			expected: "<?xml version=\"1.0\"?><r/>",
		},
		{
			name:     "strips control characters",
			input:    "<r>a\x00b\x01c</r>",
			expected: "<r>abc</r>",
		},
		{
			name:     "keeps tab newline cr",
			input:    "<r>\ta\nb\rc</r>",
			expected: "<r>\ta\nb\rc</r>",
		},
		{
			name:     "escapes bare ampersand",
			input:    "<r>A & B</r>",
			expected: "<r>A &amp; B</r>",
		},
		{
			name:     "preserves existing entities",
			input:    "<r>A &amp; B &lt;ok&gt;</r>",
			expected: "<r>A &amp; B &lt;ok&gt;</r>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, loader.Sanitize(tt.input))
		})
	}
}
