package ingestion

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/jonathan/hiring-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types/>`))
	require.NoError(t, err)
	if documentXML != "" {
		w, err = zw.Create(docxBody)
		require.NoError(t, err)
		_, err = w.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p/>
<w:p><w:r><w:t xml:space="preserve">Senior </w:t></w:r><w:r><w:t>Go Engineer</w:t></w:r></w:p>
<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go, PostgreSQL &amp; AWS</w:t></w:r></w:p>
<w:sectPr/>
</w:body>
</w:document>`

func requireValidationError(t *testing.T, err error) *types.ErrValidation {
	t.Helper()
	require.Error(t, err)
	var verr *types.ErrValidation
	require.True(t, errors.As(err, &verr), "expected *types.ErrValidation, got %T", err)
	return verr
}

func TestExtractText_DOCX(t *testing.T) {
	text, err := ExtractText(buildDOCX(t, sampleDocument), MimeDOCX)
	require.NoError(t, err)

	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Senior Go Engineer")
	assert.Contains(t, text, "Go, PostgreSQL & AWS")
	assert.Equal(t, 1, bytes.Count([]byte(text), []byte("Jane Doe")), "empty paragraphs must not duplicate text")
}

func TestExtractText_DOCXWithoutBody(t *testing.T) {
	_, err := ExtractText(buildDOCX(t, ""), MimeDOCX)
	verr := requireValidationError(t, err)
	assert.Equal(t, "file", verr.Field)
	assert.Contains(t, verr.Message, docxBody)
}

func TestExtractText_DOCXNotAnArchive(t *testing.T) {
	_, err := ExtractText([]byte("definitely not a zip"), MimeDOCX)
	verr := requireValidationError(t, err)
	assert.Contains(t, verr.Message, "DOCX")
}

func TestExtractText_HTML(t *testing.T) {
	html := `<html><head><style>body{}</style><script>var x = 1;</script></head>
<body>
<nav>Home | Blog</nav>
<main>
<h1>John Smith</h1>
<p>Platform engineer<br>Berlin</p>
<ul><li>Kubernetes</li><li>Terraform</li></ul>
</main>
<footer>Copyright</footer>
</body></html>`

	text, err := ExtractText([]byte(html), "text/html; charset=utf-8")
	require.NoError(t, err)

	assert.Contains(t, text, "John Smith")
	assert.Contains(t, text, "Platform engineer\nBerlin")
	assert.Contains(t, text, "- Kubernetes")
	assert.Contains(t, text, "- Terraform")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "Home | Blog")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractText_HTMLFallsBackToBody(t *testing.T) {
	text, err := ExtractText([]byte(`<html><body><div>Only body text</div></body></html>`), MimeHTML)
	require.NoError(t, err)
	assert.Equal(t, "Only body text", text)
}

func TestExtractText_PlainText(t *testing.T) {
	text, err := ExtractText([]byte("  Jane   Doe  \r\n\r\n\r\n\r\nGo developer"), MimeText)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nGo developer", text)
}

func TestExtractText_Failures(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
		message  string
	}{
		{name: "empty document", data: nil, mimeType: MimePDF, message: "document is empty"},
		{name: "unsupported type", data: []byte("GIF89a"), mimeType: "image/gif", message: "unsupported document type"},
		{name: "corrupt pdf", data: []byte("%PDF-1.4 garbage"), mimeType: MimePDF, message: "PDF"},
		{name: "whitespace only", data: []byte(" \n\t \n"), mimeType: MimeText, message: "no readable text"},
		{name: "invalid utf8", data: []byte{0xff, 0xfe, 0xfd}, mimeType: MimeText, message: "UTF-8"},
		{name: "html without text", data: []byte(`<html><body><script>x()</script></body></html>`), mimeType: MimeHTML, message: "no readable text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractText(tt.data, tt.mimeType)
			verr := requireValidationError(t, err)
			assert.Empty(t, text)
			assert.Equal(t, "file", verr.Field)
			assert.Contains(t, verr.Message, tt.message)
		})
	}
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		filename string
		declared string
		expected string
	}{
		{"resume.pdf", "application/pdf", MimePDF},
		{"resume.pdf", "application/octet-stream", MimePDF},
		{"resume.DOCX", "", MimeDOCX},
		{"notes.txt", "text/plain; charset=utf-8", MimeText},
		{"page.htm", "", MimeHTML},
		{"photo.jpg", "", "application/octet-stream"},
		{"photo.png", "image/png", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectMimeType(tt.filename, tt.declared))
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported(MimePDF))
	assert.True(t, IsSupported(MimeDOCX))
	assert.True(t, IsSupported("text/plain; charset=utf-8"))
	assert.False(t, IsSupported("image/png"))
	assert.False(t, IsSupported(""))
}

func TestExtractor_DelegatesToExtractText(t *testing.T) {
	text, err := Extractor{}.ExtractText([]byte("Jane Doe"), MimeText)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", text)
}
