package ingestion

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/hiring-pipeline/internal/types"
	"github.com/ledongthuc/pdf"
)

// Supported document MIME types.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeHTML = "text/html"
	MimeText = "text/plain"
)

// docxBody is the part of a DOCX archive holding the main document text.
const docxBody = "word/document.xml"

var extensionTypes = map[string]string{
	".pdf":  MimePDF,
	".docx": MimeDOCX,
	".html": MimeHTML,
	".htm":  MimeHTML,
	".txt":  MimeText,
	".md":   MimeText,
}

// selfClosingTag matches empty WordprocessingML elements such as <w:br/>.
var selfClosingTag = regexp.MustCompile(`<([a-zA-Z]+:[a-zA-Z]+)([^<>]*?)/>`)

// Extractor extracts plain text from uploaded documents.
type Extractor struct{}

// ExtractText implements the text extraction used when applications are submitted.
func (Extractor) ExtractText(data []byte, mimeType string) (string, error) {
	return ExtractText(data, mimeType)
}

// DetectMimeType returns the media type of an upload, preferring the declared
// content type and falling back to the filename extension.
func DetectMimeType(filename, declared string) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		if mediaType != "application/octet-stream" && mediaType != "" {
			return mediaType
		}
	}
	if mediaType, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mediaType
	}
	return "application/octet-stream"
}

// IsSupported reports whether ExtractText understands the media type.
func IsSupported(mimeType string) bool {
	switch normalizeMime(mimeType) {
	case MimePDF, MimeDOCX, MimeHTML, MimeText:
		return true
	}
	return false
}

// ExtractText returns the cleaned text content of a PDF, DOCX, HTML or plain
// text document. Unsupported types, unreadable files and documents without
// any text fail with a validation error.
func ExtractText(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", types.Invalid("file", "document is empty")
	}

	var (
		text string
		err  error
	)
	switch normalizeMime(mimeType) {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	case MimeHTML:
		text, err = extractHTML(data)
	case MimeText:
		if !utf8.Valid(data) {
			return "", types.Invalid("file", "text document is not valid UTF-8")
		}
		text = string(data)
	default:
		return "", types.Invalid("file", fmt.Sprintf("unsupported document type %q", mimeType))
	}
	if err != nil {
		return "", types.Invalid("file", err.Error())
	}

	text = strings.TrimSpace(CleanText(text))
	if text == "" {
		return "", types.Invalid("file", "no readable text found in document")
	}
	return text, nil
}

func normalizeMime(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mediaType
}

func extractPDF(data []byte) (text string, err error) {
	// the PDF reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	var body []byte
	for _, f := range archive.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", docxBody, err)
		}
		body, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", docxBody, err)
		}
		break
	}
	if body == nil {
		return "", fmt.Errorf("DOCX archive has no %s", docxBody)
	}

	// the HTML parser does not honor XML empty-element syntax
	expanded := selfClosingTag.ReplaceAll(body, []byte("<$1$2></$1>"))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(expanded))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", docxBody, err)
	}

	var paragraphs []string
	elementsNamed(doc.Selection, "w:p").Each(func(_ int, p *goquery.Selection) {
		var line strings.Builder
		p.Find("*").Each(func(_ int, s *goquery.Selection) {
			switch goquery.NodeName(s) {
			case "w:t":
				line.WriteString(s.Text())
			case "w:tab":
				line.WriteString("\t")
			case "w:br":
				line.WriteString("\n")
			}
		})
		paragraphs = append(paragraphs, line.String())
	})
	return strings.Join(paragraphs, "\n"), nil
}

func elementsNamed(root *goquery.Selection, name string) *goquery.Selection {
	return root.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == name
	})
}

// contentSelectors locate the main body of an HTML resume or portfolio page.
var contentSelectors = []string{
	"main",
	"article",
	".resume",
	"#resume",
	".content",
	"#content",
}

func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, script, style, noscript, iframe, .ad, .cookie-banner, .popup").Remove()

	var content *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	content.Find("br").ReplaceWithHtml("\n")
	content.Find("li").PrependHtml("- ")
	content.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").AppendHtml("\n")
	return content.Text(), nil
}
