// This file extracts summary text from book files. Each supported file
// type has its own extractor; the result is normalized and truncated so
// that list views and search have a consistent excerpt to work with.

package library

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gen2brain/go-fitz"
	"github.com/mholt/archives"
	"golang.org/x/net/html/charset"
)

// summarySize is the maximum number of characters kept from a file.
const summarySize = 4096

// readLimit caps how much raw data is read from any single source file
// or archive entry during extraction.
const readLimit = 512 * 1024

var (
	nonWordRe     = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	rtfControlRe  = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?|[{}]|\\'[0-9a-fA-F]{2}`)
	rootfileRe    = regexp.MustCompile(`full-path="([^"]+)"`)
	manifestRefRe = regexp.MustCompile(`href="([^"]+\.x?html?)"`)
)

// ExtractSummary reads up to summarySize characters of text from the
// given file. File types that carry no extractable text (images, legacy
// binary formats) yield an empty summary. Extraction errors are
// swallowed so a single unreadable file cannot abort a library scan.
func ExtractSummary(filePath, fileType string) string {
	var text string
	var err error

	switch fileType {
	case "txt":
		text, err = extractTXT(filePath)
	case "html":
		text, err = extractHTML(filePath)
	case "epub":
		text, err = extractEPUB(filePath)
	case "pdf":
		text, err = extractPDF(filePath)
	case "rtf":
		text, err = extractRTF(filePath)
	case "docx":
		text, err = extractDOCX(filePath)
	default:
		return ""
	}
	if err != nil {
		return ""
	}
	return normalizeText(text)
}

// normalizeText collapses runs of punctuation and whitespace into single
// spaces and truncates to summarySize.
func normalizeText(text string) string {
	text = nonWordRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > summarySize {
		runes = runes[:summarySize]
	}
	return string(runes)
}

// extractTXT reads a plain text file, sniffing its encoding so that
// legacy codepage files decode cleanly to UTF-8.
func extractTXT(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, readLimit))
	if err != nil {
		return "", err
	}

	enc, _, _ := charset.DetermineEncoding(data, "text/plain")
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(strings.NewReader(string(data))))
	if err != nil {
		return string(data), nil
	}
	return strings.TrimPrefix(string(decoded), "\uFEFF"), nil
}

// extractHTML parses an HTML file and returns its visible text.
func extractHTML(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(f, readLimit))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return doc.Text(), nil
}

// extractEPUB opens the EPUB container, resolves the OPF package file
// named by META-INF/container.xml and walks the manifest's XHTML
// chapters in order until enough text is collected.
func extractEPUB(filePath string) (string, error) {
	fsys, err := archives.FileSystem(context.Background(), filePath, nil)
	if err != nil {
		return "", err
	}

	container, err := fs.ReadFile(fsys, "META-INF/container.xml")
	if err != nil {
		return "", err
	}
	m := rootfileRe.FindSubmatch(container)
	if m == nil {
		return "", fmt.Errorf("no rootfile in container.xml")
	}
	opfPath := string(m[1])

	opf, err := fs.ReadFile(fsys, opfPath)
	if err != nil {
		return "", err
	}
	baseDir := path.Dir(opfPath)

	var sb strings.Builder
	for _, ref := range manifestRefRe.FindAllSubmatch(opf, -1) {
		href := string(ref[1])
		chapterPath := path.Clean(path.Join(baseDir, href))
		data, err := fs.ReadFile(fsys, chapterPath)
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
		if err != nil {
			continue
		}
		sb.WriteString(doc.Text())
		sb.WriteString(" ")
		if sb.Len() >= summarySize*4 {
			break
		}
	}
	return sb.String(), nil
}

// extractPDF renders page text with MuPDF until enough is collected.
func extractPDF(filePath string) (string, error) {
	doc, err := fitz.New(filePath)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString(" ")
		if sb.Len() >= summarySize*4 {
			break
		}
	}
	return sb.String(), nil
}

// extractRTF strips RTF control words and group braces, leaving the
// document's plain text runs.
func extractRTF(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, readLimit))
	if err != nil {
		return "", err
	}
	return rtfControlRe.ReplaceAllString(string(data), " "), nil
}

// extractDOCX reads word/document.xml from the OOXML zip container and
// strips the markup down to character data.
func extractDOCX(filePath string) (string, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(io.LimitReader(rc, readLimit))
		rc.Close()
		if err != nil {
			return "", err
		}
		return stripXMLTags(string(data)), nil
	}
	return "", fmt.Errorf("no document.xml in %s", filePath)
}

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

func stripXMLTags(s string) string {
	return xmlTagRe.ReplaceAllString(s, " ")
}
