// This package handles the logic for extracting book metadata from file
// names. Library files are named in a handful of loose conventions
// ("[author] title.ext", "title @ author.ext", ...) and the decomposer
// normalizes all of them into a single structured form.

package bookmeta

import (
	"regexp"
	"strings"
)

// BookMeta is the structured result of decomposing a filename.
// Author and Title may be empty when the matched pattern could not
// recover them; Extension is empty only when no pattern matched at all.
type BookMeta struct {
	Author    string `json:"author"`
	Title     string `json:"title"`
	Extension string `json:"extension"`
}

// SupportedExtensions is the allow-list of file types the library tracks.
// Anything else is ignored by the scanner and rejected by Decompose.
var SupportedExtensions = []string{
	"txt", "epub", "zip", "pdf", "html", "hwp", "rtf", "doc", "docx",
	"jpg", "jpeg", "png", "gif", "webp", "bmp", "tiff", "svg",
}

// extGroup is the regexp alternation for the extension capture group.
var extGroup = "(?P<extension>" + strings.Join(SupportedExtensions, "|") + ")"

// The ordered pattern list. Matching is first-match-wins, so the order
// here is the priority order. Each pattern is anchored at both ends and
// tolerant of surrounding whitespace; captures are lazy so separators
// bind as early as possible.
var patterns = []*regexp.Regexp{
	// [ author ] title . ext
	regexp.MustCompile(`^\s*\[(?P<author>.*?)]\s*(?P<title>.*?)\s*\.` + extGroup + `\s*$`),
	// ( author ) title . ext
	regexp.MustCompile(`^\s*\((?P<author>.*?)\)\s*(?P<title>.*?)\s*\.` + extGroup + `\s*$`),
	// title [ author ] . ext
	regexp.MustCompile(`^\s*(?P<title>.*?)\s*\[\s*(?P<author>.*?)\s*]\s*\.` + extGroup + `\s*$`),
	// title @ author . ext
	regexp.MustCompile(`^\s*(?P<title>.*?)\s*@\s*(?P<author>.*?)\s*\.` + extGroup + `\s*$`),
	// author - title . ext  or  author _ title . ext
	regexp.MustCompile(`^\s*(?P<author>.*?)\s*[_-]\s*(?P<title>.*?)\s*\.` + extGroup + `\s*$`),
	// title ( author ) . ext
	regexp.MustCompile(`^\s*(?P<title>.*?)\s*\(\s*(?P<author>.*?)\s*\)\s*\.` + extGroup + `\s*$`),
	// catch-all: everything up to the extension is the title
	regexp.MustCompile(`^(?P<title>.+)\.` + extGroup + `\s*$`),
}

// Decompose extracts author, title and extension from a raw filename.
// It never fails: a filename that matches no pattern (including one whose
// extension is not on the allow-list) yields a zero-value BookMeta.
func Decompose(fileName string) BookMeta {
	for _, p := range patterns {
		m := p.FindStringSubmatch(fileName)
		if m == nil {
			continue
		}
		var meta BookMeta
		for i, name := range p.SubexpNames() {
			switch name {
			case "author":
				meta.Author = strings.TrimSpace(m[i])
			case "title":
				meta.Title = strings.TrimSpace(m[i])
			case "extension":
				meta.Extension = m[i]
			}
		}
		return meta
	}
	return BookMeta{}
}

// Synthesize builds the canonical filename back from metadata. It is the
// inverse transform used when the user edits author/title fields and the
// system proposes a new name.
func Synthesize(meta BookMeta) string {
	name := meta.Title + "." + meta.Extension
	if meta.Author != "" {
		name = "[" + meta.Author + "] " + name
	}
	return name
}

// IsSupportedExtension reports whether ext (without the leading dot) is
// on the allow-list. The comparison is case-sensitive, matching the
// pattern set above.
func IsSupportedExtension(ext string) bool {
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
