package manifest

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParseProjectXML collects the value of every Include attribute under
// any element of the document. Relative values are resolved against
// dir, with backslash separators turned into native ones; values ending
// in a stray quote are right-trimmed. A malformed
// document yields the attributes seen before the error.
func ParseProjectXML(r io.Reader, dir string) []string {
	var files []string
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return files
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Local != "Include" {
				continue
			}
			v := strings.TrimRight(attr.Value, `"`)
			if v == "" {
				continue
			}
			if !isRawAbs(v) {
				v = filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(v, `\`, "/")))
			}
			files = append(files, v)
		}
	}
}

// ProjectFiles scans the project file at path, plus its .filters
// companion when one exists. The original tooling kept the file list in
// the .filters document; newer projects carry the Include attributes
// themselves.
func ProjectFiles(path string) []string {
	dir := filepath.Dir(path)
	var files []string
	for _, p := range []string{path, path + ".filters"} {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		files = append(files, ParseProjectXML(f, dir)...)
		f.Close()
	}
	return files
}

// isRawAbs reports whether the raw manifest value is already absolute,
// accepting both native absolute paths and DOS drive forms.
func isRawAbs(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	if len(p) >= 2 && p[1] == ':' {
		c := p[0]
		return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	}
	return false
}
