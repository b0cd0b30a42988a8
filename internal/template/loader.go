package template

import (
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var (
	reTag        = regexp.MustCompile(`(?s)\{\{.*?\}\}|\{%.*?%\}`)
	reLoopVar    = regexp.MustCompile(`\bloop\.(index0|index|revindex0|revindex|first|last)\b`)
	reFilterCall = regexp.MustCompile(`\|\s*(\w+)\(\s*('[^']*'|"[^"]*"|[\w.\-]+)?\s*\)`)
	reItemsCall  = regexp.MustCompile(`\.items\(\)(\s*-?%\})$`)
)

var loopFields = map[string]string{
	"index":     "Counter",
	"index0":    "Counter0",
	"revindex":  "Revcounter",
	"revindex0": "Revcounter0",
	"first":     "First",
	"last":      "Last",
}

// aferoLoader resolves template names against a single root, the way a
// Jinja FileSystemLoader does: includes and extends are relative to the root,
// not to the including template. Resolved names are absolute within the
// root, so resolving twice is a no-op.
type aferoLoader struct {
	fs afero.Fs
}

func newLoader(fsys afero.Fs, root string) *aferoLoader {
	return &aferoLoader{fs: afero.NewBasePathFs(fsys, root)}
}

func (l *aferoLoader) Abs(_, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(string(filepath.Separator), filepath.FromSlash(name))
}

// Get reads a template and applies translateJinja. One trailing line break
// is dropped from every template, included ones too.
func (l *aferoLoader) Get(path string) (io.Reader, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, err
	}
	text := trimTrailingNewline(translateJinja(string(data)))
	return bytes.NewReader([]byte(text)), nil
}

// translateJinja rewrites the Jinja spellings pongo2 does not accept inside
// {{ }} and {% %} blocks: loop.* variables become forloop.* fields, filter
// calls with at most one argument become name:arg, and a trailing .items()
// in a for tag becomes pongo2's sorted keyword so dict iteration is
// deterministic. Text outside the blocks is left alone.
func translateJinja(src string) string {
	return reTag.ReplaceAllStringFunc(src, func(block string) string {
		block = reLoopVar.ReplaceAllStringFunc(block, func(m string) string {
			return "forloop." + loopFields[strings.TrimPrefix(m, "loop.")]
		})
		block = reFilterCall.ReplaceAllStringFunc(block, func(m string) string {
			sub := reFilterCall.FindStringSubmatch(m)
			if sub[2] == "" {
				return "|" + sub[1]
			}
			return "|" + sub[1] + ":" + sub[2]
		})
		if strings.HasPrefix(block, "{%") {
			block = reItemsCall.ReplaceAllString(block, " sorted$1")
		}
		return block
	})
}

func trimTrailingNewline(s string) string {
	switch {
	case strings.HasSuffix(s, "\r\n"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "\n"), strings.HasSuffix(s, "\r"):
		return s[:len(s)-1]
	}
	return s
}
