package advisory

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed playbook.md
var playbookSource []byte

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// PlaybookMarkdown returns the static Give-Get playbook source.
func PlaybookMarkdown() string {
	return string(playbookSource)
}

// PlaybookHTML renders the Give-Get playbook for embedding in pages and reports.
func PlaybookHTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(playbookSource, &buf); err != nil {
		return "", fmt.Errorf("render playbook: %w", err)
	}
	// The source is embedded in the binary, not user supplied.
	return template.HTML(buf.String()), nil
}
