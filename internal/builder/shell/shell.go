// Package shell implements the builder for the application chrome: the outer
// shell document that hosts the content runtime.
package shell

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebundler/internal/builder"
	"git.home.luguber.info/inful/sitebundler/internal/logfields"
)

// HeadSnippetFile is the optional user-supplied HTML fragment injected into
// the shell document's head.
const HeadSnippetFile = "shell-head.html"

// Builder produces the application chrome.
type Builder struct {
	renderer string
}

// New creates a shell builder for the given renderer identity.
func New(renderer string) *Builder {
	return &Builder{renderer: renderer}
}

// Name implements builder.Builder.
func (b *Builder) Name() string { return "shell" }

// CorePresets implements builder.Builder.
func (b *Builder) CorePresets() []string { return []string{"core/base"} }

// OverridePresets implements builder.Builder.
func (b *Builder) OverridePresets() []string { return nil }

// Build writes the shell document into the output directory. The optional
// head snippet from the project directory is validated and injected; an
// invalid snippet fails the build since the shell is fatal-on-error.
func (b *Builder) Build(ctx context.Context, bc builder.BuildContext) (*builder.Stats, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head, err := loadHeadSnippet(bc.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("shell head snippet: %w", err)
	}

	doc := renderShellDocument(bc.Title, b.renderer, head)

	if err := os.MkdirAll(bc.OutputDir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	dest := filepath.Join(bc.OutputDir, "index.html")
	if err := os.WriteFile(dest, []byte(doc), 0644); err != nil {
		return nil, fmt.Errorf("write shell document: %w", err)
	}

	slog.Debug("Shell document written", logfields.Path(dest))
	return &builder.Stats{
		Builder:  b.Name(),
		Files:    1,
		Bytes:    int64(len(doc)),
		Duration: time.Since(start),
	}, nil
}

// renderShellDocument assembles the chrome document. The iframe hosts the
// content runtime produced by the preview builder.
func renderShellDocument(title, renderer, headExtra string) string {
	if title == "" {
		title = "SiteBundler"
	}
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString(fmt.Sprintf("<meta name=\"generator\" content=\"sitebundler/%s\">\n", renderer))
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title)))
	if headExtra != "" {
		sb.WriteString(headExtra)
		if !strings.HasSuffix(headExtra, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString("<div id=\"root\" class=\"shell\">\n")
	sb.WriteString("<iframe id=\"content-frame\" src=\"iframe.html\" title=\"content\"></iframe>\n")
	sb.WriteString("</div>\n</body>\n</html>\n")
	return sb.String()
}
