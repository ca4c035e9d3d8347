// Package preview implements the builder for the content runtime: the
// document and script bundle loaded inside the shell's content frame.
package preview

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

// Builder produces the content runtime bundle.
type Builder struct {
	renderer string
}

// New creates a preview builder for the given renderer identity.
func New(renderer string) *Builder {
	return &Builder{renderer: renderer}
}

// Name implements builder.Builder.
func (b *Builder) Name() string { return "preview" }

// CorePresets implements builder.Builder.
func (b *Builder) CorePresets() []string {
	if b.renderer == "" {
		return nil
	}
	return []string{"renderer/" + b.renderer}
}

// OverridePresets implements builder.Builder.
func (b *Builder) OverridePresets() []string { return nil }

// Build writes the content runtime into the output directory: the frame
// document plus the runtime script that loads entries from the content index.
func (b *Builder) Build(ctx context.Context, bc builder.BuildContext) (*builder.Stats, error) {
	start := time.Now()

	var total int64
	files := 0
	write := func(name, content string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest := filepath.Join(bc.OutputDir, name)
		if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
			return fmt.Errorf("create runtime directory: %w", err)
		}
		if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		total += int64(len(content))
		files++
		slog.Debug("Runtime file written", logfields.Path(dest))
		return nil
	}

	if err := write("iframe.html", renderFrameDocument(bc.Title)); err != nil {
		return nil, err
	}
	if err := write(filepath.Join("sb", "runtime.js"), renderRuntimeScript(b.renderer, bc.Stories)); err != nil {
		return nil, err
	}

	return &builder.Stats{
		Builder:  b.Name(),
		Files:    files,
		Bytes:    total,
		Duration: time.Since(start),
	}, nil
}

// renderFrameDocument produces the document hosted by the shell's frame.
func renderFrameDocument(title string) string {
	if title == "" {
		title = "SiteBundler"
	}
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s: content</title>\n", html.EscapeString(title)))
	sb.WriteString("<script type=\"module\" src=\"sb/runtime.js\"></script>\n")
	sb.WriteString("</head>\n<body>\n<main id=\"content-root\"></main>\n</body>\n</html>\n")
	return sb.String()
}

// renderRuntimeScript produces the bootstrap that fetches index.json and
// renders the selected entry.
func renderRuntimeScript(renderer string, stories []string) string {
	var sb strings.Builder
	sb.WriteString("// sitebundler content runtime\n")
	sb.WriteString(fmt.Sprintf("const renderer = %q;\n", renderer))
	sb.WriteString(fmt.Sprintf("const sourceGlobs = %d;\n", len(stories)))
	sb.WriteString("const index = await (await fetch(\"index.json\")).json();\n")
	sb.WriteString("const root = document.getElementById(\"content-root\");\n")
	sb.WriteString("const id = new URLSearchParams(location.search).get(\"id\");\n")
	sb.WriteString("const entry = index.entries?.[id] ?? Object.values(index.entries ?? {})[0];\n")
	sb.WriteString("if (entry) { root.innerHTML = `<h1>${entry.title}</h1>`; }\n")
	return sb.String()
}
