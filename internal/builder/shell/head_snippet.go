package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// loadHeadSnippet reads and validates the optional shell-head.html fragment.
// A missing file yields an empty snippet. The fragment is parsed in head
// context and re-rendered, which normalizes malformed markup and strips
// anything that cannot legally appear in a document head.
func loadHeadSnippet(configDir string) (string, error) {
	if configDir == "" {
		return "", nil
	}
	path := filepath.Join(configDir, HeadSnippetFile)
	// #nosec G304 - path is rooted in the project configuration directory
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return sanitizeHeadFragment(string(data))
}

// sanitizeHeadFragment parses an HTML fragment as head content and renders
// the surviving nodes back to markup.
func sanitizeHeadFragment(fragment string) (string, error) {
	headCtx := &html.Node{
		Type:     html.ElementNode,
		Data:     "head",
		DataAtom: atom.Head,
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), headCtx)
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}

	var sb strings.Builder
	for _, n := range nodes {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		if err := html.Render(&sb, n); err != nil {
			return "", fmt.Errorf("render fragment: %w", err)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
