package render

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// AbsolutizePaths rewrites relative img[src] and a[href] values of a full
// HTML page to file:// URLs under root. Chrome loads the page from a
// temporary file, so root-relative references would not resolve otherwise.
// Paths escaping root, URLs, anchors and absolute paths are left alone.
func AbsolutizePaths(page, root string) (string, error) {
	if root == "" {
		return page, nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", err
	}
	rewriteNode(doc, absRoot)

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, root string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "img":
			rewriteAttr(n, "src", root)
		case "a":
			rewriteAttr(n, "href", root)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, root)
	}
}

func rewriteAttr(n *html.Node, key, root string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}
		// Keep any fragment on links to local files.
		p, frag, _ := strings.Cut(attr.Val, "#")
		abs := filepath.Join(root, filepath.FromSlash(p))
		if !isPathUnderDir(abs, root) {
			continue
		}
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), Fragment: frag}
		n.Attr[i].Val = u.String()
	}
}

// isRelativePath reports whether ref is a relative filesystem path.
func isRelativePath(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	for _, scheme := range []string{"http:", "https:", "file:", "data:", "mailto:"} {
		if strings.HasPrefix(ref, scheme) {
			return false
		}
	}
	return !filepath.IsAbs(ref) && !strings.HasPrefix(ref, "/")
}

// isPathUnderDir reports whether abs is dir or below it.
func isPathUnderDir(abs, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(abs)+string(filepath.Separator), cleanDir)
}
