package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const directoryIDPrefix = "dir-"

// FileEntry is one file of a flat repository file list
type FileEntry struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

// FileTreeNode is a file or directory of the hierarchical file tree
type FileTreeNode struct {
	ID          string
	Name        string
	Path        string
	IsDirectory bool
	Extension   string
	Children    map[string]*FileTreeNode

	order []string
}

// SortedChildren returns the children in display order: directories first,
// then files, each group in collation order.
func (n *FileTreeNode) SortedChildren() []*FileTreeNode {
	children := make([]*FileTreeNode, 0, len(n.order))
	for _, name := range n.order {
		children = append(children, n.Children[name])
	}
	return children
}

// MarshalJSON writes children as an object whose keys follow display order
func (n *FileTreeNode) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	header := struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Path        string `json:"path"`
		IsDirectory bool   `json:"isDirectory"`
		Extension   string `json:"extension,omitempty"`
	}{n.ID, n.Name, n.Path, n.IsDirectory, n.Extension}

	b, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}

	if !n.IsDirectory {
		return b, nil
	}

	buf.Write(b[:len(b)-1])
	buf.WriteString(`,"children":{`)
	for i, name := range n.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		child, err := n.Children[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(child)
	}
	buf.WriteString("}}")

	return buf.Bytes(), nil
}

// ParseFileList decodes either {"files":[{"path":...}]} or a bare list of
// {"path":...} objects. Entries without an id use their path as id.
func ParseFileList(data []byte) ([]FileEntry, error) {
	list := bytes.TrimSpace(data)

	if len(list) > 0 && list[0] == '{' {
		var doc struct {
			Files json.RawMessage `json:"files"`
		}
		if err := json.Unmarshal(list, &doc); err != nil {
			return nil, &InvalidFileListError{Reason: "malformed document"}
		}
		if len(doc.Files) == 0 {
			return nil, &InvalidFileListError{Reason: `missing "files" list`}
		}
		list = bytes.TrimSpace(doc.Files)
	}

	if len(list) == 0 || list[0] != '[' {
		return nil, &InvalidFileListError{Reason: "files must be a list of objects"}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, &InvalidFileListError{Reason: "files must be a list of objects"}
	}

	entries := make([]FileEntry, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, &InvalidFileListError{Reason: fmt.Sprintf("entry %d is not an object", i)}
		}

		var p string
		raw, ok := item["path"]
		if !ok || json.Unmarshal(raw, &p) != nil || strings.TrimSpace(p) == "" {
			return nil, &InvalidFileListError{Reason: fmt.Sprintf("entry %d has no path", i)}
		}

		entry := FileEntry{
			ID:        scalarString(item["id"]),
			Path:      p,
			Extension: scalarString(item["extension"]),
		}
		if entry.ID == "" {
			entry.ID = p
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// scalarString renders a JSON string or number as text
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// BuildFileTree folds flat paths into a directory tree rooted at "".
// The result does not depend on input order: a path used both as a file and
// as a directory prefix becomes a directory, and among duplicate file paths
// the entry with the smallest id is kept.
func BuildFileTree(entries []FileEntry) *FileTreeNode {
	root := newDirectoryNode("", "")

	for _, e := range entries {
		segments := splitPath(e.Path)
		if len(segments) == 0 {
			continue
		}

		node := root
		for i, segment := range segments[:len(segments)-1] {
			cumulative := strings.Join(segments[:i+1], "/")

			child, ok := node.Children[segment]
			switch {
			case !ok:
				child = newDirectoryNode(segment, cumulative)
				node.Children[segment] = child
			case !child.IsDirectory:
				*child = *newDirectoryNode(segment, cumulative)
			}
			node = child
		}

		name := segments[len(segments)-1]
		existing, ok := node.Children[name]
		if ok && (existing.IsDirectory || existing.ID <= e.ID) {
			continue
		}

		ext := e.Extension
		if ext == "" {
			ext = strings.TrimPrefix(path.Ext(name), ".")
		}

		node.Children[name] = &FileTreeNode{
			ID:        e.ID,
			Name:      name,
			Path:      strings.Join(segments, "/"),
			Extension: ext,
		}
	}

	sortTree(root, collate.New(language.English))

	return root
}

func newDirectoryNode(name, cumulativePath string) *FileTreeNode {
	return &FileTreeNode{
		ID:          directoryIDPrefix + cumulativePath,
		Name:        name,
		Path:        cumulativePath,
		IsDirectory: true,
		Children:    make(map[string]*FileTreeNode),
	}
}

func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// sortTree orders every directory's children. Collators are not safe for
// concurrent use, so each build owns its own.
func sortTree(n *FileTreeNode, c *collate.Collator) {
	if !n.IsDirectory {
		return
	}

	n.order = make([]string, 0, len(n.Children))
	for name := range n.Children {
		n.order = append(n.order, name)
	}

	sort.Slice(n.order, func(i, j int) bool {
		a, b := n.Children[n.order[i]], n.Children[n.order[j]]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		if cmp := c.CompareString(a.Name, b.Name); cmp != 0 {
			return cmp < 0
		}
		return a.Name < b.Name
	})

	for _, child := range n.Children {
		sortTree(child, c)
	}
}
