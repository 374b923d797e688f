package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(paths ...string) []FileEntry {
	out := make([]FileEntry, 0, len(paths))
	for _, p := range paths {
		out = append(out, FileEntry{ID: p, Path: p})
	}
	return out
}

func childNames(n *FileTreeNode) []string {
	var names []string
	for _, c := range n.SortedChildren() {
		names = append(names, c.Name)
	}
	return names
}

func TestBuildFileTree(t *testing.T) {
	root := BuildFileTree(entries("a/b.ts", "a/c.ts", "d.ts"))

	assert.True(t, root.IsDirectory)
	assert.Equal(t, "", root.Path)
	assert.Equal(t, []string{"a", "d.ts"}, childNames(root))

	dir := root.Children["a"]
	require.NotNil(t, dir)
	assert.True(t, dir.IsDirectory)
	assert.Equal(t, "dir-a", dir.ID)
	assert.Equal(t, "a", dir.Path)
	assert.Equal(t, []string{"b.ts", "c.ts"}, childNames(dir))

	file := root.Children["d.ts"]
	assert.False(t, file.IsDirectory)
	assert.Equal(t, "ts", file.Extension)
	assert.Equal(t, "d.ts", file.ID)
}

func TestBuildFileTreeDirectoriesFirst(t *testing.T) {
	root := BuildFileTree(entries("zeta.md", "alpha.md", "src/main.go", "Beta/readme", "docs/x"))
	assert.Equal(t, []string{"Beta", "docs", "src", "alpha.md", "zeta.md"}, childNames(root))
}

func TestBuildFileTreeNestedDirectoryIDs(t *testing.T) {
	root := BuildFileTree(entries("src/pkg/util/strings.go", "src/pkg/main.go"))

	util := root.Children["src"].Children["pkg"].Children["util"]
	require.NotNil(t, util)
	assert.Equal(t, "dir-src/pkg/util", util.ID)
	assert.Equal(t, "src/pkg/util", util.Path)
}

func TestBuildFileTreeOrderIndependent(t *testing.T) {
	forward := BuildFileTree([]FileEntry{
		{ID: "1", Path: "a"},
		{ID: "2", Path: "a/b.ts"},
		{ID: "9", Path: "c.ts"},
		{ID: "3", Path: "c.ts"},
	})
	backward := BuildFileTree([]FileEntry{
		{ID: "3", Path: "c.ts"},
		{ID: "9", Path: "c.ts"},
		{ID: "2", Path: "a/b.ts"},
		{ID: "1", Path: "a"},
	})

	f, err := json.Marshal(forward)
	require.NoError(t, err)
	b, err := json.Marshal(backward)
	require.NoError(t, err)
	assert.JSONEq(t, string(f), string(b))
	assert.Equal(t, string(f), string(b))

	assert.True(t, forward.Children["a"].IsDirectory)
	assert.Equal(t, "3", forward.Children["c.ts"].ID)
}

func TestBuildFileTreeEmpty(t *testing.T) {
	root := BuildFileTree(nil)
	assert.True(t, root.IsDirectory)
	assert.Empty(t, root.Children)
}

func TestFileTreeJSONKeepsChildOrder(t *testing.T) {
	root := BuildFileTree(entries("d.ts", "a/b.ts"))

	b, err := json.Marshal(root)
	require.NoError(t, err)

	assert.Equal(t,
		`{"id":"dir-","name":"","path":"","isDirectory":true,"children":{`+
			`"a":{"id":"dir-a","name":"a","path":"a","isDirectory":true,"children":{`+
			`"b.ts":{"id":"a/b.ts","name":"b.ts","path":"a/b.ts","isDirectory":false,"extension":"ts"}}},`+
			`"d.ts":{"id":"d.ts","name":"d.ts","path":"d.ts","isDirectory":false,"extension":"ts"}}}`,
		string(b))
}

func TestParseFileList(t *testing.T) {
	t.Run("wrapped", func(t *testing.T) {
		list, err := ParseFileList([]byte(`{"files":[{"path":"a/b.ts","id":17},{"path":"README","extension":"md"}]}`))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, FileEntry{ID: "17", Path: "a/b.ts"}, list[0])
		assert.Equal(t, FileEntry{ID: "README", Path: "README", Extension: "md"}, list[1])
	})

	t.Run("bare list", func(t *testing.T) {
		list, err := ParseFileList([]byte(`[{"path":"x.go"}]`))
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	invalid := map[string]string{
		"not json":         `nope`,
		"files not a list": `{"files":"a/b.ts"}`,
		"missing files":    `{"paths":[]}`,
		"string items":     `{"files":["a/b.ts"]}`,
		"missing path":     `{"files":[{"id":"1"}]}`,
		"empty path":       `[{"path":""}]`,
		"null item":        `[null]`,
		"numeric path":     `[{"path":12}]`,
		"null files":       `{"files":null}`,
	}
	for name, payload := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFileList([]byte(payload))
			assert.ErrorIs(t, err, ErrInvalidFileList)
		})
	}
}
