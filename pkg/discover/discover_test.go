package discover_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/graft/pkg/discover"
)

// buildTree creates a small mixed-language project and returns its root.
func buildTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	files := map[string]string{
		"README.md":                "# demo\n",
		"app.py":                   "import os\nprint('app')\n",
		"main.go":                  "package main\n\nfunc main() {}\n",
		"pkg/store.py":             "def save(x):\n    return x\n",
		"pkg/deep/util.py":         "def util():\n    return 1\n",
		"node_modules/lib/x.py":    "print('vendored')\n",
		".git/hooks/pre-commit.py": "print('hook')\n",
		"__pycache__/app.py":       "print('cache')\n",
		"data/blob.py":             "\x00\x01\x02binary",
	}

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))

	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)

		out = append(out, filepath.ToSlash(r))
	}

	return out
}

func TestExpand_DirectoryDefaults(t *testing.T) {
	t.Parallel()

	root := buildTree(t)

	paths, err := discover.NewWalker(discover.Options{}).Expand(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"README.md",
		"app.py",
		"main.go",
		"pkg/deep/util.py",
		"pkg/store.py",
	}, rel(t, root, paths))
}

func TestExpand_IncludeGlobs(t *testing.T) {
	t.Parallel()

	root := buildTree(t)

	w := discover.NewWalker(discover.Options{Include: []string{"*.py"}})

	paths, err := w.Expand(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py", "pkg/deep/util.py", "pkg/store.py"}, rel(t, root, paths))

	w = discover.NewWalker(discover.Options{Include: []string{"pkg/*.py"}})

	paths, err = w.Expand(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/store.py"}, rel(t, root, paths))
}

func TestExpand_LanguageFilter(t *testing.T) {
	t.Parallel()

	root := buildTree(t)

	w := discover.NewWalker(discover.Options{Languages: []string{"go"}})

	paths, err := w.Expand(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, rel(t, root, paths))
}

func TestExpand_CustomExcludes(t *testing.T) {
	t.Parallel()

	root := buildTree(t)

	w := discover.NewWalker(discover.Options{
		Include:     []string{"*.py"},
		ExcludeDirs: []string{"pkg", ".git", "__pycache__"},
	})

	paths, err := w.Expand(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py", "node_modules/lib/x.py"}, rel(t, root, paths))
}

func TestExpand_PassesThroughFilesAndMissing(t *testing.T) {
	t.Parallel()

	root := buildTree(t)
	blob := filepath.Join(root, "data", "blob.py")
	missing := filepath.Join(root, "nope.py")
	readme := filepath.Join(root, "README.md")

	w := discover.NewWalker(discover.Options{Include: []string{"*.py"}})

	paths, err := w.Expand(context.Background(), []string{missing, readme, blob, readme})
	require.NoError(t, err)
	assert.Equal(t, []string{missing, readme, blob, readme}, paths)
}

func TestExpand_CanceledContext(t *testing.T) {
	t.Parallel()

	root := buildTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := discover.NewWalker(discover.Options{}).Expand(ctx, []string{root})
	require.ErrorIs(t, err, discover.ErrWalk)
	require.ErrorIs(t, err, context.Canceled)
}
