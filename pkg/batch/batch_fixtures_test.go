package batch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/graft/pkg/patch"
)

const (
	checkMarker = "# graft:check"

	saveSource = "import os\n\ndef f(x):\n    save(x)\n    return x\n"

	savePatched = "import os\nfrom checks import check\n\ndef f(x):\n    save(x)\n" +
		"    check(x)  # graft:check\n    return x\n"

	plainSource = "import os\n\ndef g(y):\n    return y\n"
)

func checkSpec() patch.Spec {
	return patch.Spec{
		Name:            "check-on-save",
		ImportAnchor:    `(?m)^import os$`,
		ImportInsertion: "from checks import check\n",
		Anchors: []string{
			`(?m)(?P<pre>^(?P<indent>[ \t]*)save\((?P<var>\w+)\)\n)(?P<post>[ \t]*return \w+)`,
		},
		Template: "${pre}${indent}check(${var})  " + checkMarker + "\n${post}",
		Marker:   checkMarker,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}
