package patch_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/graft/pkg/patch"
)

func TestApply_WrapsSaveThenReturn(t *testing.T) {
	t.Parallel()

	out, changed, err := patch.Apply(savedSource, validateSpec())
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, patchedSource, out)
	assert.Equal(t, 1, strings.Count(out, validateMarker))
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	spec := validateSpec()

	once, changed, err := patch.Apply(savedSource, spec)
	require.NoError(t, err)
	require.True(t, changed)

	twice, changed, err := patch.Apply(once, spec)
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestApply_NoAnchorLeavesContentUntouched(t *testing.T) {
	t.Parallel()

	// The import anchor matches; the block anchors do not.
	content := "import os\n\ndef noop():\n    return None\n"

	out, err := patch.ApplyDetailed(content, validateSpec())
	require.NoError(t, err)

	assert.False(t, out.Changed)
	assert.False(t, out.ImportInserted)
	assert.Zero(t, out.BlocksInserted)
	assert.Equal(t, -1, out.Pattern)
	assert.Equal(t, content, out.Content)

	text, changed, err := patch.Apply(content, validateSpec())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, content, text)
}

func TestApply_MissingImportAnchorStillWrapsBlock(t *testing.T) {
	t.Parallel()

	content := strings.Replace(savedSource, "import os\n", "import json\n", 1)

	out, changed, err := patch.Apply(content, validateSpec())
	require.NoError(t, err)

	assert.True(t, changed)
	assert.NotContains(t, out, "from validators import validate")
	assert.Contains(t, out, validateMarker)
}

func TestApply_FirstMatchWins(t *testing.T) {
	t.Parallel()

	content := `def a(path):
    write(path)
    return path

def b(path):
    log("saved to: " + path)
    return path
`

	t.Run("specific first", func(t *testing.T) {
		t.Parallel()

		out, err := patch.ApplyDetailed(content, validateSpec())
		require.NoError(t, err)

		assert.Equal(t, 0, out.Pattern)
		assert.Contains(t, out.Content, "    write(path)\n    return path\n")
		assert.Contains(t, out.Content, "    log(\"saved to: \" + path)\n    try:")
	})

	t.Run("general first", func(t *testing.T) {
		t.Parallel()

		spec := validateSpec()
		spec.Anchors = []string{writeAnchor, saveAnchor}

		out, err := patch.ApplyDetailed(content, spec)
		require.NoError(t, err)

		assert.Equal(t, 0, out.Pattern)
		assert.Contains(t, out.Content, "    write(path)\n    try:")
		assert.Contains(t, out.Content, "    log(\"saved to: \" + path)\n    return path\n")
	})
}

func TestApply_LaterPatternsNeverEvaluated(t *testing.T) {
	t.Parallel()

	spec := validateSpec()
	spec.Anchors = []string{saveAnchor, `(?P<pre>[`}

	_, changed, err := patch.Apply(savedSource, spec)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestApply_IndependentGuards(t *testing.T) {
	t.Parallel()

	spec := validateSpec()

	t.Run("block present, import missing", func(t *testing.T) {
		t.Parallel()

		content := strings.Replace(patchedSource, "from validators import validate\n", "", 1)

		out, err := patch.ApplyDetailed(content, spec)
		require.NoError(t, err)

		assert.True(t, out.ImportInserted)
		assert.True(t, out.BlockPresent)
		assert.Zero(t, out.BlocksInserted)
		assert.Equal(t, patchedSource, out.Content)
	})

	t.Run("import present, block missing", func(t *testing.T) {
		t.Parallel()

		content := strings.Replace(savedSource, "import os\n", "import os\nfrom validators import validate\n", 1)

		out, err := patch.ApplyDetailed(content, spec)
		require.NoError(t, err)

		assert.True(t, out.ImportPresent)
		assert.False(t, out.ImportInserted)
		assert.Equal(t, 1, out.BlocksInserted)
		assert.Equal(t, patchedSource, out.Content)
	})
}

func TestApply_PreservesMatchedText(t *testing.T) {
	t.Parallel()

	content := "import os\n\ndef save(path):\n\t\tlog(\"saved to: \" + path)\n\t\treturn path  # trailing\n"

	out, changed, err := patch.Apply(content, validateSpec())
	require.NoError(t, err)
	require.True(t, changed)

	assert.Contains(t, out, "\t\tlog(\"saved to: \" + path)\n")
	assert.Contains(t, out, "\t\treturn path  # trailing\n")
	assert.Contains(t, out, "\t\t    validate(path)\n")
}

func TestApply_FirstOccurrenceOnly(t *testing.T) {
	t.Parallel()

	content := savedSource + "\ndef save_again(other):\n    log(\"saved to: \" + other)\n    return other\n"

	out, err := patch.ApplyDetailed(content, validateSpec())
	require.NoError(t, err)

	assert.Equal(t, 1, out.BlocksInserted)
	assert.Equal(t, 1, strings.Count(out.Content, validateMarker))
	assert.Contains(t, out.Content, "    log(\"saved to: \" + other)\n    return other\n")
}

func TestApply_AllOccurrences(t *testing.T) {
	t.Parallel()

	spec := validateSpec()
	spec.AllOccurrences = true

	content := savedSource + "\ndef save_again(other):\n    log(\"saved to: \" + other)\n    return other\n"

	out, err := patch.ApplyDetailed(content, spec)
	require.NoError(t, err)

	assert.Equal(t, 2, out.BlocksInserted)
	assert.Equal(t, 2, strings.Count(out.Content, validateMarker))
	assert.Contains(t, out.Content, "        validate(other)\n")

	again, err := patch.ApplyDetailed(out.Content, spec)
	require.NoError(t, err)
	assert.False(t, again.Changed)
}

func TestApply_RequireMatch(t *testing.T) {
	t.Parallel()

	spec := validateSpec()
	spec.RequireMatch = true

	content := "import os\n\ndef noop():\n    return None\n"

	out, changed, err := patch.Apply(content, spec)
	require.ErrorIs(t, err, patch.ErrAnchorNotFound)

	assert.False(t, changed)
	assert.Equal(t, content, out)

	// Already patched files satisfy strict mode through the marker.
	_, changed, err = patch.Apply(patchedSource, spec)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApply_MalformedPattern(t *testing.T) {
	t.Parallel()

	spec := validateSpec()
	spec.Anchors = []string{`(?P<pre>[`}

	out, changed, err := patch.Apply(savedSource, spec)
	require.ErrorIs(t, err, patch.ErrPatternEngine)

	assert.False(t, changed)
	assert.Equal(t, savedSource, out)
}

func TestApply_ImportAtEndOfFileWithoutNewline(t *testing.T) {
	t.Parallel()

	body := strings.Replace(patchedSource, "import os\nfrom validators import validate\n", "", 1)
	content := body + "import os"

	out, err := patch.ApplyDetailed(content, validateSpec())
	require.NoError(t, err)

	assert.True(t, out.ImportInserted)
	assert.True(t, out.BlockPresent)
	assert.Equal(t, body+"import os\nfrom validators import validate\n", out.Content)
}

func TestApply_EmptyImportAnchorMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		anchor  string
		content string
		want    string
	}{
		{
			name:    "start of file",
			anchor:  `(?m)^`,
			content: savedSource,
			want:    patchedSource,
		},
		{
			name:    "empty line mid file",
			anchor:  `(?m)^$`,
			content: savedSource,
			want: strings.Replace(patchedSource,
				"import os\nfrom validators import validate\n\n", "import os\n\nfrom validators import validate\n", 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spec := validateSpec()
			spec.ImportAnchor = tt.anchor

			out, err := patch.ApplyDetailed(tt.content, spec)
			require.NoError(t, err)

			assert.True(t, out.ImportInserted)
			assert.Equal(t, tt.want, out.Content)
		})
	}
}

func TestApply_TemplateDollarEscape(t *testing.T) {
	t.Parallel()

	spec := validateSpec()
	spec.Marker = "# graft:$hook"
	spec.Template = "${pre}${indent}emit(`$${name}`, cost=\"$$5\")  # graft:$$hook\n${post}"

	require.NoError(t, spec.Validate())

	out, changed, err := patch.Apply(savedSource, spec)
	require.NoError(t, err)
	require.True(t, changed)

	assert.Contains(t, out, "    emit(`${name}`, cost=\"$5\")  # graft:$hook\n    return path\n")

	_, changed, err = patch.Apply(out, spec)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApply_WithoutImportStep(t *testing.T) {
	t.Parallel()

	spec := validateSpec()
	spec.ImportAnchor = ""
	spec.ImportInsertion = ""

	out, err := patch.ApplyDetailed(savedSource, spec)
	require.NoError(t, err)

	assert.False(t, out.ImportInserted)
	assert.Equal(t, 1, out.BlocksInserted)
}
