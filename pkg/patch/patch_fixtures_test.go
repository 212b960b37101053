package patch_test

import "github.com/Sumatoshi-tech/graft/pkg/patch"

const (
	saveAnchor  = `(?m)(?P<pre>^(?P<indent>[ \t]*)log\("saved to: " \+ (?P<var>\w+)\)\n)(?P<post>[ \t]*return \w+)`
	writeAnchor = `(?m)(?P<pre>^(?P<indent>[ \t]*)write\((?P<var>\w+)\)\n)(?P<post>[ \t]*return \w+)`

	validateMarker = "# graft:validate"

	validateTemplate = "${pre}" +
		"${indent}try:  " + validateMarker + "\n" +
		"${indent}    validate(${var})\n" +
		"${indent}except ValidationError:\n" +
		"${indent}    pass\n" +
		"${post}"

	savedSource = `import os

def save(path):
    log("saved to: " + path)
    return path
`

	patchedSource = `import os
from validators import validate

def save(path):
    log("saved to: " + path)
    try:  # graft:validate
        validate(path)
    except ValidationError:
        pass
    return path
`
)

func validateSpec() patch.Spec {
	return patch.Spec{
		Name:            "validate",
		ImportAnchor:    `(?m)^import os$`,
		ImportInsertion: "from validators import validate\n",
		Anchors:         []string{saveAnchor, writeAnchor},
		Template:        validateTemplate,
		Marker:          validateMarker,
	}
}
