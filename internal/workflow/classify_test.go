package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lines(ss ...string) string {
	return strings.Join(ss, "\n")
}

func TestClassify_Markers(t *testing.T) {
	input := lines(
		"INFO: Analyzed target //docs:docs",
		"WARNING: option --foo is deprecated",
		"ERROR: /src/BUILD:3:1: missing input",
		"DEBUG: rules_python loaded",
		"Target //docs:docs up-to-date",
	)
	b := Classify(input)
	assert.Equal(t, []string{"INFO: Analyzed target //docs:docs"}, b.Info)
	assert.Equal(t, []string{"WARNING: option --foo is deprecated"}, b.Warnings)
	assert.Equal(t, []string{"ERROR: /src/BUILD:3:1: missing input"}, b.Errors)
	assert.Equal(t, []string{"DEBUG: rules_python loaded"}, b.Debug)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	b := Classify(lines("Error: a", "eRrOr: b", "error: c"))
	assert.Equal(t, []string{"Error: a", "eRrOr: b", "error: c"}, b.Errors)
}

func TestClassify_MultipleMarkers(t *testing.T) {
	line := "Warning: possible Error: ignored"
	b := Classify(line)
	assert.Equal(t, []string{line}, b.Warnings)
	assert.Equal(t, []string{line}, b.Errors)
	assert.Empty(t, b.Info)
	assert.Empty(t, b.Debug)
}

func TestClassify_SubstringAnywhere(t *testing.T) {
	b := Classify("docs/conf.py:12: sphinx warning: duplicate label")
	assert.Len(t, b.Warnings, 1)
}

func TestClassify_MarkerNeedsColon(t *testing.T) {
	b := Classify(lines("no errors found", "warnings were suppressed", "info dump"))
	assert.Empty(t, b.Info)
	assert.Empty(t, b.Warnings)
	assert.Empty(t, b.Errors)
}

func TestClassify_BlankAndUnmarkedDropped(t *testing.T) {
	b := Classify(lines("", "   ", "plain output", "", "info: kept"))
	assert.Equal(t, []string{"info: kept"}, b.Info)
	assert.Empty(t, b.Warnings)
	assert.Empty(t, b.Errors)
	assert.Empty(t, b.Debug)
}

func TestClassify_OrderAndDuplicatesPreserved(t *testing.T) {
	b := Classify(lines("error: b", "error: a", "error: b"))
	assert.Equal(t, []string{"error: b", "error: a", "error: b"}, b.Errors)
}

func TestClassify_Idempotent(t *testing.T) {
	input := lines("info: 1", "warning: 2", "x", "error: 3 warning: 4", "debug: 5")
	assert.Equal(t, Classify(input), Classify(input))
}

func TestClassify_KeepsCarriageReturn(t *testing.T) {
	b := Classify("info: windows line\r\n")
	assert.Equal(t, []string{"info: windows line\r"}, b.Info)
}

func TestClassify_Empty(t *testing.T) {
	b := Classify("")
	assert.Nil(t, b.Info)
	assert.Nil(t, b.Warnings)
	assert.Nil(t, b.Errors)
	assert.Nil(t, b.Debug)
}

func TestClassify_UnicodeSimpleCaseFolding(t *testing.T) {
	// U+0130 lowers to a plain "i", so the marker still matches.
	b := Classify(lines("İNFO: dotted capital", "DEBUG: ok"))
	assert.Equal(t, []string{"İNFO: dotted capital"}, b.Info)
	assert.Equal(t, []string{"DEBUG: ok"}, b.Debug)
}
