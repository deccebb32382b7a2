package verdict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJSON(t *testing.T) {
	v, r := Parse(`{"verdict":"pass","reasoning":"looks correct"}`)
	assert.Equal(t, "pass", v)
	assert.Equal(t, "looks correct", r)
}

func TestParseJSONMissingReasoning(t *testing.T) {
	v, r := Parse(`{"verdict":"fail"}`)
	assert.Equal(t, "fail", v)
	assert.Equal(t, "", r)
}

func TestParseLexicalFallbackPass(t *testing.T) {
	v, _ := Parse("I think this should PASS the check.")
	assert.Equal(t, "pass", v)
}

func TestParseLexicalFallbackFail(t *testing.T) {
	v, _ := Parse("this answer should fail review")
	assert.Equal(t, "fail", v)
}

func TestParseLexicalFallbackBothWordsInconclusive(t *testing.T) {
	v, _ := Parse("could pass or fail depending on interpretation")
	assert.Equal(t, "inconclusive", v)
}

func TestParseLexicalFallbackNeitherWordInconclusive(t *testing.T) {
	v, _ := Parse("unclear response with no verdict word")
	assert.Equal(t, "inconclusive", v)
}

func TestParseInvalidVerdictFieldFallsBackToLexical(t *testing.T) {
	v, _ := Parse(`{"verdict":"maybe","reasoning":"not sure, could fail"}`)
	assert.Equal(t, "fail", v)
}

func TestParseTruncatesReasoningTo1000(t *testing.T) {
	long := strings.Repeat("x", 2000)
	_, r := Parse(long)
	assert.Len(t, r, 1000)
}
