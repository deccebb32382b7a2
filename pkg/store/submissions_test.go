package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionIDsFromSubmissionDataFlatShape(t *testing.T) {
	raw := []byte(`{"questions": [{"id": "q1"}, {"id": "q2"}], "answers": {}}`)
	ids, err := questionIDsFromSubmissionData(raw)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2"}, ids)
}

func TestQuestionIDsFromSubmissionDataNestedDataShape(t *testing.T) {
	raw := []byte(`{"questions": [{"data": {"id": "q1"}}, {"id": "q2"}], "answers": {}}`)
	ids, err := questionIDsFromSubmissionData(raw)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2"}, ids)
}
