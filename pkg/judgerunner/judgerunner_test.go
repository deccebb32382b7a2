package judgerunner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgequeue/judgequeue/pkg/model"
	"github.com/judgequeue/judgequeue/pkg/providers"
)

type stubClient struct {
	response string
	err      error
}

func (c stubClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	return c.response, c.err
}

func baseJob() model.Job {
	return model.Job{
		SubmissionID: "sub-1",
		QuestionID:   "q1",
		JudgeID:      "judge-1",
		QueueID:      "queue-1",
		SubmissionData: model.SubmissionData{
			Questions: []model.Question{{ID: "q1", Text: "Is the sky blue?"}},
			Answers:   map[string]interface{}{"q1": "Yes, it is blue."},
		},
	}
}

func baseJudges() map[string]model.Judge {
	return map[string]model.Judge{
		"judge-1": {ID: "judge-1", Active: true, Model: "gpt-4o", SystemPrompt: "You are strict."},
	}
}

func TestRunHappyPath(t *testing.T) {
	registry := providers.Registry{"openai": stubClient{response: `{"verdict":"pass","reasoning":"matches"}`}}

	eval, err := Run(context.Background(), baseJob(), baseJudges(), registry)
	require.NoError(t, err)
	require.NotNil(t, eval)
	assert.Equal(t, model.VerdictPass, eval.Verdict)
	assert.Equal(t, "matches", eval.Reasoning)
	assert.Equal(t, "sub-1", eval.SubmissionID)
}

func TestRunUnknownQuestionIsNoop(t *testing.T) {
	job := baseJob()
	job.QuestionID = "missing"
	eval, err := Run(context.Background(), job, baseJudges(), providers.Registry{})
	require.NoError(t, err)
	assert.Nil(t, eval)
}

func TestRunMissingAnswerIsNoop(t *testing.T) {
	job := baseJob()
	delete(job.SubmissionData.Answers, "q1")
	eval, err := Run(context.Background(), job, baseJudges(), providers.Registry{})
	require.NoError(t, err)
	assert.Nil(t, eval)
}

func TestRunInactiveJudgeIsNoop(t *testing.T) {
	judges := baseJudges()
	j := judges["judge-1"]
	j.Active = false
	judges["judge-1"] = j

	eval, err := Run(context.Background(), baseJob(), judges, providers.Registry{})
	require.NoError(t, err)
	assert.Nil(t, eval)
}

func TestRunUnresolvedProviderIsNoop(t *testing.T) {
	judges := baseJudges()
	j := judges["judge-1"]
	j.Model = "some-unrecognized-model"
	j.Provider = ""
	judges["judge-1"] = j

	eval, err := Run(context.Background(), baseJob(), judges, providers.Registry{})
	require.NoError(t, err)
	assert.Nil(t, eval)
}

func TestRunProviderErrorPropagates(t *testing.T) {
	registry := providers.Registry{"openai": stubClient{err: errors.New("rate limit exceeded")}}
	eval, err := Run(context.Background(), baseJob(), baseJudges(), registry)
	require.Error(t, err)
	assert.Nil(t, eval)
}

func TestRunMatchesNestedDataShapedQuestion(t *testing.T) {
	var questions []model.Question
	raw := `[{"data": {"id": "q1", "questionText": "Is the sky blue?"}}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &questions))
	require.Equal(t, "q1", questions[0].ID)

	job := baseJob()
	job.SubmissionData.Questions = questions

	registry := providers.Registry{"openai": stubClient{response: `{"verdict":"pass","reasoning":"matches"}`}}
	eval, err := Run(context.Background(), job, baseJudges(), registry)
	require.NoError(t, err)
	require.NotNil(t, eval)
	assert.Equal(t, model.VerdictPass, eval.Verdict)
}

func TestFlattenAnswerJoinsNestedValues(t *testing.T) {
	got := flattenAnswer(map[string]interface{}{
		"a": "one",
		"b": []interface{}{"two", "three"},
	})
	assert.Contains(t, got, "one")
	assert.Contains(t, got, "two")
	assert.Contains(t, got, "three")
}
