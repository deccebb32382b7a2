// Package judgerunner evaluates a single (submission, question, judge)
// cell against a configured LLM provider and produces an evaluation.
package judgerunner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/judgequeue/judgequeue/pkg/fingerprint"
	"github.com/judgequeue/judgequeue/pkg/model"
	"github.com/judgequeue/judgequeue/pkg/providers"
	"github.com/judgequeue/judgequeue/pkg/verdict"
)

const promptTemplate = "%s\n\nQuestion: %s\n\nAnswer: %s\n\n" +
	`Response ONLY with a Json object: {"verdict":"pass|fail|inconclusive","reasoning":"..."}` + "\n"

// Run evaluates one job against the judge catalog and the given provider
// registry. It returns a nil evaluation (and nil error) for every
// condition the source spec treats as a silent no-op: unknown question,
// missing answer, inactive or unknown judge, or an unresolvable provider.
// A non-nil error indicates the provider call itself failed and the
// caller should apply its retry policy.
func Run(ctx context.Context, job model.Job, judges map[string]model.Judge, registry providers.Registry) (*model.Evaluation, error) {
	question, ok := findQuestion(job.SubmissionData.Questions, job.QuestionID)
	if !ok {
		return nil, nil
	}

	answer, ok := job.SubmissionData.Answers[job.QuestionID]
	if !ok {
		return nil, nil
	}

	judge, ok := judges[job.JudgeID]
	if !ok || !judge.Active {
		return nil, nil
	}

	answerText := flattenAnswer(answer)

	providerID := providers.ResolveProvider(judge.Provider, judge.Model)
	if providerID == "" || judge.Model == "" {
		return nil, nil
	}
	client, ok := registry.Get(providerID)
	if !ok {
		return nil, nil
	}

	prompt := fmt.Sprintf(promptTemplate, judge.SystemPrompt, question.ResolvedText(), answerText)

	raw, err := client.Generate(ctx, judge.Model, prompt)
	if err != nil {
		return nil, err
	}

	v, reasoning := verdict.Parse(raw)

	return &model.Evaluation{
		SubmissionID:     job.SubmissionID,
		QuestionID:       job.QuestionID,
		JudgeID:          job.JudgeID,
		QueueID:          job.QueueID,
		Verdict:          v,
		Reasoning:        reasoning,
		ReasoningSimhash: fingerprint.Simhash(reasoning),
		CreatedAt:        time.Now().UTC(),
	}, nil
}

func findQuestion(questions []model.Question, id string) (model.Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// flattenAnswer joins every string-valued leaf of the answer payload with
// spaces, accepting both a bare scalar and a nested map/slice shape.
func flattenAnswer(v interface{}) string {
	var parts []string
	var walk func(interface{})
	walk = func(v interface{}) {
		switch t := v.(type) {
		case string:
			if t != "" {
				parts = append(parts, t)
			}
		case map[string]interface{}:
			for _, val := range t {
				walk(val)
			}
		case []interface{}:
			for _, val := range t {
				walk(val)
			}
		case nil:
		default:
			parts = append(parts, fmt.Sprintf("%v", t))
		}
	}
	walk(v)
	return strings.Join(parts, " ")
}
