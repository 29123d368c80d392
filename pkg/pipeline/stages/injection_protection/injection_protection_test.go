package injection_protection_test

import (
	"context"
	"strings"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline/stages/injection_protection"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func body(t *testing.T, raw string) envelope.Envelope {
	t.Helper()
	v, err := envelope.ParseJSON([]byte(raw))
	require.NoError(t, err)
	return envelope.New(v, envelope.Null(), envelope.Null())
}

// The filter is a best-effort heuristic. These cases pin the intended
// precision/recall tradeoff rather than prove the absence of bypasses.
func TestInjectionProtection(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		env            envelope.Envelope
		expectError    bool
		expectedStatus int
	}{
		{
			name:        "prose keyword in lecture content passes strict tier",
			path:        "/api/lectures",
			env:         body(t, `{"content":"The teacher will select the correct answer"}`),
			expectError: false,
		},
		{
			name:           "stacked query in lecture content",
			path:           "/api/lectures",
			env:            body(t, `{"content":"x'; DROP TABLE users; --"}`),
			expectError:    true,
			expectedStatus: 400,
		},
		{
			name:           "keyword in title hits general tier",
			path:           "/api/lectures",
			env:            body(t, `{"title":"I will select the best option"}`),
			expectError:    true,
			expectedStatus: 400,
		},
		{
			name:           "content outside strict routes uses general tier",
			path:           "/api/courses/4",
			env:            body(t, `{"content":"The teacher will select the correct answer"}`),
			expectError:    true,
			expectedStatus: 400,
		},
		{
			name:        "material description with prose",
			path:        "/api/materials/9",
			env:         body(t, `{"description":"Update your notes before we delete the old drafts"}`),
			expectError: false,
		},
		{
			name:           "tautology nested in an array",
			path:           "/api/quizzes/2",
			env:            body(t, `{"answers":[{"text":"ok"},{"text":"' or '1'='1"}]}`),
			expectError:    true,
			expectedStatus: 400,
		},
		{
			name:        "clean nested payload",
			path:        "/api/quizzes/2",
			env:         body(t, `{"title":"Quiz 1","questions":[{"prompt":"What is 2+2?","points":5}]}`),
			expectError: false,
		},
		{
			name: "comment marker in query",
			path: "/api/courses",
			env: envelope.New(envelope.Null(),
				envelope.FromPairs([]envelope.Pair{{Key: "sort", Value: "name--"}}),
				envelope.Null()),
			expectError:    true,
			expectedStatus: 400,
		},
		{
			name: "union in path parameter",
			path: "/api/courses/1 union select 1",
			env: envelope.New(envelope.Null(), envelope.Null(),
				envelope.FromPairs([]envelope.Pair{{Key: "courseId", Value: "1 union select 1"}})),
			expectError:    true,
			expectedStatus: 400,
		},
	}

	stage := injection_protection.NewInjectionProtectionStage(logrus.New(), policy.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := metrics.NewCollector()
			out, err := stage.Execute(
				context.Background(),
				&types.RequestContext{Path: tt.path},
				tt.env,
				metrics.NewEventContext(injection_protection.StageName, collector),
			)

			if !tt.expectError {
				assert.NoError(t, err)
				assert.True(t, out.Equal(tt.env))
				return
			}

			var stageErr *types.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.expectedStatus, stageErr.StatusCode)
			assert.Equal(t, types.CodeSecurityViolation, stageErr.Code)
		})
	}
}

func TestInjectionProtection_ReportsFinding(t *testing.T) {
	stage := injection_protection.NewInjectionProtectionStage(logrus.New(), policy.Default())
	collector := metrics.NewCollector()
	evtCtx := metrics.NewEventContext(injection_protection.StageName, collector)

	_, err := stage.Execute(
		context.Background(),
		&types.RequestContext{Path: "/api/lectures/3"},
		body(t, `{"lecture":{"content":"1 UNION SELECT password FROM users"}}`),
		evtCtx,
	)
	require.Error(t, err)

	evtCtx.SetError(types.CodeSecurityViolation, err)
	evtCtx.Publish()

	events := collector.Flush()
	require.Len(t, events, 1)
	finding := events[0].Stage.Finding
	require.NotNil(t, finding)
	assert.Equal(t, "body", finding.Section)
	assert.Equal(t, "content", finding.Field)
	assert.Equal(t, "strict", finding.Tier)
	assert.Equal(t, "union_select", finding.Pattern)
}

func TestInjectionProtection_TruncatesLoggedValue(t *testing.T) {
	stage := injection_protection.NewInjectionProtectionStage(logrus.New(), policy.Default())
	collector := metrics.NewCollector()
	evtCtx := metrics.NewEventContext(injection_protection.StageName, collector)

	long := "DROP " + strings.Repeat("x", 500)
	_, err := stage.Execute(context.Background(), &types.RequestContext{Path: "/api/users"},
		body(t, `{"bio":"`+long+`"}`), evtCtx)
	require.Error(t, err)
	evtCtx.Publish()

	events := collector.Flush()
	require.Len(t, events, 1)
	assert.Len(t, []rune(events[0].Stage.Finding.Value), 100)
	assert.True(t, strings.HasSuffix(events[0].Stage.Finding.Value, "..."))
}

func TestInjectionProtection_ExemptFields(t *testing.T) {
	p, err := policy.New(policy.Settings{ExemptFields: []string{"password"}})
	require.NoError(t, err)
	stage := injection_protection.NewInjectionProtectionStage(logrus.New(), p)

	_, err = stage.Execute(context.Background(), &types.RequestContext{Path: "/api/auth/login"},
		body(t, `{"email":"a@b.co","password":"P#ss--word"}`),
		metrics.NewEventContext(injection_protection.StageName, nil))
	assert.NoError(t, err)
}
