package sanitizer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline/stages/sanitizer"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, raw string) envelope.Value {
	t.Helper()
	v, err := envelope.ParseJSON([]byte(raw))
	require.NoError(t, err)
	return v
}

func run(t *testing.T, env envelope.Envelope) (envelope.Envelope, error) {
	t.Helper()
	stage := sanitizer.NewSanitizerStage(logrus.New(), policy.Default())
	return stage.Execute(
		context.Background(),
		&types.RequestContext{Path: "/api/lectures"},
		env,
		metrics.NewEventContext(sanitizer.StageName, nil),
	)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"script removed with content", `<script>alert("x")</script>Intro`, "Intro"},
		{"event handler attribute", `<img src=x onerror=alert(1)>Photo`, "Photo"},
		{"formatting tags", `<b>Bold</b> move`, "Bold move"},
		{"style block", `<style>body{display:none}</style>Week 1`, "Week 1"},
		{"plain text", "Tom's \"quoted\" notes", "Tom's \"quoted\" notes"},
		{"comparison is not markup", "a < b", "a < b"},
		{"ampersand kept", "Q & A", "Q & A"},
		{"encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"encoded ampersand kept encoded", "Tom &amp; Jerry", "Tom &amp; Jerry"},
		{"encoded comparison kept encoded", "I &lt;3 graphs", "I &lt;3 graphs"},
		{"named entity kept encoded", "use &nbsp; for spacing", "use &nbsp; for spacing"},
		{"deeply encoded tag", "&" + strings.Repeat("amp;", 20) + "lt;b&gt;x", "x"},
		{"encoded tag among text", "x &lt;b&gt;y&lt;/b&gt;", "x y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizer.Clean(tt.in))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		`<scr<script>ipt>alert(1)</script>`,
		`&lt;script&gt;alert(1)&lt;/script&gt;`,
		`&amp;lt;b&amp;gt;double&amp;lt;/b&amp;gt;`,
		`<<b>b>nested</b>`,
		`<a href="javascript:alert(1)">click</a>`,
		`plain`,
		`5 > 3 && 2 < 4`,
		"&" + strings.Repeat("amp;", 20) + "lt;b&gt;x",
		"&" + strings.Repeat("amp;", 40) + "lt;script&gt;alert(1)&lt;/script&gt;",
		`Tom &amp; Jerry`,
	}

	for _, in := range inputs {
		once := sanitizer.Clean(in)
		twice := sanitizer.Clean(once)
		assert.Equal(t, once, twice, in)
		assert.NotContains(t, strings.ToLower(once), "<script", in)
	}
}

func TestExecute_StripsEveryStringLeaf(t *testing.T) {
	env := envelope.New(
		mustJSON(t, `{"title":"<b>Graphs</b>","tags":["<i>dfs</i>","bfs"],"meta":{"note":"<script>x()</script>ok"}}`),
		envelope.FromPairs([]envelope.Pair{{Key: "q", Value: "<em>trees</em>"}}),
		envelope.FromPairs([]envelope.Pair{{Key: "lectureId", Value: "<u>5</u>"}}),
	)

	out, err := run(t, env)
	require.NoError(t, err)

	assert.Equal(t, `{"title":"Graphs","tags":["dfs","bfs"],"meta":{"note":"ok"}}`, string(out.Body.AppendJSON(nil)))
	q, _ := out.Query.Get("q")
	assert.Equal(t, "trees", q.Text())
	id, _ := out.Params.Get("lectureId")
	assert.Equal(t, "5", id.Text())

	// input envelope is not mutated
	assert.Equal(t, `{"title":"<b>Graphs</b>","tags":["<i>dfs</i>","bfs"],"meta":{"note":"<script>x()</script>ok"}}`, string(env.Body.AppendJSON(nil)))
}

func TestExecute_NonStringLeavesUnchanged(t *testing.T) {
	body := mustJSON(t, `{"count":3,"ratio":0.25,"published":true,"archived":false,"parent":null,"scores":[1,2.5,null]}`)
	env := envelope.New(body, envelope.Null(), envelope.Null())

	out, err := run(t, env)
	require.NoError(t, err)
	assert.True(t, out.Body.Equal(body))
}

func TestExecute_CleanEnvelopeRoundTrip(t *testing.T) {
	env := envelope.New(
		mustJSON(t, `{"title":"Intro to graphs","rating":4,"content":"Nodes & edges, a < b","tags":["math","cs"],`+
			`"notes":["Tom &amp; Jerry","I &lt;3 graphs","use &nbsp; for spacing"]}`),
		envelope.FromPairs([]envelope.Pair{{Key: "page", Value: "2"}, {Key: "sort", Value: "title"}}),
		envelope.FromPairs([]envelope.Pair{{Key: "courseId", Value: "12"}}),
	)

	out, err := run(t, env)
	require.NoError(t, err)
	assert.True(t, out.Equal(env))
}

func TestExecute_Idempotent(t *testing.T) {
	env := envelope.New(
		mustJSON(t, `{"a":"<scr<script>ipt>x</script>","b":["&lt;b&gt;hi&lt;/b&gt;"],"c":{"d":"<p>para</p>"}}`),
		envelope.Null(),
		envelope.Null(),
	)

	once, err := run(t, env)
	require.NoError(t, err)
	twice, err := run(t, once)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}

func TestExecute_DepthBound(t *testing.T) {
	deep := strings.Repeat(`{"a":`, policy.DefaultMaxDepth+1) + `"x"` + strings.Repeat(`}`, policy.DefaultMaxDepth+1)
	env := envelope.New(mustJSON(t, deep), envelope.Null(), envelope.Null())

	_, err := run(t, env)
	require.Error(t, err)

	var stageErr *types.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, 400, stageErr.StatusCode)
	assert.Equal(t, types.CodeSecurityViolation, stageErr.Code)
	assert.ErrorIs(t, err, envelope.ErrMaxDepth)

	shallow := strings.Repeat(`{"a":`, policy.DefaultMaxDepth) + `"x"` + strings.Repeat(`}`, policy.DefaultMaxDepth)
	_, err = run(t, envelope.New(mustJSON(t, shallow), envelope.Null(), envelope.Null()))
	assert.NoError(t, err)
}
