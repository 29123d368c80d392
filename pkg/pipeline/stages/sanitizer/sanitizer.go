package sanitizer

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/infra/stageiface"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

const StageName = "sanitizer"

// strict allows no elements and no attributes. Script, style and similar
// elements are dropped together with their content.
var strict = bluemonday.StrictPolicy()

type SanitizerStage struct {
	logger *logrus.Logger
	policy *policy.Policy
}

func NewSanitizerStage(logger *logrus.Logger, p *policy.Policy) stageiface.Stage {
	return &SanitizerStage{
		logger: logger,
		policy: p,
	}
}

func (s *SanitizerStage) Name() string {
	return StageName
}

func (s *SanitizerStage) Execute(
	_ context.Context,
	_ *types.RequestContext,
	env envelope.Envelope,
	evtCtx *metrics.EventContext,
) (envelope.Envelope, error) {
	maxDepth := s.policy.Limits().MaxDepth
	data := SanitizerData{Sections: make(map[string]int)}
	out := env

	for _, section := range envelope.Sections {
		cleaned, err := envelope.TransformStrings(env.Section(section), maxDepth, func(path envelope.Path, in string) string {
			clean := Clean(in)
			if clean != in {
				data.Altered++
				data.Sections[string(section)]++
				s.logger.WithFields(logrus.Fields{
					"section": section,
					"path":    path.String(),
				}).Debug("markup stripped from value")
			}
			return clean
		})
		if err != nil {
			if errors.Is(err, envelope.ErrMaxDepth) {
				s.logger.WithField("section", section).Warn("request nesting depth exceeded")
				return env, &types.StageError{
					StatusCode: 400,
					Message:    "Request structure is nested too deeply",
					Code:       types.CodeSecurityViolation,
					Err:        err,
				}
			}
			return env, err
		}
		out = out.With(section, cleaned)
	}

	evtCtx.SetExtras(data)
	return out, nil
}

// Clean strips every HTML element from in, including markup hidden behind
// any depth of entity encoding. Text without markup is returned unchanged,
// encoded entities included. Otherwise the result is fully decoded text that
// no longer changes under stripping, so Clean(Clean(x)) == Clean(x).
func Clean(in string) string {
	if !strings.ContainsAny(in, "<&") {
		return in
	}
	// every pass that changes the text consumes part of it, so the input
	// length bounds the number of passes
	limit := len(in) + 1
	cur := decodeEntities(in, limit)
	if strip(cur) == cur {
		return in
	}
	for i := 0; i < limit; i++ {
		next := decodeEntities(strip(cur), limit)
		if next == cur {
			break
		}
		cur = next
	}
	return cur
}

// strip removes every element and returns the remaining text unescaped.
func strip(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

// decodeEntities unescapes until no entity is left.
func decodeEntities(s string, limit int) string {
	for i := 0; i < limit && strings.IndexByte(s, '&') >= 0; i++ {
		next := html.UnescapeString(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}
