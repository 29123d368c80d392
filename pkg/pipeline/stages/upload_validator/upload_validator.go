package upload_validator

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/infra/stageiface"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/sirupsen/logrus"
)

const StageName = "upload_validator"

type UploadData struct {
	Files    int    `json:"files"`
	Rejected string `json:"rejected,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type UploadValidatorStage struct {
	logger *logrus.Logger
	policy *policy.Policy
}

func NewUploadValidatorStage(logger *logrus.Logger, p *policy.Policy) stageiface.Stage {
	return &UploadValidatorStage{
		logger: logger,
		policy: p,
	}
}

func (s *UploadValidatorStage) Name() string {
	return StageName
}

// Execute checks every uploaded file against the size limit and the MIME
// allow list. The declared content type is trusted; file bytes are not
// inspected. Requests without files pass unchanged.
func (s *UploadValidatorStage) Execute(
	_ context.Context,
	req *types.RequestContext,
	env envelope.Envelope,
	evtCtx *metrics.EventContext,
) (envelope.Envelope, error) {
	if len(req.Files) == 0 {
		return env, nil
	}

	maxBytes := s.policy.Limits().MaxFileBytes
	for _, f := range req.Files {
		if f.Size > maxBytes {
			return env, s.reject(evtCtx, req, f, "size",
				fmt.Errorf("file %q is %d bytes, limit is %d", f.Filename, f.Size, maxBytes))
		}
		if !s.policy.AllowsMIME(f.MIMEType) {
			return env, s.reject(evtCtx, req, f, "mime_type",
				fmt.Errorf("file %q has disallowed type %q", f.Filename, f.MIMEType))
		}
	}

	evtCtx.SetExtras(UploadData{Files: len(req.Files)})
	return env, nil
}

func (s *UploadValidatorStage) reject(
	evtCtx *metrics.EventContext,
	req *types.RequestContext,
	f types.UploadedFile,
	reason string,
	cause error,
) error {
	s.logger.WithFields(logrus.Fields{
		"field":     f.FieldName,
		"filename":  f.Filename,
		"size":      f.Size,
		"mime_type": f.MIMEType,
		"reason":    reason,
	}).Warn("upload rejected")
	evtCtx.SetExtras(UploadData{Files: len(req.Files), Rejected: f.Filename, Reason: reason})
	return &types.StageError{
		StatusCode: 400,
		Message:    "File validation failed",
		Code:       types.CodeFileValidationFailed,
		Err:        cause,
	}
}
