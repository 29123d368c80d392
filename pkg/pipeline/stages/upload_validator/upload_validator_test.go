package upload_validator_test

import (
	"context"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline/stages/upload_validator"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadValidator(t *testing.T) {
	const mb = 1024 * 1024

	tests := []struct {
		name        string
		files       []types.UploadedFile
		expectError bool
	}{
		{
			name:        "no files",
			expectError: false,
		},
		{
			name:        "allowed pdf",
			files:       []types.UploadedFile{{FieldName: "file", Filename: "notes.pdf", Size: 2 * mb, MIMEType: "application/pdf"}},
			expectError: false,
		},
		{
			name:        "exactly at the limit",
			files:       []types.UploadedFile{{FieldName: "file", Filename: "big.png", Size: policy.DefaultMaxFileBytes, MIMEType: "image/png"}},
			expectError: false,
		},
		{
			name:        "php script",
			files:       []types.UploadedFile{{FieldName: "file", Filename: "shell.php", Size: 120, MIMEType: "application/x-php"}},
			expectError: true,
		},
		{
			name:        "oversized image",
			files:       []types.UploadedFile{{FieldName: "file", Filename: "huge.jpg", Size: policy.DefaultMaxFileBytes + 1, MIMEType: "image/jpeg"}},
			expectError: true,
		},
		{
			name:        "missing content type",
			files:       []types.UploadedFile{{FieldName: "file", Filename: "blob", Size: 10}},
			expectError: true,
		},
		{
			name: "second file fails",
			files: []types.UploadedFile{
				{FieldName: "a", Filename: "a.txt", Size: 10, MIMEType: "text/plain"},
				{FieldName: "b", Filename: "b.exe", Size: 10, MIMEType: "application/x-msdownload"},
			},
			expectError: true,
		},
	}

	stage := upload_validator.NewUploadValidatorStage(logrus.New(), policy.Default())
	env := envelope.New(envelope.EmptyObject(), envelope.Null(), envelope.Null())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := stage.Execute(context.Background(), &types.RequestContext{Files: tt.files}, env,
				metrics.NewEventContext(upload_validator.StageName, nil))

			if !tt.expectError {
				assert.NoError(t, err)
				assert.True(t, out.Equal(env))
				return
			}

			var stageErr *types.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, 400, stageErr.StatusCode)
			assert.Equal(t, types.CodeFileValidationFailed, stageErr.Code)
		})
	}
}

func TestUploadValidator_CustomLimit(t *testing.T) {
	p, err := policy.New(policy.Settings{MaxFileBytes: 100})
	require.NoError(t, err)
	stage := upload_validator.NewUploadValidatorStage(logrus.New(), p)

	collector := metrics.NewCollector()
	evtCtx := metrics.NewEventContext(upload_validator.StageName, collector)
	_, err = stage.Execute(context.Background(), &types.RequestContext{
		Files: []types.UploadedFile{{FieldName: "f", Filename: "x.txt", Size: 101, MIMEType: "text/plain"}},
	}, envelope.New(envelope.Null(), envelope.Null(), envelope.Null()), evtCtx)
	require.Error(t, err)

	evtCtx.Publish()
	events := collector.Flush()
	require.Len(t, events, 1)
	data, ok := events[0].Stage.Extras.(upload_validator.UploadData)
	require.True(t, ok)
	assert.Equal(t, "size", data.Reason)
	assert.Equal(t, "x.txt", data.Rejected)
}
