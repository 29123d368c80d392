package security_event_test

import (
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   security_event.Filter
		want security_event.Filter
	}{
		{"defaults", security_event.Filter{}, security_event.Filter{Limit: security_event.DefaultLimit}},
		{"negative offset", security_event.Filter{Offset: -5, Limit: 10}, security_event.Filter{Limit: 10}},
		{"limit capped", security_event.Filter{Limit: 10000}, security_event.Filter{Limit: security_event.MaxLimit}},
		{"code kept", security_event.Filter{Code: "SECURITY_VIOLATION", Offset: 20, Limit: 20},
			security_event.Filter{Code: "SECURITY_VIOLATION", Offset: 20, Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}
