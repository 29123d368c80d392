package field_normalizer

import (
	"strconv"
	"strings"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
)

// CoerceID turns v into a positive integer, or Null when v is not a base 10
// positive integer. It never fails.
func CoerceID(v envelope.Value) envelope.Value {
	var text string
	switch v.Kind() {
	case envelope.KindString:
		s, _ := v.AsString()
		text = strings.TrimSpace(s)
	case envelope.KindNumber:
		text, _ = v.AsNumber()
	default:
		return envelope.Null()
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n <= 0 {
		return envelope.Null()
	}
	return envelope.NewInt(n)
}
