package metrics

type collectorOptions struct {
	traceID string
}

type Option func(*collectorOptions)

func WithTraceID(traceID string) Option {
	return func(o *collectorOptions) {
		o.traceID = traceID
	}
}
