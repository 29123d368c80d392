package telemetry

type ExporterConfig struct {
	Name     string                 `mapstructure:"name" json:"name"`
	Settings map[string]interface{} `mapstructure:"settings" json:"settings"`
}
