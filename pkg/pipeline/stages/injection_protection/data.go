package injection_protection

type InjectionData struct {
	Section string `json:"section"`
	Field   string `json:"field"`
	Path    string `json:"path"`
	Tier    string `json:"tier"`
	Pattern string `json:"pattern"`
}
