package sanitizer

type SanitizerData struct {
	Altered  int            `json:"altered"`
	Sections map[string]int `json:"sections,omitempty"`
}

// SectionCounts reports altered values per envelope section.
func (d SanitizerData) SectionCounts() map[string]int {
	return d.Sections
}
