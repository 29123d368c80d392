package policy

import (
	"errors"
	"fmt"
	"mime"
	"regexp"
	"sort"
	"strings"
)

// Tier selects which pattern set scans a string leaf.
type Tier string

const (
	TierStrict  Tier = "strict"
	TierGeneral Tier = "general"
)

type PatternSource struct {
	Name string `mapstructure:"name" json:"name"`
	Expr string `mapstructure:"expr" json:"expr"`
}

// Pattern is a compiled threat pattern. Expressions use RE2 syntax, so
// matching time is linear in the input length.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

// Settings is the configurable form of a Policy. Zero values fall back to
// the built in defaults.
type Settings struct {
	MaxBodyBytes        int64           `mapstructure:"max_body_bytes"`
	MaxQueryParams      int             `mapstructure:"max_query_params"`
	MaxHeaderBytes      int             `mapstructure:"max_header_bytes"`
	MaxFileBytes        int64           `mapstructure:"max_file_bytes"`
	MaxDepth            int             `mapstructure:"max_depth"`
	StrictPatterns      []PatternSource `mapstructure:"strict_patterns"`
	GeneralPatterns     []PatternSource `mapstructure:"general_patterns"`
	FreeTextFields      []string        `mapstructure:"free_text_fields"`
	StrictRoutePrefixes []string        `mapstructure:"strict_route_prefixes"`
	IDFields            []string        `mapstructure:"id_fields"`
	EmailFields         []string        `mapstructure:"email_fields"`
	ExemptFields        []string        `mapstructure:"exempt_fields"`
	AllowedMIMETypes    []string        `mapstructure:"allowed_mime_types"`
}

type Limits struct {
	MaxBodyBytes   int64 `json:"max_body_bytes"`
	MaxQueryParams int   `json:"max_query_params"`
	MaxHeaderBytes int   `json:"max_header_bytes"`
	MaxFileBytes   int64 `json:"max_file_bytes"`
	MaxDepth       int   `json:"max_depth"`
}

var ErrInvalidLimit = errors.New("limits must be positive")

// Policy is the immutable rule set shared by every pipeline stage. It is
// safe for concurrent use.
type Policy struct {
	limits         Limits
	strict         []Pattern
	general        []Pattern
	strictSources  []PatternSource
	generalSources []PatternSource
	freeText       set
	strictPrefixes []string
	idFields       set
	emailFields    set
	exemptFields   set
	allowedMIME    set
}

type set map[string]struct{}

func newSet(values []string, fold func(string) string) set {
	s := make(set, len(values))
	for _, v := range values {
		s[fold(v)] = struct{}{}
	}
	return s
}

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s set) list() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func keep(s string) string { return s }

// New validates the settings, fills defaults and compiles every pattern.
func New(s Settings) (*Policy, error) {
	s = withDefaults(s)

	if s.MaxBodyBytes <= 0 || s.MaxQueryParams <= 0 || s.MaxHeaderBytes <= 0 ||
		s.MaxFileBytes <= 0 || s.MaxDepth <= 0 {
		return nil, ErrInvalidLimit
	}

	strict, err := compile(TierStrict, s.StrictPatterns)
	if err != nil {
		return nil, err
	}
	general, err := compile(TierGeneral, s.GeneralPatterns)
	if err != nil {
		return nil, err
	}

	return &Policy{
		limits: Limits{
			MaxBodyBytes:   s.MaxBodyBytes,
			MaxQueryParams: s.MaxQueryParams,
			MaxHeaderBytes: s.MaxHeaderBytes,
			MaxFileBytes:   s.MaxFileBytes,
			MaxDepth:       s.MaxDepth,
		},
		strict:         strict,
		general:        general,
		strictSources:  append([]PatternSource(nil), s.StrictPatterns...),
		generalSources: append([]PatternSource(nil), s.GeneralPatterns...),
		freeText:       newSet(s.FreeTextFields, keep),
		strictPrefixes: append([]string(nil), s.StrictRoutePrefixes...),
		idFields:       newSet(s.IDFields, keep),
		emailFields:    newSet(s.EmailFields, keep),
		exemptFields:   newSet(s.ExemptFields, keep),
		allowedMIME:    newSet(s.AllowedMIMETypes, strings.ToLower),
	}, nil
}

// Default returns the built in policy.
func Default() *Policy {
	p, err := New(Settings{})
	if err != nil {
		panic(fmt.Sprintf("default policy: %v", err))
	}
	return p
}

func withDefaults(s Settings) Settings {
	if s.MaxBodyBytes == 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.MaxQueryParams == 0 {
		s.MaxQueryParams = DefaultMaxQueryParams
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if s.MaxFileBytes == 0 {
		s.MaxFileBytes = DefaultMaxFileBytes
	}
	if s.MaxDepth == 0 {
		s.MaxDepth = DefaultMaxDepth
	}
	if len(s.StrictPatterns) == 0 {
		s.StrictPatterns = defaultStrictPatterns
	}
	if len(s.GeneralPatterns) == 0 {
		s.GeneralPatterns = defaultGeneralPatterns
	}
	if len(s.FreeTextFields) == 0 {
		s.FreeTextFields = defaultFreeTextFields
	}
	if len(s.StrictRoutePrefixes) == 0 {
		s.StrictRoutePrefixes = defaultStrictRoutePrefixes
	}
	if len(s.IDFields) == 0 {
		s.IDFields = defaultIDFields
	}
	if len(s.EmailFields) == 0 {
		s.EmailFields = defaultEmailFields
	}
	if len(s.AllowedMIMETypes) == 0 {
		s.AllowedMIMETypes = defaultAllowedMIMETypes
	}
	return s
}

func compile(tier Tier, sources []PatternSource) ([]Pattern, error) {
	out := make([]Pattern, 0, len(sources))
	for i, src := range sources {
		name := src.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", tier, i)
		}
		re, err := regexp.Compile(src.Expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", tier, name, err)
		}
		out = append(out, Pattern{Name: name, Expr: re})
	}
	return out, nil
}

func (p *Policy) Limits() Limits {
	return p.limits
}

// TierFor picks the pattern tier for a field on a route. The strict tier
// applies only to free text fields on the strict route prefixes.
func (p *Policy) TierFor(route, field string) Tier {
	if !p.freeText.has(field) {
		return TierGeneral
	}
	for _, prefix := range p.strictPrefixes {
		if strings.HasPrefix(route, prefix) {
			return TierStrict
		}
	}
	return TierGeneral
}

// Match returns the first pattern of the tier matching s.
func (p *Policy) Match(tier Tier, s string) (Pattern, bool) {
	patterns := p.general
	if tier == TierStrict {
		patterns = p.strict
	}
	for _, pt := range patterns {
		if pt.Expr.MatchString(s) {
			return pt, true
		}
	}
	return Pattern{}, false
}

func (p *Policy) IsIDField(name string) bool {
	return p.idFields.has(name)
}

func (p *Policy) IsEmailField(name string) bool {
	return p.emailFields.has(name)
}

// IsExempt reports whether a field skips injection scanning.
func (p *Policy) IsExempt(name string) bool {
	return p.exemptFields.has(name)
}

// AllowsMIME checks a declared content type against the allow list.
// Parameters such as charset are ignored.
func (p *Policy) AllowsMIME(declared string) bool {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	return p.allowedMIME.has(strings.ToLower(mediaType))
}

// Description is the serializable view of a Policy.
type Description struct {
	Limits              Limits          `json:"limits"`
	StrictPatterns      []PatternSource `json:"strict_patterns"`
	GeneralPatterns     []PatternSource `json:"general_patterns"`
	FreeTextFields      []string        `json:"free_text_fields"`
	StrictRoutePrefixes []string        `json:"strict_route_prefixes"`
	IDFields            []string        `json:"id_fields"`
	EmailFields         []string        `json:"email_fields"`
	ExemptFields        []string        `json:"exempt_fields"`
	AllowedMIMETypes    []string        `json:"allowed_mime_types"`
}

func (p *Policy) Describe() Description {
	return Description{
		Limits:              p.limits,
		StrictPatterns:      append([]PatternSource(nil), p.strictSources...),
		GeneralPatterns:     append([]PatternSource(nil), p.generalSources...),
		FreeTextFields:      p.freeText.list(),
		StrictRoutePrefixes: append([]string(nil), p.strictPrefixes...),
		IDFields:            p.idFields.list(),
		EmailFields:         p.emailFields.list(),
		ExemptFields:        p.exemptFields.list(),
		AllowedMIMETypes:    p.allowedMIME.list(),
	}
}
