package field_normalizer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type providerRule struct {
	removeDots bool
	tagSep     byte
	canonical  string
}

var providers = map[string]providerRule{
	"gmail.com":      {removeDots: true, tagSep: '+', canonical: "gmail.com"},
	"googlemail.com": {removeDots: true, tagSep: '+', canonical: "gmail.com"},
	"outlook.com":    {tagSep: '+'},
	"hotmail.com":    {tagSep: '+'},
	"live.com":       {tagSep: '+'},
	"icloud.com":     {tagSep: '+'},
	"me.com":         {tagSep: '+'},
	"mac.com":        {tagSep: '+'},
	"yahoo.com":      {tagSep: '-'},
	"ymail.com":      {tagSep: '-'},
	"rocketmail.com": {tagSep: '-'},
}

// NormalizeEmail lowercases an address and applies the addressing rules of
// the major mail providers. It does not validate the address.
func NormalizeEmail(raw string) string {
	addr := cases.Lower(language.Und).String(strings.TrimSpace(raw))

	at := strings.IndexByte(addr, '@')
	if at <= 0 || at != strings.LastIndexByte(addr, '@') || at == len(addr)-1 {
		return addr
	}
	local, domain := addr[:at], addr[at+1:]

	rule, ok := providers[domain]
	if !ok {
		return addr
	}
	if rule.tagSep != 0 {
		if i := strings.IndexByte(local, rule.tagSep); i >= 0 {
			local = local[:i]
		}
	}
	if rule.removeDots {
		local = strings.ReplaceAll(local, ".", "")
	}
	if local == "" {
		return addr
	}
	if rule.canonical != "" {
		domain = rule.canonical
	}
	return local + "@" + domain
}
