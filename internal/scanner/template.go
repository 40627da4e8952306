package scanner

import "bytes"

// maxTemplatePlaceholders bounds the number of "%s" substitutions applied
// to a send template; a fifth or later occurrence is left untouched
// (spec §3: "up to four %s placeholders").
const maxTemplatePlaceholders = 4

// expandTemplate substitutes up to the first four "%s" placeholders in
// the send template with the dotted-quad peer address, matching the
// original tool's literal strstr-replace semantics.
func expandTemplate(template []byte, peer string) []byte {
	if !bytes.Contains(template, []byte("%s")) {
		return template
	}
	return bytes.Replace(template, []byte("%s"), []byte(peer), maxTemplatePlaceholders)
}
