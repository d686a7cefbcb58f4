package matching

import (
	"strings"

	"resource-workers/internal/catalog"
)

// ResponseLimit is how many matches a chat reply lists.
const ResponseLimit = 3

const (
	noResultsEN = "Sorry, I couldn't find any resources matching your search."
	noResultsES = "Lo siento, no pude encontrar recursos que coincidan con tu búsqueda."
	headerEN    = "Here are some resources that might help you:\n\n"
	headerES    = "Aquí hay algunos recursos que pueden ayudarte:\n\n"
	noTitle     = "[No Title Available]"
)

// FormatResourceResponse renders the top matches as a plain-text chat reply
// in English or Spanish.
func FormatResourceResponse(matches []MatchedResource, language string) string {
	spanish := catalog.IsSpanish(language)

	if len(matches) == 0 {
		if spanish {
			return noResultsES
		}
		return noResultsEN
	}

	header := headerEN
	if spanish {
		header = headerES
	}

	limit := len(matches)
	if limit > ResponseLimit {
		limit = ResponseLimit
	}

	entries := make([]string, 0, limit)
	for _, m := range matches[:limit] {
		entries = append(entries, formatEntry(m.Resource))
	}
	return header + strings.Join(entries, "\n\n")
}

func formatEntry(r ResourceView) string {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = noTitle
	}
	b.WriteString(title)

	if r.Description != "" {
		b.WriteString("\n" + r.Description)
	}

	var contact []string
	if r.Contact.Phone != "" {
		contact = append(contact, r.Contact.Phone)
	}
	if r.Contact.Email != nil && *r.Contact.Email != "" {
		contact = append(contact, *r.Contact.Email)
	}
	if len(contact) > 0 {
		b.WriteString("\nContact: " + strings.Join(contact, " / "))
	}

	if r.Address != "" {
		b.WriteString("\nAddress: " + r.Address)
	}
	if r.Contact.Website != "" {
		b.WriteString("\nWebsite: " + r.Contact.Website)
	}
	return b.String()
}
