package matching

import (
	"resource-workers/internal/catalog"
)

type Contact struct {
	Phone   string  `json:"phone,omitempty"`
	Email   *string `json:"email"`
	Website string  `json:"website,omitempty"`
}

// ResourceView is the display-safe part of a resource. Eligibility internals,
// interaction patterns and metadata never leave the catalog.
type ResourceView struct {
	ID             string                 `json:"id,omitempty"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Category       string                 `json:"category,omitempty"`
	Subcategories  []string               `json:"subcategories"`
	Languages      []string               `json:"languages"`
	Contact        Contact                `json:"contact"`
	Address        string                 `json:"address,omitempty"`
	ServiceDetails catalog.ServiceDetails `json:"serviceDetails"`
}

type MatchedResource struct {
	Score     float64           `json:"score"`
	Rationale MatchingRationale `json:"rationale"`
	Resource  ResourceView      `json:"resource"`
}

// project resolves title and description by language: Spanish only when the
// request is Spanish and the resource has a Spanish value.
func project(r *catalog.Resource, language string) ResourceView {
	info := r.BasicInfo
	spanish := language == catalog.LanguageSpanish

	title := info.TitleEN
	if spanish && info.TitleES != "" {
		title = info.TitleES
	}
	description := info.DescriptionEN
	if spanish && info.DescriptionES != "" {
		description = info.DescriptionES
	}

	var email *string
	if info.ContactEmail != nil {
		e := *info.ContactEmail
		email = &e
	}

	return ResourceView{
		ID:            info.ID,
		Title:         title,
		Description:   description,
		Category:      info.Category,
		Subcategories: copyStrings(info.Subcategories),
		Languages:     copyStrings(info.Languages),
		Contact: Contact{
			Phone:   info.ContactPhone,
			Email:   email,
			Website: info.Website,
		},
		Address:        info.Address,
		ServiceDetails: copyDetails(r.ServiceDetails),
	}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyDetails(d catalog.ServiceDetails) catalog.ServiceDetails {
	out := d
	if d.Hours != nil {
		out.Hours = make(map[string]string, len(d.Hours))
		for k, v := range d.Hours {
			out.Hours[k] = v
		}
	}
	if d.AppointmentRequired != nil {
		v := *d.AppointmentRequired
		out.AppointmentRequired = &v
	}
	if d.WalkInAccepted != nil {
		v := *d.WalkInAccepted
		out.WalkInAccepted = &v
	}
	return out
}
