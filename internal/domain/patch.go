package domain

import "strings"

// ItemPatch is the set of fields an owner may change. Fields left nil are
// not touched. Images, category, kind and date are deliberately absent.
type ItemPatch struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Location    *string      `json:"location"`
	Status      *Status      `json:"status"`
	ContactInfo *ContactInfo `json:"contactInfo"`
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.Status == nil && p.ContactInfo == nil
}

// Apply writes the present fields onto item.
func (p ItemPatch) Apply(item *Item) {
	if p.Title != nil {
		item.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		item.Description = strings.TrimSpace(*p.Description)
	}
	if p.Location != nil {
		item.Location = strings.TrimSpace(*p.Location)
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.ContactInfo != nil {
		item.ContactInfo = ContactInfo{
			Phone: strings.TrimSpace(p.ContactInfo.Phone),
			Email: strings.TrimSpace(p.ContactInfo.Email),
		}
	}
}
