package domain

import "time"

// Owner is the read-only identity record joined onto an item for display.
type Owner struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Projection selects which owner fields a response exposes.
type Projection int

const (
	// ProjectName exposes the name only. Used by the public listing.
	ProjectName Projection = iota
	// ProjectContact exposes name and email.
	ProjectContact
	// ProjectFull exposes name, email and account creation time.
	ProjectFull
)

// Project returns a copy of o reduced to the fields p allows.
func (o *Owner) Project(p Projection) *Owner {
	if o == nil {
		return nil
	}
	out := &Owner{ID: o.ID, Name: o.Name}
	if p >= ProjectContact {
		out.Email = o.Email
	}
	if p >= ProjectFull && o.CreatedAt != nil {
		ts := *o.CreatedAt
		out.CreatedAt = &ts
	}
	return out
}

// WithOwner returns a shallow copy of item whose owner is projected by p.
func (i Item) WithOwner(p Projection) Item {
	i.Owner = i.Owner.Project(p)
	return i
}

// Caller is the verified identity making a request.
type Caller struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Owner returns the owner record describing the caller.
func (c Caller) Owner() *Owner {
	o := &Owner{ID: c.ID, Name: c.Name, Email: c.Email}
	if !c.CreatedAt.IsZero() {
		ts := c.CreatedAt
		o.CreatedAt = &ts
	}
	return o
}

// Authorize reports whether callerID owns item.
func Authorize(callerID string, item *Item) bool {
	return item != nil && callerID != "" && callerID == item.OwnerID
}
