package domain

import (
	"regexp"
	"strings"
	"time"

	apperrors "github.com/saikat7890/Lost-and-Found-System/pkg/errors"
	"github.com/saikat7890/Lost-and-Found-System/pkg/validator"
)

// MaxImages is the maximum number of images attached to one item.
const MaxImages = 5

// Date violation messages.
const (
	MsgDateRequired = "dateOccurred is required"
	MsgDateInvalid  = "dateOccurred must be a valid date (YYYY-MM-DD)"
)

// Kind is whether the item was lost or found.
type Kind string

const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// ParseKind returns the kind named by s. Only the exact values are accepted.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindLost, KindFound:
		return Kind(s), true
	default:
		return "", false
	}
}

// Status is the visibility state of an item. Any value may follow any other.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
	StatusPending  Status = "pending"
)

// Category constants.
const (
	CategoryElectronics     = "Electronics"
	CategoryClothing        = "Clothing"
	CategoryAccessories     = "Accessories"
	CategoryBooks           = "Books"
	CategoryKeys            = "Keys"
	CategoryBags            = "Bags"
	CategoryJewelry         = "Jewelry"
	CategoryDocuments       = "Documents"
	CategorySportsEquipment = "Sports Equipment"
	CategoryOther           = "Other"
)

// Categories returns the closed set of item categories in display order.
func Categories() []string {
	return []string{
		CategoryElectronics, CategoryClothing, CategoryAccessories, CategoryBooks,
		CategoryKeys, CategoryBags, CategoryJewelry, CategoryDocuments,
		CategorySportsEquipment, CategoryOther,
	}
}

// IsValidCategory reports whether c is one of Categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories() {
		if v == c {
			return true
		}
	}
	return false
}

var (
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
)

// ContactInfo is how a finder or owner can be reached. Both fields are
// optional.
type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Image is one stored photo. Handle is the object store's deletion token.
type Image struct {
	URL    string `json:"url"`
	Handle string `json:"publicId"`
}

// Item is a lost or found posting.
type Item struct {
	ID           string      `json:"id"`
	Title        string      `json:"title" validate:"required,max=100"`
	Description  string      `json:"description" validate:"required,max=500"`
	Category     string      `json:"category" validate:"required"`
	Kind         Kind        `json:"type" validate:"required,oneof=lost found"`
	Location     string      `json:"location" validate:"required,max=100"`
	DateOccurred time.Time   `json:"dateOccurred"`
	ContactInfo  ContactInfo `json:"contactInfo"`
	Images       []Image     `json:"images" validate:"max=5"`
	Status       Status      `json:"status" validate:"required,oneof=active resolved pending"`
	OwnerID      string      `json:"ownerId" validate:"required"`
	Owner        *Owner      `json:"postedBy,omitempty"`
	IsApproved   bool        `json:"isApproved"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Normalize trims the free-text fields.
func (i *Item) Normalize() {
	i.Title = strings.TrimSpace(i.Title)
	i.Description = strings.TrimSpace(i.Description)
	i.Category = strings.TrimSpace(i.Category)
	i.Location = strings.TrimSpace(i.Location)
	i.ContactInfo.Phone = strings.TrimSpace(i.ContactInfo.Phone)
	i.ContactInfo.Email = strings.TrimSpace(i.ContactInfo.Email)
}

// Violations returns every rule the item breaks, in field order. now is the
// upper bound for DateOccurred.
func (i *Item) Violations(now time.Time) []string {
	var out []string

	if err := validator.Validate(i); err != nil {
		if ve, ok := err.(*validator.ValidationError); ok {
			out = append(out, ve.Messages()...)
		} else {
			out = append(out, err.Error())
		}
	}

	if i.Category != "" && !IsValidCategory(i.Category) {
		out = append(out, "category must be one of: "+strings.Join(Categories(), ", "))
	}
	switch {
	case i.DateOccurred.IsZero():
		out = append(out, MsgDateRequired)
	case i.DateOccurred.After(now):
		out = append(out, "Date cannot be in the future")
	}
	if i.ContactInfo.Phone != "" && !phonePattern.MatchString(i.ContactInfo.Phone) {
		out = append(out, "Please enter a valid phone number")
	}
	if i.ContactInfo.Email != "" && !emailPattern.MatchString(i.ContactInfo.Email) {
		out = append(out, "Please enter a valid email")
	}

	return out
}

// Validate returns a validation AppError listing every violation, or nil.
func (i *Item) Validate(now time.Time) error {
	if v := i.Violations(now); len(v) > 0 {
		return apperrors.Validation(v)
	}
	return nil
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
