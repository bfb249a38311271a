package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/saikat7890/Lost-and-Found-System/pkg/errors"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func validItem() *Item {
	return &Item{
		ID:           "item-1",
		Title:        "Black Wallet",
		Description:  "Leather wallet",
		Category:     CategoryAccessories,
		Kind:         KindLost,
		Location:     "Library",
		DateOccurred: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:       StatusActive,
		OwnerID:      "u1",
		IsApproved:   true,
	}
}

func TestItem_Validate_Valid(t *testing.T) {
	assert.NoError(t, validItem().Validate(now))
}

func TestItem_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Item)
		want   string
	}{
		{"missing title", func(i *Item) { i.Title = "" }, "title is required"},
		{"long title", func(i *Item) { i.Title = strings.Repeat("a", 101) }, "title cannot exceed 100 characters"},
		{"long description", func(i *Item) { i.Description = strings.Repeat("a", 501) }, "description cannot exceed 500 characters"},
		{"missing location", func(i *Item) { i.Location = "" }, "location is required"},
		{"bad kind", func(i *Item) { i.Kind = "banana" }, "type must be one of: lost, found"},
		{"bad status", func(i *Item) { i.Status = "closed" }, "status must be one of: active, resolved, pending"},
		{"bad category", func(i *Item) { i.Category = "Pets" }, "category must be one of"},
		{"missing date", func(i *Item) { i.DateOccurred = time.Time{} }, MsgDateRequired},
		{"future date", func(i *Item) { i.DateOccurred = now.Add(24 * time.Hour) }, "Date cannot be in the future"},
		{"bad phone", func(i *Item) { i.ContactInfo.Phone = "0123" }, "Please enter a valid phone number"},
		{"bad email", func(i *Item) { i.ContactInfo.Email = "not-an-email" }, "Please enter a valid email"},
		{"too many images", func(i *Item) { i.Images = make([]Image, 6) }, "images must contain at most 5 entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(item)
			got := strings.Join(item.Violations(now), "; ")
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestItem_Validate_ListsEveryViolation(t *testing.T) {
	item := validItem()
	item.Title = ""
	item.Location = ""
	item.ContactInfo.Phone = "abc"

	err := item.Validate(now)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Fields, 3)
	assert.Equal(t, "title is required, location is required, Please enter a valid phone number", appErr.Message)
}

func TestItem_Validate_AcceptsValidContact(t *testing.T) {
	item := validItem()
	item.ContactInfo = ContactInfo{Phone: "+15551234567", Email: "jane.doe@example.com"}
	assert.NoError(t, item.Validate(now))
}

func TestItem_Normalize(t *testing.T) {
	item := &Item{Title: "  Keys ", Location: "\tGym\n", ContactInfo: ContactInfo{Email: " a@b.com "}}
	item.Normalize()
	assert.Equal(t, "Keys", item.Title)
	assert.Equal(t, "Gym", item.Location)
	assert.Equal(t, "a@b.com", item.ContactInfo.Email)
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("found")
	assert.True(t, ok)
	assert.Equal(t, KindFound, k)

	for _, raw := range []string{"banana", "Lost", ""} {
		_, ok := ParseKind(raw)
		assert.False(t, ok, raw)
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-01-10")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("2024-01-10T15:04:05+02:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 10, 13, 4, 5, 0, time.UTC), d)

	_, ok = ParseDate("10/01/2024")
	assert.False(t, ok)
}
