package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository"
)

func TestCompile_Defaults(t *testing.T) {
	c := Compile(Params{})

	assert.Equal(t, 1, c.Page.Page)
	assert.Equal(t, 10, c.Page.Limit)
	assert.Equal(t, 0, c.Options.Skip)
	assert.Equal(t, 10, c.Options.Limit)
	assert.True(t, c.Options.Filter.PublicOnly)
	assert.Empty(t, c.Options.Filter.OwnerID)
	assert.Empty(t, c.Options.Filter.Kind)
	assert.Equal(t, repository.Sort{Field: repository.SortCreatedAt, Ascending: false}, c.Options.Sort)
}

func TestCompile_Pagination(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
		wantSkip            int
	}{
		{"2", "2", 2, 2, 2},
		{"3", "25", 3, 25, 50},
		{"abc", "xyz", 1, 10, 0},
		{"0", "-5", 1, 10, 0},
		{"4", "1000", 4, 100, 300},
		{" 2 ", "5", 2, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.page+"/"+tt.limit, func(t *testing.T) {
			c := Compile(Params{Page: tt.page, Limit: tt.limit})
			assert.Equal(t, tt.wantPage, c.Page.Page)
			assert.Equal(t, tt.wantLimit, c.Options.Limit)
			assert.Equal(t, tt.wantSkip, c.Options.Skip)
			assert.Equal(t, (c.Page.Page-1)*c.Page.Limit, c.Options.Skip)
		})
	}
}

func TestCompile_KindOnlyExactValues(t *testing.T) {
	assert.Equal(t, domain.KindLost, Compile(Params{Type: "lost"}).Options.Filter.Kind)
	assert.Equal(t, domain.KindFound, Compile(Params{Type: "found"}).Options.Filter.Kind)

	for _, raw := range []string{"banana", "FOUND", "lost ", "all"} {
		assert.Empty(t, Compile(Params{Type: raw}).Options.Filter.Kind, raw)
	}
}

func TestCompile_Filters(t *testing.T) {
	c := Compile(Params{Category: "Keys", Location: " library ", Search: "black wallet"})

	assert.Equal(t, "Keys", c.Options.Filter.Category)
	assert.Equal(t, "library", c.Options.Filter.Location)
	assert.Equal(t, "black wallet", c.Options.Filter.Search)
	assert.True(t, c.Options.Filter.PublicOnly)
}

func TestCompile_Sort(t *testing.T) {
	tests := []struct {
		sortBy, sortOrder string
		want              repository.Sort
	}{
		{"", "", repository.Sort{Field: repository.SortCreatedAt}},
		{"title", "asc", repository.Sort{Field: repository.SortTitle, Ascending: true}},
		{"dateOccurred", "desc", repository.Sort{Field: repository.SortDateOccurred}},
		{"location", "ASC", repository.Sort{Field: repository.SortLocation}},
		{"ownerId", "asc", repository.Sort{Field: repository.SortCreatedAt, Ascending: true}},
		{"category", "sideways", repository.Sort{Field: repository.SortCategory}},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy+"/"+tt.sortOrder, func(t *testing.T) {
			assert.Equal(t, tt.want, Compile(Params{SortBy: tt.sortBy, SortOrder: tt.sortOrder}).Options.Sort)
		})
	}
}

func TestCompileMine(t *testing.T) {
	opts := CompileMine("u1")

	assert.Equal(t, "u1", opts.Filter.OwnerID)
	assert.False(t, opts.Filter.PublicOnly)
	assert.Zero(t, opts.Limit)
	assert.Equal(t, repository.Sort{Field: repository.SortCreatedAt}, opts.Sort)
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("page", "2")
	v.Set("limit", "5")
	v.Set("type", "found")
	v.Set("sortBy", "title")
	v.Set("sortOrder", "asc")

	p := FromValues(v)
	assert.Equal(t, Params{Page: "2", Limit: "5", Type: "found", SortBy: "title", SortOrder: "asc"}, p)
}
