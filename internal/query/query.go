// Package query turns raw listing parameters into repository list options.
// Compilation never fails: malformed values fall back to defaults.
package query

import (
	"net/url"
	"strings"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository"
	"github.com/saikat7890/Lost-and-Found-System/pkg/pagination"
)

// Params are the raw listing parameters as sent by a client.
type Params struct {
	Page      string
	Limit     string
	Type      string
	Category  string
	Location  string
	Search    string
	SortBy    string
	SortOrder string
}

// FromValues reads Params from URL query values.
func FromValues(v url.Values) Params {
	return Params{
		Page:      v.Get("page"),
		Limit:     v.Get("limit"),
		Type:      v.Get("type"),
		Category:  v.Get("category"),
		Location:  v.Get("location"),
		Search:    v.Get("search"),
		SortBy:    v.Get("sortBy"),
		SortOrder: v.Get("sortOrder"),
	}
}

// Compiled is a listing request ready for the repository, plus the page
// parameters needed to build the pagination block.
type Compiled struct {
	Options repository.ListOptions
	Page    pagination.Params
}

// Compile builds the public catalog listing: active, approved items only.
func Compile(p Params) Compiled {
	page := pagination.Parse(p.Page, p.Limit)

	filter := repository.ItemFilter{
		PublicOnly: true,
		Category:   strings.TrimSpace(p.Category),
		Location:   strings.TrimSpace(p.Location),
		Search:     strings.TrimSpace(p.Search),
	}
	if kind, ok := domain.ParseKind(p.Type); ok {
		filter.Kind = kind
	}

	return Compiled{
		Options: repository.ListOptions{
			Filter: filter,
			Sort:   compileSort(p.SortBy, p.SortOrder),
			Skip:   page.Skip,
			Limit:  page.Limit,
		},
		Page: page,
	}
}

// CompileMine builds the owner's listing: every item of ownerID regardless
// of status or approval, newest first, unpaged.
func CompileMine(ownerID string) repository.ListOptions {
	return repository.ListOptions{
		Filter: repository.ItemFilter{OwnerID: ownerID},
		Sort:   repository.Sort{Field: repository.SortCreatedAt},
	}
}

func compileSort(sortBy, sortOrder string) repository.Sort {
	field, ok := repository.ParseSortField(sortBy)
	if !ok {
		field = repository.SortCreatedAt
	}
	return repository.Sort{Field: field, Ascending: sortOrder == "asc"}
}
