package domain

import "time"

// Card is one printing in the read-only catalog.
type Card struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	ManaCost        string     `json:"manaCost,omitempty"`
	TypeLine        string     `json:"typeLine,omitempty"`
	OracleText      string     `json:"oracleText,omitempty"`
	FlavorText      string     `json:"flavorText,omitempty"`
	Power           string     `json:"power,omitempty"`
	Toughness       string     `json:"toughness,omitempty"`
	Loyalty         string     `json:"loyalty,omitempty"`
	SetCode         string     `json:"setCode"`
	SetName         string     `json:"setName,omitempty"`
	CollectorNumber string     `json:"collectorNumber,omitempty"`
	Rarity          string     `json:"rarity,omitempty"`
	Artist          string     `json:"artist,omitempty"`
	ImageURINormal  string     `json:"imageUriNormal,omitempty"`
	ReleasedAt      *time.Time `json:"releasedAt,omitempty"`
}

// CardFilter narrows a catalog search. Empty fields do not filter.
type CardFilter struct {
	// Name matches case-insensitively anywhere in the card name.
	Name    string
	SetCode string
	Rarity  string
}

// PageRequest is a zero-based page index and a page size.
type PageRequest struct {
	Page int
	Size int
}

// CardPage is one page of search results.
type CardPage struct {
	Cards []Card
	Total int64
	Page  PageRequest
}

// TotalPages is the number of pages needed to show Total results.
func (p CardPage) TotalPages() int {
	if p.Page.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Page.Size) - 1) / int64(p.Page.Size))
}
