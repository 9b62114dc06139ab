package lots

import "time"

// Lot is one harvest campaign for a producer. Operators join it by typing
// its short Code at the scale-house terminal, so codes stay short, uppercase
// and unique.
//
// At most one lot is Active at a time; only the active lot accepts lot-code
// logins.
type Lot struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Cereal    string    `json:"cereal" db:"cereal"`
	StartDate time.Time `json:"startDate" db:"start_date"`
	Code      string    `json:"code" db:"code"`
	Active    bool      `json:"active" db:"active"`
	Disabled  bool      `json:"disabled" db:"disabled"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Page is one page of search results.
type Page struct {
	Data       []Lot `json:"data"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}
