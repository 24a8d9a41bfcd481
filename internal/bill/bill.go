package bill

// Bill represents one row of the NCSL legislation table.
type Bill struct {
	ID           string `json:"id"`
	Jurisdiction string `json:"jurisdiction"`
	Number       string `json:"number"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Category     string `json:"category"`
	Summary      string `json:"summary,omitempty"`
	URL          string `json:"url"`
}

// MakeID creates the composite bill ID from jurisdiction and bill number.
// It is the sole correlation key across runs: stable as long as the two
// source cells do not change.
func MakeID(jurisdiction, number string) string {
	return jurisdiction + "::" + number
}

// New creates a Bill with its ID populated.
func New(jurisdiction, number, title, status, category, summary, url string) *Bill {
	return &Bill{
		ID:           MakeID(jurisdiction, number),
		Jurisdiction: jurisdiction,
		Number:       number,
		Title:        title,
		Status:       status,
		Category:     category,
		Summary:      summary,
		URL:          url,
	}
}

// Meta is the comparable subset of bill fields persisted per ID under the
// snapshot policy. Two bills with equal Meta are considered unchanged.
type Meta struct {
	Title    string `json:"title"`
	Status   string `json:"status"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

// Meta returns the comparable field subset of the bill.
func (b *Bill) Meta() Meta {
	return Meta{
		Title:    b.Title,
		Status:   b.Status,
		Category: b.Category,
		URL:      b.URL,
	}
}
