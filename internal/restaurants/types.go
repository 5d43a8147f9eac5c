package restaurants

// Business is an upstream business record. Responses are forwarded as raw
// bytes and never decoded into this type by the proxy itself.
type Business struct {
	ID           string       `json:"id"`
	Alias        string       `json:"alias,omitempty"`
	Name         string       `json:"name"`
	ImageURL     string       `json:"image_url,omitempty"`
	IsClosed     bool         `json:"is_closed"`
	URL          string       `json:"url,omitempty"`
	ReviewCount  int          `json:"review_count,omitempty"`
	Categories   []Category   `json:"categories,omitempty"`
	Rating       float64      `json:"rating,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	Transactions []string     `json:"transactions,omitempty"`
	Price        string       `json:"price,omitempty"`
	Location     *Location    `json:"location,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	DisplayPhone string       `json:"display_phone,omitempty"`
	Distance     float64      `json:"distance,omitempty"`
	Photos       []string     `json:"photos,omitempty"`
}

// Category is a business category.
type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a business address.
type Location struct {
	Address1       string   `json:"address1,omitempty"`
	Address2       string   `json:"address2,omitempty"`
	Address3       string   `json:"address3,omitempty"`
	City           string   `json:"city,omitempty"`
	ZipCode        string   `json:"zip_code,omitempty"`
	Country        string   `json:"country,omitempty"`
	State          string   `json:"state,omitempty"`
	DisplayAddress []string `json:"display_address,omitempty"`
}

// SearchResponse is an upstream search result page.
type SearchResponse struct {
	Businesses []Business `json:"businesses"`
	Total      int        `json:"total"`
	Region     *Region    `json:"region,omitempty"`
}

// Region is the map region covered by a search result.
type Region struct {
	Center Coordinates `json:"center"`
}
