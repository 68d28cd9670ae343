package models

// Seller identifies the shop behind an accepted product.
type Seller struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Verified   bool   `json:"verified"`
	IsOfficial bool   `json:"isOfficial"`
}

// Product is one accepted feed candidate. Immutable once appended to a job.
// ClassificationScore is the probability returned by the external classifier,
// always in [0, 1].
type Product struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Rating              float64 `json:"rating"`
	Reviews             int     `json:"reviews"`
	Sold                int     `json:"sold"`
	Seller              Seller  `json:"seller"`
	ImageURL            string  `json:"imageUrl"`
	URL                 string  `json:"url"`
	ClassificationScore float64 `json:"classificationScore"`
}
