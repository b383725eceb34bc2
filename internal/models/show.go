package models

// ShowMeta is the canonical title and first-air year of a show as reported by
// the metadata provider
type ShowMeta struct {
	Title string `json:"title"`
	Year  string `json:"year"` // Always four digits
}
