package models

// Track is a top-level subject area with its fixed list of subcategory topics.
type Track struct {
	Name   string   `json:"name" yaml:"name"`
	Value  string   `json:"value" yaml:"value"`
	Topics []string `json:"topics" yaml:"topics"`
}
