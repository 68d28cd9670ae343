// Package models contains shared data models used across the shopscout codebase.
package models

// Category is one node of the marketplace category tree, flattened.
// A snapshot of the whole tree is rebuilt wholesale on every refresh;
// ids are unique within a snapshot and every non-main category's
// ParentID resolves within the same snapshot.
type Category struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsMain      bool   `json:"is_main"`
	ParentID    string `json:"parent_id,omitempty"`
}
