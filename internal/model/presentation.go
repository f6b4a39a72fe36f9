package model

// Slide types
const (
	SlideTypeTitle   = "title"
	SlideTypeContent = "content"
)

// Slide is one slide of the pitch deck.
type Slide struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Content  []string `json:"content,omitempty"`
}

// SlideDeck is the structured 7-slide deck handed to the document renderer.
type SlideDeck struct {
	Slides []Slide `json:"slides"`
}
