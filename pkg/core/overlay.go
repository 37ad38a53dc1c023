// pkg/core/overlay.go
package core

// Path is a vector drawing on a page. Points holds the host's path
// description, a JSON array of ["M"|"L", x, y] commands.
type Path struct {
	ID          string  `json:"id"`
	PageID      string  `json:"pageId"`
	Layer       string  `json:"layer"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth int     `json:"stroke_width"`
	Rotation    float64 `json:"rotation"`
	Points      string  `json:"_path"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
}

// Text is a free text label on a page.
type Text struct {
	ID         string  `json:"id"`
	PageID     string  `json:"pageId"`
	Layer      string  `json:"layer"`
	Text       string  `json:"text"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	FontSize   int     `json:"font_size"`
	FontFamily string  `json:"font_family"`
}
