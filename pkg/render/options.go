package render

// RenderOptions carry per-call presentation data that is not part of the
// display model itself.
type RenderOptions struct {
	// Locale is echoed into the HTML lang attribute.
	Locale string `json:"locale"`
	// Title heads the rendered block when set.
	Title string `json:"title,omitempty"`
	// DismissLabel captions the dismiss control of error banners.
	DismissLabel string `json:"dismiss_label"`
	// ScreenID is exposed as a data attribute so scripts can post the dismiss
	// action back to the right screen.
	ScreenID string `json:"screen_id,omitempty"`
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.DismissLabel == "" {
		o.DismissLabel = "Dismiss"
	}
	if o.Locale == "" {
		o.Locale = "en"
	}
	return o
}
