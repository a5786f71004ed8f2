package model

// DisplayModel is what a UI binding renders after a submission: a labeled
// price on success, or the untouched Failure plus a user-facing message.
type DisplayModel struct {
	ListingType ListingType `json:"listing_type"`
	Label       string      `json:"label,omitempty"`
	Value       string      `json:"value,omitempty"`
	Amount      float64     `json:"amount,omitempty"`
	Currency    string      `json:"currency,omitempty"`

	Failure     *Failure `json:"failure,omitempty"`
	Message     string   `json:"message,omitempty"`
	Detail      string   `json:"detail,omitempty"`
	Dismissible bool     `json:"dismissible,omitempty"`
}

// IsFailure reports whether the display carries an error state.
func (d DisplayModel) IsFailure() bool {
	return d.Failure != nil
}

// IsZero reports whether nothing has been presented yet.
func (d DisplayModel) IsZero() bool {
	return d.Label == "" && d.Failure == nil
}
