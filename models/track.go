package models

// Track is a playlist entry resolved from the metadata provider. Exactly one
// of MBID and FallbackKey identifies it: MBID when the provider issued a
// canonical id, FallbackKey otherwise.
type Track struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album,omitempty"`
	MBID        string `json:"mbid,omitempty"`
	FallbackKey string `json:"fallbackKey,omitempty"`
	ImageURL    string `json:"image,omitempty"`
}

// Key returns whichever identifier the track carries.
func (t Track) Key() string {
	if t.MBID != "" {
		return t.MBID
	}
	return t.FallbackKey
}
