package domain

// Catalogue search limits.
const (
	DefaultCatalogLimit = 5
	MaxCatalogLimit     = 50
)

// CatalogTrack is one hit from the music catalogue. Its ID becomes the
// external ID of the stored track.
type CatalogTrack struct {
	ID     string `json:"track_id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	URI    string `json:"uri,omitempty"`
}

// TrackInput maps the hit onto an ingestion candidate. The first credited
// artist stands in for the composer.
func (t CatalogTrack) TrackInput() TrackInput {
	return TrackInput{
		ExternalID: t.ID,
		Name:       t.Name,
		Composer:   t.Artist,
	}
}

// DiscoveryResult is a catalogue search whose hits were handed to bulk sync.
type DiscoveryResult struct {
	Tracks []CatalogTrack `json:"tracks"`
	Report SyncReport     `json:"report"`
}

// TrackInputs maps every hit onto an ingestion candidate, in order.
func TrackInputs(tracks []CatalogTrack) []TrackInput {
	inputs := make([]TrackInput, len(tracks))
	for i, t := range tracks {
		inputs[i] = t.TrackInput()
	}
	return inputs
}
