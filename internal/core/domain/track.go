package domain

// Track is a single playable episode. Token is the episode's 1-based position
// in natural (oldest-first) feed order, assigned at sync time and never
// reassigned: shuffling reorders the playlist, but every track keeps the token
// it was published with.
type Track struct {
	Token string `json:"token"`
	URL   string `json:"url"`
	Title string `json:"title"`
}
