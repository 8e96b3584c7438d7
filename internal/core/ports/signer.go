package ports

// ArtSigner mints a fetchable URL for a stored artwork object. A signing
// failure degrades the response to "no art"; it never fails the request.
type ArtSigner interface {
	Sign(objectKey string) (string, error)
}
