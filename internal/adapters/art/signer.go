// Package art mints time-limited URLs for cover-art objects. The asset host
// verifies the same MAC; nothing here touches the asset bytes.
package art

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/earshot-labs/earshot/internal/core/ports"
)

// Signer produces presigned-style URLs of the form
// {base}/{key}?expires={unix}&signature={hex(hmac-sha256)}.
type Signer struct {
	baseURL string
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

var _ ports.ArtSigner = (*Signer)(nil)

// NewSigner constructs a Signer. ttl <= 0 defaults to 100 minutes, matching
// the expiry the asset host is provisioned with.
func NewSigner(baseURL, secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 100 * time.Minute
	}
	return &Signer{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Sign returns a fetchable URL for the object, valid until the TTL elapses.
func (s *Signer) Sign(objectKey string) (string, error) {
	if len(s.secret) == 0 || s.baseURL == "" {
		return "", errors.New("art signer: not configured")
	}
	if objectKey == "" {
		return "", errors.New("art signer: empty object key")
	}

	expires := s.now().Add(s.ttl).Unix()
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", objectKey, expires)
	signature := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("%s/%s?expires=%d&signature=%s", s.baseURL, objectKey, expires, signature), nil
}
