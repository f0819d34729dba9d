package content

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"time"

	"code.superseriousbusiness.org/httpsig"
)

var signedHeaders = []string{httpsig.RequestTarget, "host", "date", "digest"}

// Signer adds an HTTP signature to mutating requests so the content API can
// attribute them to this client.
type Signer struct {
	key   *rsa.PrivateKey
	keyId string
}

func NewSigner(key *rsa.PrivateKey, keyId string) *Signer {
	return &Signer{key: key, keyId: keyId}
}

// Sign sets Date and Host when missing, then the Digest and Signature headers.
// body must be the exact bytes sent with the request.
func (s *Signer) Sign(req *http.Request, body []byte) error {
	if req.Header.Get("Date") == "" {
		req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	}
	if req.Header.Get("Host") == "" {
		req.Header.Set("Host", req.URL.Host)
	}

	// httpsig signers are not safe for concurrent use, build one per request
	signer, _, err := httpsig.NewSigner(
		[]httpsig.Algorithm{httpsig.RSA_SHA256},
		httpsig.DigestSha256,
		signedHeaders,
		httpsig.Signature,
		0,
	)
	if err != nil {
		return fmt.Errorf("failed to create signer: %w", err)
	}
	if err := signer.SignRequest(s.key, s.keyId, req, body); err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}
	return nil
}
