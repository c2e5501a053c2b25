package auth

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"regexp"
	"strings"

	"wikiextract/internal/logging"
)

var (
	// ErrDigestFIPSCompliance means the server offered only MD5 while FIPS mode is on.
	ErrDigestFIPSCompliance = errors.New("server offered only non-FIPS compliant Digest algorithms (MD5) while FIPS mode is enabled")
	// ErrDigestUnsupported means the server offered no algorithm this client implements.
	ErrDigestUnsupported = errors.New("server offered no Digest algorithms supported by the client")
	// ErrDigestQopUnsupported means the server requires an unknown QOP.
	ErrDigestQopUnsupported = errors.New("server requires an unsupported QOP value")
	// ErrDigestBody means a request with a body was sent through the transport.
	ErrDigestBody = errors.New("digest transport only supports requests without a body")
)

type digestChallenge struct {
	Realm      string
	Nonce      string
	Opaque     string
	Algorithm  string
	QopOptions []string
}

// DigestTransport answers a Digest challenge from the wiki with a single
// authenticated retry. Lookups are bodyless GETs, so requests carrying a body
// are rejected.
type DigestTransport struct {
	Username string
	Password string
	FipsMode bool
	Next     http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *DigestTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.Body != http.NoBody {
		return nil, ErrDigestBody
	}

	resp, err := t.Next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	authHeader := resp.Header.Get("WWW-Authenticate")
	if !strings.HasPrefix(strings.ToLower(authHeader), "digest ") {
		logging.Logf(logging.Debug, "Digest: 401 without a Digest challenge ('%s'), passing it through", authHeader)
		return resp, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	challenge, err := parseDigestChallenge(authHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Digest challenge header '%s': %w", authHeader, err)
	}
	algo, qop, err := t.selectAlgorithmAndQop(challenge)
	if err != nil {
		return nil, err
	}
	logging.Logf(logging.Debug, "Digest: algorithm %s, qop '%s' (FIPS mode: %v)", algo, qop, t.FipsMode)

	cnonce, err := generateCNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cnonce: %w", err)
	}
	const nc = uint32(1)
	uri := req.URL.RequestURI()
	response := digestResponse(t.Username, t.Password, req.Method, uri, challenge.Realm, challenge.Nonce, algo, qop, nc, cnonce)

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", formatDigestAuthorization(t.Username, challenge, uri, algo, qop, nc, cnonce, response))
	return t.Next.RoundTrip(authed)
}

// selectAlgorithmAndQop prefers SHA-256 over MD5 and "auth" over "auth-int".
func (t *DigestTransport) selectAlgorithmAndQop(c *digestChallenge) (string, string, error) {
	var algo string
	switch strings.ToUpper(c.Algorithm) {
	case "SHA-256":
		algo = "SHA-256"
	case "SHA-256-SESS":
		algo = "SHA-256-sess"
	case "MD5", "":
		algo = "MD5"
	case "MD5-SESS":
		algo = "MD5-sess"
	default:
		return "", "", fmt.Errorf("%w: server offered '%s'", ErrDigestUnsupported, c.Algorithm)
	}
	if t.FipsMode && strings.HasPrefix(algo, "MD5") {
		return "", "", ErrDigestFIPSCompliance
	}

	qop := ""
	for _, offered := range c.QopOptions {
		if offered == "auth" {
			qop = "auth"
			break
		}
		if offered == "auth-int" {
			qop = "auth-int"
		}
	}
	if len(c.QopOptions) > 0 && qop == "" {
		return "", "", fmt.Errorf("%w: server offered QOP(s) '%s'", ErrDigestQopUnsupported, strings.Join(c.QopOptions, ","))
	}
	return algo, qop, nil
}

var digestParamRegex = regexp.MustCompile(`([a-zA-Z0-9_-]+)\s*=\s*(?:"([^"]*)"|([^",\s]+))`)

func parseDigestChallenge(header string) (*digestChallenge, error) {
	const prefix = "digest "
	if !strings.HasPrefix(strings.ToLower(header), prefix) {
		return nil, fmt.Errorf("invalid Digest header prefix: %s", header)
	}
	matches := digestParamRegex.FindAllStringSubmatch(strings.TrimSpace(header[len(prefix):]), -1)
	if matches == nil {
		return nil, errors.New("could not parse any parameters from Digest challenge")
	}

	params := make(map[string]string, len(matches))
	for _, m := range matches {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		params[strings.ToLower(m[1])] = value
	}

	c := &digestChallenge{
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		Opaque:    params["opaque"],
		Algorithm: params["algorithm"],
	}
	for _, qop := range strings.Split(params["qop"], ",") {
		qop = strings.ToLower(strings.TrimSpace(qop))
		if qop != "" {
			c.QopOptions = append(c.QopOptions, qop)
		}
	}
	if c.Realm == "" || c.Nonce == "" {
		return nil, errors.New("missing required Digest parameters (realm or nonce)")
	}
	return c, nil
}

func generateCNonce() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashHex(hasher hash.Hash, data string) string {
	hasher.Reset()
	_, _ = hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}

// digestResponse computes the RFC 7616 response value for a bodyless request.
func digestResponse(username, password, method, uri, realm, nonce, algo, qop string, nc uint32, cnonce string) string {
	var hasher hash.Hash = md5.New()
	if strings.HasPrefix(algo, "SHA-256") {
		hasher = sha256.New()
	}

	ha1 := hashHex(hasher, username+":"+realm+":"+password)
	if strings.HasSuffix(algo, "-sess") {
		ha1 = hashHex(hasher, ha1+":"+nonce+":"+cnonce)
	}

	ha2 := hashHex(hasher, method+":"+uri)
	if qop == "auth-int" {
		ha2 = hashHex(hasher, method+":"+uri+":"+hashHex(hasher, ""))
	}

	if qop == "" {
		return hashHex(hasher, ha1+":"+nonce+":"+ha2)
	}
	return hashHex(hasher, fmt.Sprintf("%s:%s:%08x:%s:%s:%s", ha1, nonce, nc, cnonce, qop, ha2))
}

func formatDigestAuthorization(username string, c *digestChallenge, uri, algo, qop string, nc uint32, cnonce, response string) string {
	parts := []string{
		fmt.Sprintf(`username="%s"`, username),
		fmt.Sprintf(`realm="%s"`, c.Realm),
		fmt.Sprintf(`nonce="%s"`, c.Nonce),
		fmt.Sprintf(`uri="%s"`, uri),
		fmt.Sprintf(`response="%s"`, response),
		"algorithm=" + algo,
	}
	if c.Opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, c.Opaque))
	}
	if qop != "" {
		parts = append(parts, "qop="+qop, fmt.Sprintf("nc=%08x", nc), fmt.Sprintf(`cnonce="%s"`, cnonce))
	}
	return "Digest " + strings.Join(parts, ", ")
}
