// Package headers extracts and verifies the delegator's inbound request
// headers: bearer authorization and the feature-flag header.
package headers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// EnvCookieSecret names the environment variable holding the HMAC secret
// bearer tokens are signed with.
const EnvCookieSecret = "HTTP_COOKIE_SECRET"

// AuthScheme is the scheme of an Authorization header.
type AuthScheme string

const (
	SchemeBasic  AuthScheme = "Basic"
	SchemeBearer AuthScheme = "Bearer"
)

// Authorization is the parsed Authorization header. Scheme and Token are
// empty when the header is absent or not understood.
type Authorization struct {
	Scheme AuthScheme
	Token  string
}

// BearerFields is the result of a verified bearer token.
type BearerFields struct {
	OwnerID  string
	RawValue string
}

// ParseAuthorization splits an Authorization header value into scheme and
// token. Unrecognized schemes parse as empty.
func ParseAuthorization(value string) Authorization {
	scheme, token, found := strings.Cut(value, " ")
	if !found {
		return Authorization{}
	}
	switch scheme {
	case string(SchemeBasic):
		return Authorization{Scheme: SchemeBasic, Token: token}
	case string(SchemeBearer):
		return Authorization{Scheme: SchemeBearer, Token: token}
	default:
		return Authorization{}
	}
}

// VerifyBearer checks the bearer token signature against secret and returns
// the owner it identifies. The token is either "s:" plus the legacy cookie
// form, stripped to the inner value, or directly "<ownerId>.<signature>"
// where the signature is HMAC-SHA256 of the owner id, base64 encoded
// without padding. Any failure, including a non-Bearer scheme, yields nil.
func (a Authorization) VerifyBearer(secret string) *BearerFields {
	if a.Scheme != SchemeBearer {
		return nil
	}
	token := strings.TrimPrefix(a.Token, "s:")

	// owner ids may contain dots; the signature never does
	split := strings.LastIndex(token, ".")
	if split < 1 || split == len(token)-1 {
		return nil
	}
	ownerID, signature := token[:split], token[split+1:]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ownerID))
	expected := base64.StdEncoding.WithPadding(base64.NoPadding).EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil
	}
	return &BearerFields{OwnerID: ownerID, RawValue: a.Token}
}

// SignOwner produces the signed bearer token for an owner id. The inverse
// of VerifyBearer, used by tests and tooling.
func SignOwner(ownerID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ownerID))
	return ownerID + "." + base64.StdEncoding.WithPadding(base64.NoPadding).EncodeToString(mac.Sum(nil))
}
