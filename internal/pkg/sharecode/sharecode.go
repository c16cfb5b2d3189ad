// Package sharecode encodes a course selection for share links and cookies:
// a JSON array of course IDs, base64 encoded.
package sharecode

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/yigit/lecturetable/internal/pkg/apperrors"
)

// QueryParam is the share link query parameter.
const QueryParam = "share"

// Empty is the code for an empty selection.
var Empty = Encode(nil)

// Encode returns the share code for a list of course IDs.
func Encode(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode parses a share code. Percent-encoded input, as found in cookie
// values and unescaped query strings, is accepted.
func Decode(code string) ([]string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty", apperrors.ErrInvalidShareCode)
	}
	if strings.Contains(code, "%") {
		if unescaped, err := url.QueryUnescape(code); err == nil {
			code = unescaped
		}
	}
	// a '+' lost to form decoding comes back as a space
	code = strings.ReplaceAll(code, " ", "+")

	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(code, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidShareCode, err)
		}
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidShareCode, err)
	}
	return ids, nil
}

// IsEmpty reports whether a stored code carries no selection.
func IsEmpty(code string) bool {
	ids, err := Decode(code)
	return err == nil && len(ids) == 0
}

// Link builds the public share URL for a selection.
func Link(base string, ids []string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + QueryParam + "=" + Encode(ids)
}
