package flight

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint is the cache key of a search: MD5 over the key-sorted JSON
// form of the parameters. MD5 is only a content fingerprint here.
func Fingerprint(p SearchParameters) (string, error) {
	canonical, err := canonicalJSON(p)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON re-encodes v through a generic map; encoding/json writes map
// keys in sorted order at every nesting level.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
