package pagination

import "encoding/base64"

func EncodeCursorRaw(payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}
