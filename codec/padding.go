package codec

// padAlign is the byte boundary lossless/lossy plaintext bodies are
// padded to before encryption.
const padAlign = 8

// PadLossless prepends zero bytes to body (already
// [inner_kind | message_id? | payload]) so the plaintext length is a
// multiple of padAlign. The leading byte of body must be nonzero
// (every InnerKind value is >= 1), which is what lets StripPadding
// reconstruct the padding length on the receive side.
func PadLossless(body []byte) []byte {
	rem := len(body) % padAlign
	padLen := 0
	if rem != 0 {
		padLen = padAlign - rem
	}
	if padLen == 0 {
		return body
	}
	out := make([]byte, padLen+len(body))
	copy(out[padLen:], body)
	return out
}

// StripPadding removes the leading zero bytes PadLossless added,
// returning the original [inner_kind | ...] body. It fails if the
// plaintext is entirely zero (no inner kind byte can be zero).
func StripPadding(data []byte) ([]byte, error) {
	i := 0
	for i < len(data) && data[i] == 0 {
		i++
	}
	if i == len(data) {
		return nil, errMalformed("lossless plaintext has no non-zero inner kind byte")
	}
	return data[i:], nil
}
