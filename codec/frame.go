package codec

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
)

// frameHeaderLen is the fixed outer-frame prefix before the AEAD
// ciphertext: packet_kind(1) + chat_id_hash(4) + sender_pubkey(32) + nonce(24).
const frameHeaderLen = 1 + chatIDHashLen + pubKeyLen + nonceLen

// Frame is the parsed outer envelope common to every group packet.
type Frame struct {
	Kind            PacketKind
	ChatIDHash      uint32
	SenderPublicKey [32]byte
	Nonce           [24]byte
	Ciphertext      []byte
}

func newNonce() ([24]byte, error) {
	var n [24]byte
	if _, err := io.ReadFull(rand.Reader, n[:]); err != nil {
		return n, err
	}
	return n, nil
}

func writeHeader(kind PacketKind, chatIDHash uint32, senderPub [32]byte, nonce [24]byte) []byte {
	out := make([]byte, frameHeaderLen)
	out[0] = byte(kind)
	binary.BigEndian.PutUint32(out[1:1+chatIDHashLen], chatIDHash)
	copy(out[1+chatIDHashLen:1+chatIDHashLen+pubKeyLen], senderPub[:])
	copy(out[1+chatIDHashLen+pubKeyLen:], nonce[:])
	return out
}

// ParseFrame splits a raw datagram into its outer Frame fields,
// without decrypting the payload.
func ParseFrame(data []byte) (*Frame, error) {
	if len(data) < frameHeaderLen {
		return nil, errShortBuffer("packet shorter than outer frame header")
	}
	f := &Frame{Kind: PacketKind(data[0])}
	f.ChatIDHash = binary.BigEndian.Uint32(data[1 : 1+chatIDHashLen])
	copy(f.SenderPublicKey[:], data[1+chatIDHashLen:1+chatIDHashLen+pubKeyLen])
	copy(f.Nonce[:], data[1+chatIDHashLen+pubKeyLen:frameHeaderLen])
	f.Ciphertext = data[frameHeaderLen:]
	return f, nil
}

func innerBody(innerKind InnerKind, messageID uint64, payload []byte, withMessageID bool) []byte {
	hdrLen := 1
	if withMessageID {
		hdrLen += messageIDLen
	}
	body := make([]byte, hdrLen+len(payload))
	body[0] = byte(innerKind)
	if withMessageID {
		binary.BigEndian.PutUint64(body[1:1+messageIDLen], messageID)
		copy(body[1+messageIDLen:], payload)
	} else {
		copy(body[1:], payload)
	}
	return body
}

// WrapLossless frames and encrypts a LOSSLESS packet using the
// per-peer symmetric shared key.
func WrapLossless(chatIDHash uint32, senderPub [32]byte, sharedKey [32]byte, innerKind InnerKind, messageID uint64, payload []byte) ([]byte, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	body := PadLossless(innerBody(innerKind, messageID, payload, true))
	ct := secretbox.Seal(nil, body, &nonce, &sharedKey)
	return append(writeHeader(PacketKindLossless, chatIDHash, senderPub, nonce), ct...), nil
}

// WrapLossy frames and encrypts a LOSSY packet (no message id).
func WrapLossy(chatIDHash uint32, senderPub [32]byte, sharedKey [32]byte, innerKind InnerKind, payload []byte) ([]byte, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	body := PadLossless(innerBody(innerKind, 0, payload, false))
	ct := secretbox.Seal(nil, body, &nonce, &sharedKey)
	return append(writeHeader(PacketKindLossy, chatIDHash, senderPub, nonce), ct...), nil
}

// WrapHandshake frames and asymmetrically encrypts a HANDSHAKE packet
// using curve25519 box between the sender's and receiver's long-term
// encryption keys.
func WrapHandshake(chatIDHash uint32, senderPub, recipientPub [32]byte, senderPriv [32]byte, payload []byte) ([]byte, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	ct := box.Seal(nil, payload, &nonce, &recipientPub, &senderPriv)
	return append(writeHeader(PacketKindHandshake, chatIDHash, senderPub, nonce), ct...), nil
}

// UnwrapLossless decrypts and un-pads a LOSSLESS packet's ciphertext,
// returning the inner kind, message id, and payload.
func UnwrapLossless(f *Frame, sharedKey [32]byte) (InnerKind, uint64, []byte, error) {
	plain, ok := secretbox.Open(nil, f.Ciphertext, &f.Nonce, &sharedKey)
	if !ok {
		return 0, 0, nil, errDecryptFailed("lossless secretbox open failed")
	}
	body, err := StripPadding(plain)
	if err != nil {
		return 0, 0, nil, err
	}
	if len(body) < 1+messageIDLen {
		return 0, 0, nil, errShortBuffer("lossless body shorter than kind+message_id")
	}
	kind := InnerKind(body[0])
	msgID := binary.BigEndian.Uint64(body[1 : 1+messageIDLen])
	return kind, msgID, body[1+messageIDLen:], nil
}

// UnwrapLossy decrypts and un-pads a LOSSY packet's ciphertext.
func UnwrapLossy(f *Frame, sharedKey [32]byte) (InnerKind, []byte, error) {
	plain, ok := secretbox.Open(nil, f.Ciphertext, &f.Nonce, &sharedKey)
	if !ok {
		return 0, nil, errDecryptFailed("lossy secretbox open failed")
	}
	body, err := StripPadding(plain)
	if err != nil {
		return 0, nil, err
	}
	if len(body) < 1 {
		return 0, nil, errShortBuffer("lossy body shorter than kind byte")
	}
	return InnerKind(body[0]), body[1:], nil
}

// UnwrapHandshake asymmetrically decrypts a HANDSHAKE packet using
// the recipient's long-term encryption private key.
func UnwrapHandshake(f *Frame, recipientPriv [32]byte) ([]byte, error) {
	plain, ok := box.Open(nil, f.Ciphertext, &f.Nonce, &f.SenderPublicKey, &recipientPriv)
	if !ok {
		return nil, errDecryptFailed("handshake box open failed")
	}
	return plain, nil
}
