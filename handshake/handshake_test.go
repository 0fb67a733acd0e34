package handshake

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/crypto/keys"
	"github.com/ingvar1995/toxcore/internal/clock"
	"github.com/ingvar1995/toxcore/peerconn"
	"github.com/stretchr/testify/require"
)

// TestThreeStepHandshakeDerivesMatchingSharedKey drives the full
// REQUEST/RESPONSE/HS_RESPONSE_ACK exchange between two in-process
// drivers and asserts both sides land on the identical shared key.
func TestThreeStepHandshakeDerivesMatchingSharedKey(t *testing.T) {
	chatHash := uint32(99)
	clk := clock.NewFake(time.Now())

	identityA, err := keys.NewIdentity()
	require.NoError(t, err)
	identityB, err := keys.NewIdentity()
	require.NoError(t, err)

	connA := &peerconn.Conn{SendWindow: peerconn.NewSendWindow(time.Second), RecvWindow: peerconn.NewRecvWindow()}
	connB := &peerconn.Conn{SendWindow: peerconn.NewSendWindow(time.Second), RecvWindow: peerconn.NewRecvWindow()}

	var wireAtoB, wireBtoA [][]byte
	sendA := Sender(func(d []byte) error { wireAtoB = append(wireAtoB, d); return nil })
	sendB := Sender(func(d []byte) error { wireBtoA = append(wireBtoA, d); return nil })

	driverA := New(chatHash, identityA, NoopEvents{}, sendA, func() uint32 { return 1 }, nil, clk, time.Second)
	driverB := New(chatHash, identityB, NoopEvents{}, sendB, func() uint32 { return 7 }, nil, clk, time.Second)

	relay := codec.RelayNode{IP: net.ParseIP("203.0.113.1").To4(), Port: 33445, PublicKey: [32]byte{5}}
	require.NoError(t, driverA.InitiateRequest(connA, identityB.EncryptPublicBytes(), RequestPeerInfoExchange, JoinPublic, 1, relay))
	require.Len(t, wireAtoB, 1)

	frame, err := codec.ParseFrame(wireAtoB[0])
	require.NoError(t, err)
	plainReq, err := codec.UnwrapHandshake(frame, rawPriv(identityB))
	require.NoError(t, err)
	require.NoError(t, driverB.HandleInbound(context.Background(), clk.Now(), connB, identityA.EncryptPublicBytes(), plainReq))
	require.Len(t, wireBtoA, 1)

	frame2, err := codec.ParseFrame(wireBtoA[0])
	require.NoError(t, err)
	plainResp, err := codec.UnwrapHandshake(frame2, rawPriv(identityA))
	require.NoError(t, err)
	require.NoError(t, driverA.HandleInbound(context.Background(), clk.Now(), connA, identityB.EncryptPublicBytes(), plainResp))

	require.Equal(t, connA.SharedKey, connB.SharedKey)
	// A sent the HS_RESPONSE_ACK itself and is already handshaked; B is
	// still waiting for that ack to arrive.
	require.True(t, connA.Handshaked)
	require.False(t, connB.Handshaked)

	// The RESPONSE carries B's own shared-state version, not an echo of A's.
	frameResp, err := codec.ParseFrame(wireBtoA[0])
	require.NoError(t, err)
	plain, err := codec.UnwrapHandshake(frameResp, rawPriv(identityA))
	require.NoError(t, err)
	respMsg, err := Unpack(plain)
	require.NoError(t, err)
	require.Equal(t, uint32(7), respMsg.SelfSharedStateVersion)

	// Each handshake direction consumed message id 1 implicitly, so A's
	// ack took id 2 through its send window and both receive cursors sit
	// past the implicit message.
	require.Len(t, wireAtoB, 2)
	require.Equal(t, uint64(3), connA.SendWindow.NextID())
	require.Equal(t, uint64(2), connB.SendWindow.NextID())
	require.Equal(t, uint64(2), connA.RecvWindow.NextExpected())
	require.Equal(t, uint64(2), connB.RecvWindow.NextExpected())

	require.NoError(t, driverB.HandleResponseAck(context.Background(), connB, identityA.EncryptPublicBytes()))
	require.True(t, connB.Handshaked)
}

func rawPriv(identity *gcrypto.Identity) [32]byte {
	type rawPrivate interface{ RawPrivateKey() []byte }
	var out [32]byte
	if rp, ok := identity.Encrypt.(rawPrivate); ok {
		copy(out[:], rp.RawPrivateKey())
	}
	return out
}
