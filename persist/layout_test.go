package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ingvar1995/toxcore/codec"
)

func sampleLayout() GroupLayout {
	return GroupLayout{
		FounderPublicKey:     [32]byte{1, 2, 3},
		GroupName:            []byte("book club"),
		PrivacyState:         1,
		MaxPeers:             100,
		Password:             []byte("s3cret"),
		ModListHash:          [32]byte{4, 5, 6},
		SharedStateVersion:   7,
		SharedStateSignature: [64]byte{9},
		Topic: TopicLayout{
			Text:          []byte("welcome"),
			SetterSignKey: [32]byte{10},
			Version:       2,
			Signature:     [64]byte{11},
		},
		ChatPublicKey: [32]byte{12},
		ChatSecretKey: []byte("founder-only-secret"),
		ModList:       [][32]byte{{13}, {14}},
		SelfPublicKey: [32]byte{15},
		SelfSecretKey: []byte("self-secret"),
		SelfNick:      []byte("alice"),
		SelfRole:      3,
		SelfStatus:    0,
		SavedPeers: []SavedPeerAddress{
			{
				PublicKey: [32]byte{16},
				Relay: codec.RelayNode{
					IP:        []byte{127, 0, 0, 1},
					Port:      33445,
					PublicKey: [32]byte{17},
				},
			},
		},
	}
}

func TestGroupLayoutRoundTripsThroughYAML(t *testing.T) {
	in := sampleLayout()

	data, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out GroupLayout
	require.NoError(t, yaml.Unmarshal(data, &out))

	assert.Equal(t, in.FounderPublicKey, out.FounderPublicKey)
	assert.Equal(t, in.GroupName, out.GroupName)
	assert.Equal(t, in.Password, out.Password)
	assert.Equal(t, in.ModListHash, out.ModListHash)
	assert.Equal(t, in.SharedStateSignature, out.SharedStateSignature)
	assert.Equal(t, in.Topic, out.Topic)
	assert.Equal(t, in.ChatSecretKey, out.ChatSecretKey)
	assert.Equal(t, in.ModList, out.ModList)
	assert.Equal(t, in.SelfSecretKey, out.SelfSecretKey)
	assert.Equal(t, in.SelfNick, out.SelfNick)
	require.Len(t, out.SavedPeers, 1)
	assert.Equal(t, in.SavedPeers[0].PublicKey, out.SavedPeers[0].PublicKey)
	assert.Equal(t, in.SavedPeers[0].Relay.Port, out.SavedPeers[0].Relay.Port)
	assert.Equal(t, in.SavedPeers[0].Relay.PublicKey, out.SavedPeers[0].Relay.PublicKey)
}

func TestGroupLayoutOmitsSecretKeyForNonFounder(t *testing.T) {
	in := sampleLayout()
	in.ChatSecretKey = nil

	data, err := yaml.Marshal(in)
	require.NoError(t, err)
	require.NotContains(t, string(data), "chat_secret_key")

	var out GroupLayout
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Nil(t, out.ChatSecretKey)
}
