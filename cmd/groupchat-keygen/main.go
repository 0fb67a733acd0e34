package main

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/crypto/keys"
)

var rootCmd = &cobra.Command{
	Use:   "groupchat-keygen",
	Short: "Generate group-chat identity keypairs",
	Long: `groupchat-keygen generates the keypairs a group-chat participant
needs: a founder chat identity (a bare Ed25519 signing key, the
chat_id itself) or a self identity (an Ed25519 signing key plus an
independent X25519 encryption key, per the protocol's self-identity
split).

Keys are printed base58-encoded, the same display encoding used by
the persisted state layout.`,
}

var keyType string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new keypair",
	Example: `  # Generate a founder chat identity
  groupchat-keygen generate --type chat

  # Generate a participant's self identity (sign + encrypt keys)
  groupchat-keygen generate --type self`,
	RunE: runGenerate,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&keyType, "type", "t", "self", "Identity type (chat, self)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	switch keyType {
	case "chat":
		return generateChatIdentity()
	case "self":
		return generateSelfIdentity()
	default:
		return fmt.Errorf("unsupported identity type: %s", keyType)
	}
}

// generateChatIdentity generates and prints the founder signing
// keypair that doubles as the chat's public id.
func generateChatIdentity() error {
	kp, err := keys.GenerateEd25519KeyPair()
	if err != nil {
		return fmt.Errorf("generate chat identity: %w", err)
	}
	fmt.Println("chat_public_key:", base58.Encode(rawPublic(kp)))
	fmt.Println("chat_secret_key:", base58.Encode(rawEd25519Seed(kp)))
	return nil
}

// generateSelfIdentity generates and prints the sign/encrypt keypair
// every chat participant carries.
func generateSelfIdentity() error {
	sign, err := keys.GenerateEd25519KeyPair()
	if err != nil {
		return fmt.Errorf("generate signing identity: %w", err)
	}
	encrypt, err := keys.GenerateX25519KeyPair()
	if err != nil {
		return fmt.Errorf("generate encryption identity: %w", err)
	}
	fmt.Println("self_sign_public_key:", base58.Encode(rawPublic(sign)))
	fmt.Println("self_sign_secret_key:", base58.Encode(rawEd25519Seed(sign)))
	fmt.Println("self_encrypt_public_key:", base58.Encode(rawPublic(encrypt)))
	fmt.Println("self_encrypt_secret_key:", base58.Encode(rawPrivate(encrypt)))
	return nil
}

type rawPublicKey interface{ RawPublicKey() []byte }
type rawPrivateKey interface{ RawPrivateKey() []byte }

func rawPublic(kp gcrypto.KeyPair) []byte {
	if rp, ok := kp.(rawPublicKey); ok {
		return rp.RawPublicKey()
	}
	return nil
}

// rawPrivate returns the raw private scalar for keypairs that expose
// one directly (X25519); ed25519 keypairs go through rawEd25519Seed
// instead since their raw export is a seed, not a scalar.
func rawPrivate(kp gcrypto.KeyPair) []byte {
	if rp, ok := kp.(rawPrivateKey); ok {
		return rp.RawPrivateKey()
	}
	return nil
}

// rawEd25519Seed extracts the 32-byte seed backing an Ed25519 keypair,
// the form Ed25519KeyPairFromSeed expects back on load.
func rawEd25519Seed(kp gcrypto.KeyPair) []byte {
	priv, ok := kp.PrivateKey().(ed25519.PrivateKey)
	if !ok {
		return nil
	}
	return priv.Seed()
}
