package command

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	scram "github.com/scramauth/mongoscram/pkg/core/scram"
	"github.com/spf13/cobra"
)

var (
	hashUsername   string
	hashPassword   string
	hashMechanism  string
	hashIterations int
	hashSaltB64    string
)

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the stored/server keys derived from a password",
	Long: `hash runs the same password preparation, PBKDF2 derivation,
and HMAC pipeline the client engine uses when proving knowledge of a
password (spec.md §4.1, §4.2), and prints the resulting storedKey and
serverKey. This never sends the password anywhere; it exists to let an
operator verify the crypto pipeline matches a known-good reference
vector without standing up a server.`,
	RunE: runHash,
}

func init() {
	hashCmd.Flags().StringVarP(&hashUsername, "username", "u", "user", "username (only used by SCRAM-SHA-1's digest)")
	hashCmd.Flags().StringVarP(&hashPassword, "password", "p", "", "password (required)")
	hashCmd.Flags().StringVar(&hashMechanism, "mechanism", "SCRAM-SHA-256", "SCRAM-SHA-1 or SCRAM-SHA-256")
	hashCmd.Flags().IntVar(&hashIterations, "iterations", 15000, "PBKDF2 iteration count")
	hashCmd.Flags().StringVar(&hashSaltB64, "salt", "", "base64 salt (random if omitted)")
	_ = hashCmd.MarkFlagRequired("password")
}

func runHash(_ *cobra.Command, _ []string) error {
	m, err := mechanismByName(hashMechanism)
	if err != nil {
		return err
	}

	salt, err := resolveSalt(hashSaltB64, m.Size())
	if err != nil {
		return err
	}

	prepped, err := m.PreparePassword(context.Background(), hashUsername, hashPassword)
	if err != nil {
		return fmt.Errorf("preparing password: %w", err)
	}

	saltedPassword := m.PBKDF2(prepped, salt, hashIterations)
	clientKey := m.HMAC(saltedPassword, []byte("Client Key"))
	storedKey := m.H(clientKey)
	serverKey := m.HMAC(saltedPassword, []byte("Server Key"))

	fmt.Printf("mechanism:  %s\n", m.Name())
	fmt.Printf("iterations: %d\n", hashIterations)
	fmt.Printf("salt:       %s\n", base64.StdEncoding.EncodeToString(salt))
	fmt.Printf("storedKey:  %s\n", base64.StdEncoding.EncodeToString(storedKey))
	fmt.Printf("serverKey:  %s\n", base64.StdEncoding.EncodeToString(serverKey))
	return nil
}

func resolveSalt(saltB64 string, size int) ([]byte, error) {
	if saltB64 == "" {
		salt := make([]byte, size)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("generating random salt: %w", err)
		}
		return salt, nil
	}
	return base64.StdEncoding.DecodeString(saltB64)
}
