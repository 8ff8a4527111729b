package command

import (
	"context"
	"fmt"

	"github.com/scramauth/mongoscram/pkg/adapter/mongoconn"
	"github.com/scramauth/mongoscram/pkg/adapter/scramcfg"
	scram "github.com/scramauth/mongoscram/pkg/core/scram"
	"github.com/spf13/cobra"
)

var (
	runUsername    string
	runPassword    string
	runMechanism   string
	runIterations  int
	runSpeculative bool
	runEmptyRetry  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a full SCRAM authentication attempt against an in-memory fake server",
	RunE:  runAttempt,
}

func init() {
	runCmd.Flags().StringVarP(&runUsername, "username", "u", "alice", "username")
	runCmd.Flags().StringVarP(&runPassword, "password", "p", "hunter2", "password")
	runCmd.Flags().StringVar(&runMechanism, "mechanism", "SCRAM-SHA-256", "SCRAM-SHA-1 or SCRAM-SHA-256")
	runCmd.Flags().IntVar(&runIterations, "iterations", 15000, "server-side PBKDF2 iteration count")
	runCmd.Flags().BoolVar(&runSpeculative, "speculative", true, "piggy-back the first client message on the handshake")
	runCmd.Flags().BoolVar(&runEmptyRetry, "empty-retry", false, "force the server to require one extra empty saslContinue")
}

func runAttempt(_ *cobra.Command, _ []string) error {
	m, err := mechanismByName(runMechanism)
	if err != nil {
		return err
	}

	cfg := scramcfg.Default()
	if cfgPath != "" {
		cfg, err = scramcfg.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("scramcfg.Load(%q): %w", cfgPath, err)
		}
	}

	server := mongoconn.NewFakeServer(m)
	server.RequireEmptyRetry = runEmptyRetry
	if err := server.Register(runUsername, runPassword, runIterations); err != nil {
		return fmt.Errorf("registering user: %w", err)
	}

	conn := server.Conn()
	ac := &scram.AuthContext{
		Credentials: scram.Credentials{
			Username: runUsername,
			Password: runPassword,
			Source:   cfg.Source,
		},
		Conn: conn,
	}

	provider := scram.NewProviderWithCache(m, cfg.CacheCapacity).WithMinIterations(cfg.MinIterations)

	ctx := context.Background()
	if runSpeculative {
		handshake, err := provider.Prepare(ac, scram.Document{"hello": int32(1)})
		if err != nil {
			return fmt.Errorf("Prepare: %w", err)
		}
		handshakeReply, err := conn.Handshake(handshake)
		if err != nil {
			return fmt.Errorf("simulated handshake: %w", err)
		}
		if spec, ok := handshakeReply["speculativeAuthenticate"].(scram.Document); ok {
			ac.SpeculativeAuthenticate(spec)
		}
	} else {
		if _, err := provider.Prepare(ac, scram.Document{"hello": int32(1)}); err != nil {
			return fmt.Errorf("Prepare: %w", err)
		}
	}

	reply, err := provider.Authenticate(ctx, ac)
	if err != nil {
		return fmt.Errorf("Authenticate: %w", err)
	}

	fmt.Printf("authenticated %s as %q (attempt %s): %v\n", m.Name(), runUsername, ac.AttemptID, reply)
	return nil
}

func mechanismByName(name string) (*scram.Mechanism, error) {
	switch name {
	case scram.SHA1.Name():
		return scram.SHA1, nil
	case scram.SHA256.Name():
		return scram.SHA256, nil
	default:
		return nil, fmt.Errorf("unsupported mechanism %q", name)
	}
}
