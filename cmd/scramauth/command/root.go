// Package command provides the root and sub-commands for the
// scramauth demo binary, organized using the cobra library. The
// `run` sub-command drives a full authentication attempt (optionally
// with speculative authentication) against an in-memory fake server,
// and the `hash` sub-command prints the stored/server keys derived
// from a password, useful for inspecting the crypto pipeline without
// standing up a server at all.
//
//	./scramauth run -u alice -p hunter2 [--mechanism SCRAM-SHA-256] [--speculative]
//	./scramauth hash -u alice -p hunter2 [--mechanism SCRAM-SHA-1] [--iterations 15000]
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "scramauth",
	Short: "Drive or inspect a SCRAM-SHA-1/SCRAM-SHA-256 authentication attempt",
	Long: `scramauth exercises the SCRAM client authentication engine
implemented in pkg/core/scram. It demonstrates the full multi-round-trip
SASL conversation (including the speculative-authentication fast path)
against an in-memory fake MongoDB server, and can print the derived
stored/server keys for a password without any server at all.`,
}

// Execute runs the rootCmd which parses CLI arguments and flags and
// runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(hashCmd)
}
