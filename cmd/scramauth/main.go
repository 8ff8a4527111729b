// Command scramauth demonstrates the SCRAM client engine against an
// in-memory fake MongoDB server. It is not part of the library's
// public API; see pkg/core/scram for the engine itself.
package main

import "github.com/scramauth/mongoscram/cmd/scramauth/command"

func main() {
	command.Execute()
}
