package scram

import "context"

// Reply is what a Conn delivers back for a submitted command: either a
// successful result Document (which may still carry $err/errmsg as
// fields set by the server) or a non-nil transport error.
type Reply struct {
	Result Document
}

// Conn is the connection handle consumed by the ConversationEngine
// (spec.md §6). It is implemented by the adapter layer (see
// pkg/adapter/mongoconn); the core package never dials a socket or
// encodes wire bytes itself.
//
// Namespace is always "<source>.$cmd" per spec.md §6; SubmitCommand
// MUST deliver commands to a single connection in the order submitted
// and MUST NOT be called again before the previous call's reply (or
// error) has been observed, since the server enforces strict
// conversationId-ordered exchanges (spec.md §5).
type Conn interface {
	SubmitCommand(ctx context.Context, namespace string, command Document) (*Reply, error)
}
