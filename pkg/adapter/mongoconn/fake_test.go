package mongoconn_test

import (
	"context"
	"testing"

	"github.com/scramauth/mongoscram/pkg/adapter/mongoconn"
	"github.com/scramauth/mongoscram/pkg/core/scram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitCommandRejectsEmptyNamespace(t *testing.T) {
	server := mongoconn.NewFakeServer(scram.SHA256)
	require.NoError(t, server.Register("alice", "pencil", 15000))

	_, err := server.Conn().SubmitCommand(context.Background(), "", scram.Document{"saslStart": int32(1)})
	assert.Error(t, err)
}

func TestSubmitCommandRejectsUnsupportedCommand(t *testing.T) {
	server := mongoconn.NewFakeServer(scram.SHA256)
	_, err := server.Conn().SubmitCommand(context.Background(), "admin.$cmd", scram.Document{"ping": int32(1)})
	assert.Error(t, err)
}

func TestHandshakeWithoutSpeculativeAuthenticateIsANoop(t *testing.T) {
	server := mongoconn.NewFakeServer(scram.SHA256)
	reply, err := server.Conn().Handshake(scram.Document{"hello": int32(1)})
	require.NoError(t, err)
	assert.Equal(t, float64(1), reply["ok"])
	assert.Nil(t, reply["speculativeAuthenticate"])
}
