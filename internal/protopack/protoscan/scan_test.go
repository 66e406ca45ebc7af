package protoscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeterProto = `syntax = "proto3";

package api.v1;

message HelloRequest {
  string name = 1;
}

message HelloReply {
  string message = 1;
}

service Greeter {
  rpc SayHello(HelloRequest) returns (HelloReply);
}
`

const healthProto = `syntax = "proto3";

package api.v1;

message HealthCheckRequest {}

message HealthCheckResponse {
  bool serving = 1;
}

service Health {
  rpc Check(HealthCheckRequest) returns (HealthCheckResponse);
}
`

func writeProtos(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api", "v1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "v1", "greeter.proto"), []byte(greeterProto), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "v1", "health.proto"), []byte(healthProto), 0o644))
	return dir
}

func TestScan(t *testing.T) {
	dir := writeProtos(t)

	idx, err := Scan(dir, []string{"api/v1/greeter.proto", "api/v1/health.proto"})
	require.NoError(t, err)
	require.Len(t, idx.Files, 2)

	greeter := idx.Files[0]
	assert.Equal(t, "api/v1/greeter.proto", greeter.Name)
	assert.Equal(t, "api.v1", greeter.Package)
	assert.Equal(t, []string{"Greeter"}, greeter.Services)
	assert.Equal(t, []string{"HelloReply", "HelloRequest"}, greeter.Messages)

	health := idx.Files[1]
	assert.Equal(t, []string{"Health"}, health.Services)

	assert.Equal(t, []string{"api.v1"}, idx.Packages())
	assert.Equal(t, 2, idx.ServiceCount())
}

func TestScan_Empty(t *testing.T) {
	idx, err := Scan(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, idx.Files)
	assert.Equal(t, 0, idx.ServiceCount())
}

func TestScan_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.proto"), []byte("not a proto file"), 0o644))

	_, err := Scan(dir, []string{"bad.proto"})
	require.Error(t, err)
}
