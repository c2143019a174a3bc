//go:build integration

package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/halalbiye/halalbiye-server/src/lib"
	"github.com/halalbiye/halalbiye-server/src/store"
	"github.com/halalbiye/halalbiye-server/src/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const testTimeout = 10 * time.Second

var mongoURI string

// TestMain starts one MongoDB container for the package; each test gets its own database.
func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "container host: %v\n", err)
		os.Exit(1)
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "mapped port: %v\n", err)
		os.Exit(1)
	}
	mongoURI = fmt.Sprintf("mongodb://%s:%s", host, port.Port())

	code := m.Run()

	_ = container.Terminate(context.Background())
	os.Exit(code)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	client, err := lib.ConnectMongo(ctx, mongoURI, testTimeout, zap.NewNop())
	require.NoError(t, err)

	s, err := New(ctx, client, "halalbiye_test_"+uuid.NewString()[:8], testTimeout, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = s.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestMongoStore_Contract(t *testing.T) {
	bs := &storetest.BackendSuite{}
	bs.NewBackend = func() store.Backend { return newTestStore(bs.T()) }
	suite.Run(t, bs)
}

func TestEnsureIndexes_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	require.NoError(t, EnsureIndexes(ctx, s.db))
}
