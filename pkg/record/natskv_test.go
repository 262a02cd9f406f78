package record_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/stretchr/testify/require"
)

// Set STOREFRONT_TEST_NATS_URL (e.g. nats://127.0.0.1:4222, JetStream
// enabled) to run the contract suite against a live bucket.
func TestNATSContract(t *testing.T) {
	url := os.Getenv("STOREFRONT_TEST_NATS_URL")
	if url == "" {
		t.Skip("STOREFRONT_TEST_NATS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := record.DialNATS(ctx, url, "storefront_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(s.Close)

	runContract(t, s)
}
