package mongo

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/reflections/pkg/store"
	"github.com/matzehuels/reflections/pkg/store/storetest"
)

// Set REFLECTIONS_TEST_MONGO_URI (for example mongodb://localhost:27017)
// to run against a live server. Each test uses a throwaway database.
func TestStore(t *testing.T) {
	uri := os.Getenv("REFLECTIONS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("REFLECTIONS_TEST_MONGO_URI not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		db := "reflections_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		s, err := Connect(ctx, uri, db)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = s.client.Database(db).Drop(ctx)
			s.Close()
		})
		return s
	})
}
