// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/health-etl/pkg/types"
)

func TestDirRoundTrip(t *testing.T) {
	d := NewDir(t.TempDir())
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "curated/df_merged.csv", []byte("COUNTRY,AGE\n")))

	got, err := d.Get(ctx, "curated/df_merged.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("COUNTRY,AGE\n"), got)

	// Nested name mapped onto subdirectories.
	info, err := os.Stat(filepath.Join(d.Root, "curated", "df_merged.csv"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestDirGetMissing(t *testing.T) {
	d := NewDir(t.TempDir())

	_, err := d.Get(context.Background(), "raw/absent.csv")
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, te.Location, "absent.csv")
}

func TestDiscardWritesNothing(t *testing.T) {
	d := &Discard{}
	require.NoError(t, d.Put(context.Background(), "curated/df_merged.csv", []byte("data")))
	require.NoError(t, d.Put(context.Background(), "curated/df_merged.parquet", []byte{1, 2}))

	assert.Equal(t, []string{"curated/df_merged.csv", "curated/df_merged.parquet"}, d.Offered)
}

func TestNewAzureRequiresAddressing(t *testing.T) {
	_, err := NewAzure(types.StorageConfig{Container: "data"})
	assert.Error(t, err)
	_, err = NewAzure(types.StorageConfig{Account: "acct"})
	assert.Error(t, err)
}
