package icons

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls int
	err   error
}

func (f *countingFetcher) Icon(ctx context.Context, id string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("icon:" + id), nil
}

func TestResolveDownloadsOnce(t *testing.T) {
	dir := t.TempDir()
	f := &countingFetcher{}
	c := NewCache(dir, f)

	p1, err := c.Resolve(context.Background(), "01d")
	require.NoError(t, err)
	p2, err := c.Resolve(context.Background(), "01d")
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, filepath.Join(dir, "01d.png"), p1)
	assert.Equal(t, 1, f.calls)

	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, "icon:01d", string(data))
}

func TestResolveReusesFilesFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "04n.png"), []byte("cached"), 0o644))

	f := &countingFetcher{}
	p, err := NewCache(dir, f).Resolve(context.Background(), "04n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "04n.png"), p)
	assert.Zero(t, f.calls)
}

func TestResolveRejectsInvalidIDs(t *testing.T) {
	f := &countingFetcher{}
	c := NewCache(t.TempDir(), f)

	_, err := c.Resolve(context.Background(), "../etc/passwd")
	assert.Error(t, err)
	assert.Zero(t, f.calls)
}

func TestResolvePropagatesFetchErrors(t *testing.T) {
	f := &countingFetcher{err: errors.New("offline")}
	_, err := NewCache(t.TempDir(), f).Resolve(context.Background(), "10d")
	assert.ErrorContains(t, err, "offline")
}
