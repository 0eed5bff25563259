package eventlog

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Tick int    `json:"tick"`
	Key  string `json:"key"`
}

func TestWriter_RoundTripInMemory(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.Write(event{Tick: 1, Key: "acquire"}))
	require.NoError(t, w.Write(event{Tick: 4, Key: "engage"}))
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Close())

	got, err := ReadAll[event](&buf)
	require.NoError(t, err)
	assert.Equal(t, []event{{1, "acquire"}, {4, "engage"}}, got)
}

func TestWriter_CreateMakesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "seed-1.jsonl.zst")
	w, err := Create(path)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		require.NoError(t, w.Write(event{Tick: i, Key: "tick"}))
	}
	require.NoError(t, w.Close())

	got, err := ReadFile[event](path)
	require.NoError(t, err)
	require.Len(t, got, 500)
	assert.Equal(t, 499, got[499].Tick)
}

func TestWriter_WriteAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close is a no-op")
	assert.Error(t, w.Write(event{}))
}

func TestWriter_UnmarshalableValue(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	assert.Error(t, w.Write(func() {}))
	assert.Equal(t, 0, w.Count())
}

func TestReadAll_RejectsUncompressedInput(t *testing.T) {
	_, err := ReadAll[event](bytes.NewBufferString("{\"tick\":1}\n"))
	assert.Error(t, err)
}
