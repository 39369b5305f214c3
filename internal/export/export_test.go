package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/linkorg/internal/config"
	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/dgallion1/linkorg/internal/store"
)

func sample(name string) *linkdata.FileData {
	f := &linkdata.FileData{FileName: name, FileTitle: name}
	f.Links = []linkdata.LinkItem{{Name: "<Go & friends>", Link: "https://go.dev", LineNumber: 1}}
	f.Normalize()
	return f
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, []*linkdata.FileData{sample("a.org"), sample("b.md")}))

	assert.Contains(t, buf.String(), "<Go & friends>", "HTML characters are not escaped")

	var names []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var f linkdata.FileData
		require.NoError(t, json.Unmarshal(sc.Bytes(), &f))
		names = append(names, f.FileName)
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"a.org", "b.md"}, names)
}

func TestWriteJSONL_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, nil))
	assert.Equal(t, 0, buf.Len())
}

func TestFileSink_Put(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "links.jsonl")

	require.NoError(t, FileSink{}.Put(context.Background(), target, []byte("first\n")))
	require.NoError(t, FileSink{}.Put(context.Background(), target, []byte("second\n")))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	target := filepath.Join(t.TempDir(), "links.jsonl")
	assert.ErrorIs(t, FileSink{}.Put(ctx, target, []byte("x")), context.Canceled)
	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	idx, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer idx.Close()
	require.NoError(t, idx.SaveFile(ctx, "z/b.md", "h", sample("b.md")))
	require.NoError(t, idx.SaveFile(ctx, "a.org", "h", sample("a.org")))

	target := filepath.Join(t.TempDir(), "links.jsonl")
	res, err := Run(ctx, idx, FileSink{}, target)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, target, res.Key)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, len(data), res.Bytes)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"file_name":"a.org"`)
}

func TestNewS3Sink_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.S3Config
		want string
	}{
		{"no endpoint", config.S3Config{Bucket: "b", AccessKey: "k", SecretKey: "s"}, "endpoint"},
		{"no keys", config.S3Config{Endpoint: "localhost:9000", Bucket: "b"}, "access key"},
		{"no bucket", config.S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Sink(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestS3Sink_Location(t *testing.T) {
	s, err := NewS3Sink(config.S3Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "links",
		Prefix:    "/exports/",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://links/exports/2026/links.jsonl", s.Location("/2026/links.jsonl"))

	bare, err := NewS3Sink(config.S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "links"})
	require.NoError(t, err)
	assert.Equal(t, "s3://links/links.jsonl", bare.Location("links.jsonl"))

	assert.Error(t, bare.Put(context.Background(), "  ", []byte("x")))
}
