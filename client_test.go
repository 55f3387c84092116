package openml

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Crozal/openml-go/flow"
	"github.com/Crozal/openml-go/internal/cache"
)

// newFlowServer serves flow 65 with a binary artifact, flow 61 with a
// source artifact and flow 70 with both, counting requests.
func newFlowServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var requests atomic.Int64
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/flow/65":
			fmt.Fprintf(w, `<oml:flow xmlns:oml="http://openml.org/openml">
  <oml:id>65</oml:id>
  <oml:name>weka.RandomForest</oml:name>
  <oml:version>2</oml:version>
  <oml:external_version>weka_3.7.13-v4.aa01cd</oml:external_version>
  <oml:description>Random forest of trees.</oml:description>
  <oml:upload_date>2014-04-04 14:42:01</oml:upload_date>
  <oml:binary_url>%s/download/model.pkl</oml:binary_url>
  <oml:binary_format>pickle</oml:binary_format>
</oml:flow>`, server.URL)
		case "/flow/61":
			fmt.Fprintf(w, `<oml:flow xmlns:oml="http://openml.org/openml">
  <oml:id>61</oml:id>
  <oml:name>mlr.classif.rpart</oml:name>
  <oml:version>1</oml:version>
  <oml:description>Recursive partitioning.</oml:description>
  <oml:upload_date>2016-03-20 10:00:00</oml:upload_date>
  <oml:source_url>%s/download/learner.R</oml:source_url>
</oml:flow>`, server.URL)
		case "/flow/70":
			fmt.Fprintf(w, `<oml:flow xmlns:oml="http://openml.org/openml">
  <oml:id>70</oml:id>
  <oml:name>mlr.classif.svm</oml:name>
  <oml:version>3</oml:version>
  <oml:description>Support vector machine with source and model files.</oml:description>
  <oml:upload_date>2016-05-11 09:30:00</oml:upload_date>
  <oml:source_url>%s/download/learner.R</oml:source_url>
  <oml:binary_url>%s/download/model.pkl</oml:binary_url>
  <oml:binary_format>pickle</oml:binary_format>
</oml:flow>`, server.URL, server.URL)
		case "/download/model.pkl":
			w.Write([]byte{0x80, 0x04})
		case "/download/learner.R":
			w.Write([]byte("makeLearner <- function() NULL\n"))
		default:
			w.WriteHeader(http.StatusPreconditionFailed)
			w.Write([]byte(`<oml:error><oml:message>Unknown flow</oml:message></oml:error>`))
		}
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := New(context.Background(), WithServer(serverURL), WithCacheDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClient_GetFlow(t *testing.T) {
	server, _ := newFlowServer(t)
	client := newTestClient(t, server.URL)

	f, err := client.GetFlow(context.Background(), 65)
	require.NoError(t, err)
	assert.EqualValues(t, 65, f.ID)
	assert.Equal(t, "weka.RandomForest", f.Name)
	assert.NotNil(t, f.Components)
	assert.Empty(t, f.Components)
}

func TestClient_GetFlow_InvalidID(t *testing.T) {
	server, requests := newFlowServer(t)
	client := newTestClient(t, server.URL)

	_, err := client.GetFlow(context.Background(), -1)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, requests.Load())
}

func TestClient_GetFlow_Idempotent(t *testing.T) {
	server, requests := newFlowServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	first, err := client.GetFlow(ctx, 65)
	require.NoError(t, err)
	after := requests.Load()

	second, err := client.GetFlow(ctx, 65)
	require.NoError(t, err)
	assert.Equal(t, after, requests.Load(), "second retrieval must not fetch")
	assert.Equal(t, first, second)
}

func TestClient_GetFlow_CacheOnly(t *testing.T) {
	server, requests := newFlowServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.GetFlow(ctx, 61, CacheOnly())
	require.ErrorIs(t, err, ErrNotCached)
	assert.Zero(t, requests.Load())

	_, err = client.GetFlow(ctx, 61)
	require.NoError(t, err)

	f, err := client.GetFlow(ctx, 61, CacheOnly())
	require.NoError(t, err)
	assert.EqualValues(t, 61, f.ID)
}

func TestClient_GetFlow_AttachesBinaryArtifact(t *testing.T) {
	server, _ := newFlowServer(t)
	client := newTestClient(t, server.URL)

	f, err := client.GetFlow(context.Background(), 65)
	require.NoError(t, err)

	assert.NotEmpty(t, f.BinaryPath, "binary artifact path must be attached")
	assert.Empty(t, f.SourcePath)
	assert.Contains(t, f.BinaryPath, "model.pkl")
}

func TestClient_GetFlow_AttachesSourceArtifact(t *testing.T) {
	server, _ := newFlowServer(t)
	client := newTestClient(t, server.URL)

	f, err := client.GetFlow(context.Background(), 61)
	require.NoError(t, err)

	assert.NotEmpty(t, f.SourcePath)
	assert.Empty(t, f.BinaryPath)
}

func TestClient_GetFlow_FirstArtifactWinsByName(t *testing.T) {
	server, _ := newFlowServer(t)
	client := newTestClient(t, server.URL)

	f, err := client.GetFlow(context.Background(), 70)
	require.NoError(t, err)

	// "learner.R" sorts before "model.pkl", so the source file wins.
	assert.Contains(t, f.SourcePath, "learner.R")
	assert.Empty(t, f.BinaryPath, "only one artifact may be attached")
}

func TestAttachArtifact_FirstByFilenameOrder(t *testing.T) {
	files := map[string]cache.File{
		cache.MetadataFile: {Path: "/c/flow.xml"},
		"model.pkl":        {Path: "/c/model.pkl", Binary: true},
		"learner.R":        {Path: "/c/learner.R"},
	}

	var f flow.Flow
	attachArtifact(&f, files)
	assert.Equal(t, "/c/learner.R", f.SourcePath)
	assert.Empty(t, f.BinaryPath)

	// With the binary file first in filename order, BinaryPath is set.
	files = map[string]cache.File{
		cache.MetadataFile: {Path: "/c/flow.xml"},
		"a-model.pkl":      {Path: "/c/a-model.pkl", Binary: true},
		"learner.R":        {Path: "/c/learner.R"},
	}

	f = flow.Flow{}
	attachArtifact(&f, files)
	assert.Equal(t, "/c/a-model.pkl", f.BinaryPath)
	assert.Empty(t, f.SourcePath)
}

func TestClient_GetFlow_NotFound(t *testing.T) {
	server, _ := newFlowServer(t)
	client := newTestClient(t, server.URL)

	_, err := client.GetFlow(context.Background(), 999999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClient_CachedObjectsAndClear(t *testing.T) {
	server, _ := newFlowServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.GetFlow(ctx, 65)
	require.NoError(t, err)

	objects, err := client.CachedObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "flow", objects[0].Kind)
	assert.EqualValues(t, 65, objects[0].ID)
	assert.Equal(t, 2, objects[0].Files, "metadata plus artifact")

	removed, err := client.ClearCache(ctx, "", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = client.GetFlow(ctx, 65, CacheOnly())
	require.ErrorIs(t, err, ErrNotCached)
}
