package deploy

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 is an in-memory S3API implementation.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	putErr  error
}

type fakeObject struct {
	body        []byte
	contentType string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Key)] = fakeObject{
		body:        body,
		contentType: aws.ToString(params.ContentType),
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := aws.ToString(params.Prefix)
	var contents []types.Object
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) get(key string) (fakeObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key]
	return obj, ok
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestPublish_UploadsAllFiles(t *testing.T) {
	client := newFakeS3()
	pub, err := New(client, Config{Bucket: "site"})
	if err != nil {
		t.Fatal(err)
	}

	dir := writeTree(t, map[string]string{
		"index.html":       "<html>home</html>",
		"about/index.html": "<html>about</html>",
		"img/logo.svg":     "<svg/>",
	})

	result, err := pub.Publish(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if result.Uploaded != 3 {
		t.Errorf("Uploaded = %d, want 3", result.Uploaded)
	}

	obj, ok := client.get("index.html")
	if !ok {
		t.Fatal("index.html not uploaded")
	}
	if string(obj.body) != "<html>home</html>" {
		t.Errorf("index.html body = %q", obj.body)
	}
	if obj.contentType != "text/html; charset=utf-8" {
		t.Errorf("index.html content type = %q", obj.contentType)
	}

	svg, ok := client.get("img/logo.svg")
	if !ok {
		t.Fatal("img/logo.svg not uploaded")
	}
	if svg.contentType != "image/svg+xml" {
		t.Errorf("logo.svg content type = %q", svg.contentType)
	}
}

func TestPublish_KeyPrefix(t *testing.T) {
	client := newFakeS3()
	pub, err := New(client, Config{Bucket: "site", Prefix: "v2/"})
	if err != nil {
		t.Fatal(err)
	}

	dir := writeTree(t, map[string]string{"index.html": "<html/>"})

	if _, err := pub.Publish(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	if _, ok := client.get("v2/index.html"); !ok {
		t.Errorf("Expected key v2/index.html, have %v", client.objects)
	}
}

func TestPublish_PruneRemovesStaleObjects(t *testing.T) {
	client := newFakeS3()
	client.objects["old.html"] = fakeObject{body: []byte("stale")}
	client.objects["index.html"] = fakeObject{body: []byte("previous")}

	pub, err := New(client, Config{Bucket: "site", Prune: true})
	if err != nil {
		t.Fatal(err)
	}

	dir := writeTree(t, map[string]string{"index.html": "<html/>"})

	result, err := pub.Publish(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if result.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", result.Deleted)
	}
	if _, ok := client.get("old.html"); ok {
		t.Error("Expected old.html pruned")
	}
	if _, ok := client.get("index.html"); !ok {
		t.Error("Expected index.html kept")
	}
}

func TestPublish_PruneScopedToPrefix(t *testing.T) {
	client := newFakeS3()
	client.objects["site/old.html"] = fakeObject{body: []byte("stale")}
	client.objects["site2/index.html"] = fakeObject{body: []byte("other deployment")}

	pub, err := New(client, Config{Bucket: "b", Prefix: "site", Prune: true})
	if err != nil {
		t.Fatal(err)
	}

	dir := writeTree(t, map[string]string{"index.html": "<html/>"})

	result, err := pub.Publish(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if result.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", result.Deleted)
	}
	if _, ok := client.get("site/old.html"); ok {
		t.Error("Expected site/old.html pruned")
	}
	if _, ok := client.get("site2/index.html"); !ok {
		t.Error("Sibling prefix site2/ must not be pruned")
	}
}

func TestPublish_PruneDisabledKeepsStaleObjects(t *testing.T) {
	client := newFakeS3()
	client.objects["old.html"] = fakeObject{body: []byte("stale")}

	pub, err := New(client, Config{Bucket: "site"})
	if err != nil {
		t.Fatal(err)
	}

	dir := writeTree(t, map[string]string{"index.html": "<html/>"})

	result, err := pub.Publish(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if result.Deleted != 0 {
		t.Errorf("Deleted = %d, want 0", result.Deleted)
	}
	if _, ok := client.get("old.html"); !ok {
		t.Error("Expected old.html kept without prune")
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(newFakeS3(), Config{})
	if err == nil {
		t.Fatal("Expected error for missing bucket")
	}
	if !strings.Contains(err.Error(), "F501") {
		t.Errorf("Error = %v, want F501", err)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"index.html", "text/html; charset=utf-8"},
		{"styles.css", "text/css; charset=utf-8"},
		{"app.js", "text/javascript; charset=utf-8"},
		{"manifest.json", "application/json"},
		{"logo.svg", "image/svg+xml"},
		{"data.bin", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := contentTypeFor(tt.path); got != tt.want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
