package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeSigner struct {
	baseURL string
}

func (s *fakeSigner) PresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return s.baseURL + "/" + objectKey, nil
}

func newObjectServer(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path[1:]
		data, ok := objects[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
}

func readArchive(t *testing.T, buf *bytes.Buffer) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		out[f.Name] = data
	}
	return out
}

func TestPack_PackagesEntriesAndSkipsEmptyKeys(t *testing.T) {
	server := newObjectServer(t, map[string][]byte{
		"resumes/1_a.pdf": []byte("pdf-a"),
		"resumes/2_b.pdf": []byte("pdf-b"),
	})
	defer server.Close()

	p := NewPackager(&fakeSigner{baseURL: server.URL}, time.Minute, nil)

	var buf bytes.Buffer
	err := p.Pack(context.Background(), &buf, []Entry{
		{FileKey: "resumes/1_a.pdf", FileName: "a.pdf"},
		{FileKey: "", FileName: "no-resume.pdf"},
		{FileKey: "resumes/2_b.pdf", FileName: "b.pdf"},
	})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	got := readArchive(t, &buf)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if string(got["a.pdf"]) != "pdf-a" || string(got["b.pdf"]) != "pdf-b" {
		t.Fatalf("entry contents wrong: %v", got)
	}
}

func TestPack_FetchFailureProducesManifestNotAbort(t *testing.T) {
	server := newObjectServer(t, map[string][]byte{
		"resumes/1_a.pdf": []byte("pdf-a"),
	})
	defer server.Close()

	p := NewPackager(&fakeSigner{baseURL: server.URL}, time.Minute, nil)

	var buf bytes.Buffer
	err := p.Pack(context.Background(), &buf, []Entry{
		{FileKey: "resumes/1_a.pdf", FileName: "a.pdf"},
		{FileKey: "resumes/gone.pdf", FileName: "gone.pdf"},
	})
	if err != nil {
		t.Fatalf("pack must not abort on a fetch failure: %v", err)
	}

	got := readArchive(t, &buf)
	if _, ok := got["a.pdf"]; !ok {
		t.Fatalf("healthy entry missing: %v", got)
	}
	manifest, ok := got[failureManifestName]
	if !ok {
		t.Fatalf("failure manifest missing: %v", got)
	}
	if !bytes.Contains(manifest, []byte("gone.pdf")) {
		t.Fatalf("manifest must name the failed entry: %s", manifest)
	}
}

func TestPack_DuplicateNamesAreDisambiguated(t *testing.T) {
	server := newObjectServer(t, map[string][]byte{
		"resumes/1_r.pdf": []byte("one"),
		"resumes/2_r.pdf": []byte("two"),
	})
	defer server.Close()

	p := NewPackager(&fakeSigner{baseURL: server.URL}, time.Minute, nil)

	var buf bytes.Buffer
	err := p.Pack(context.Background(), &buf, []Entry{
		{FileKey: "resumes/1_r.pdf", FileName: "resume.pdf"},
		{FileKey: "resumes/2_r.pdf", FileName: "resume.pdf"},
	})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	got := readArchive(t, &buf)
	if string(got["resume.pdf"]) != "one" {
		t.Fatalf("first entry wrong: %v", got)
	}
	if string(got["resume (1).pdf"]) != "two" {
		t.Fatalf("duplicate entry must get a suffix: %v", got)
	}
}
