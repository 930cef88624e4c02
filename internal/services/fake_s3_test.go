package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

var fakeModTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeS3 is a path-style S3 endpoint serving just enough of the API for the
// SDK adapters: ListBuckets, ListObjectsV2 (with continuation tokens),
// HeadObject and GetObject. Bucket "forbidden" answers AccessDenied.
type fakeS3 struct {
	mu        sync.Mutex
	buckets   map[string]map[string]string
	pageSize  int
	listCalls int
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{
		buckets:  map[string]map[string]string{},
		pageSize: 2,
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) put(bucket, key, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = map[string]string{}
	}
	if key != "" {
		f.buckets[bucket][key] = body
	}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")

	if bucket == "forbidden" {
		writeS3Error(w, r, http.StatusForbidden, "AccessDenied", "Access Denied")
		return
	}

	switch {
	case bucket == "" && r.Method == http.MethodGet:
		f.listBuckets(w)
	case key == "" && r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		f.listObjects(w, r, bucket)
	case key != "" && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		f.getObject(w, r, bucket, key)
	default:
		writeS3Error(w, r, http.StatusNotImplemented, "NotImplemented", "not implemented")
	}
}

func (f *fakeS3) listBuckets(w http.ResponseWriter) {
	names := make([]string, 0, len(f.buckets))
	for name := range f.buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<ListAllMyBucketsResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	b.WriteString(`<Owner><ID>owner</ID><DisplayName>owner</DisplayName></Owner><Buckets>`)
	for _, name := range names {
		fmt.Fprintf(&b, `<Bucket><Name>%s</Name><CreationDate>%s</CreationDate></Bucket>`,
			name, fakeModTime.Format("2006-01-02T15:04:05.000Z"))
	}
	b.WriteString(`</Buckets></ListAllMyBucketsResult>`)
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(b.String()))
}

func (f *fakeS3) listObjects(w http.ResponseWriter, r *http.Request, bucket string) {
	objects, ok := f.buckets[bucket]
	if !ok {
		writeS3Error(w, r, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist")
		return
	}
	f.listCalls++

	keys := make([]string, 0, len(objects))
	for k := range objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if token := r.URL.Query().Get("continuation-token"); token != "" {
		start, _ = strconv.Atoi(token)
	} else if after := r.URL.Query().Get("start-after"); after != "" {
		start = sort.SearchStrings(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}
	end := min(start+f.pageSize, len(keys))
	truncated := end < len(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&b, `<Name>%s</Name><Prefix></Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys>`, bucket, end-start)
	fmt.Fprintf(&b, `<IsTruncated>%t</IsTruncated>`, truncated)
	if truncated {
		fmt.Fprintf(&b, `<NextContinuationToken>%d</NextContinuationToken>`, end)
	}
	for _, k := range keys[start:end] {
		fmt.Fprintf(&b, `<Contents><Key>%s</Key><LastModified>%s</LastModified><ETag>&quot;etag-%s&quot;</ETag><Size>%d</Size><StorageClass>STANDARD</StorageClass></Contents>`,
			k, fakeModTime.Format("2006-01-02T15:04:05.000Z"), k, len(objects[k]))
	}
	b.WriteString(`</ListBucketResult>`)
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(b.String()))
}

func (f *fakeS3) getObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	objects, ok := f.buckets[bucket]
	if !ok {
		writeS3Error(w, r, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist")
		return
	}
	body, ok := objects[key]
	if !ok {
		writeS3Error(w, r, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/plain")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("ETag", `"etag-`+key+`"`)
	h.Set("Last-Modified", fakeModTime.Format(http.TimeFormat))
	h.Set("Accept-Ranges", "bytes")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write([]byte(body))
	}
}

func writeS3Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("x-amz-request-id", "fake-request")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message><RequestId>fake-request</RequestId></Error>`, code, message)
}
