package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/damacus/s3-browser/internal/metrics"
	"github.com/damacus/s3-browser/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorageClient implements services.StorageClient for testing
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) ListBuckets(ctx context.Context) ([]services.BucketInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]services.BucketInfo), args.Error(1)
}

func (m *MockStorageClient) ListObjects(ctx context.Context, bucketName string) ([]services.ObjectInfo, error) {
	args := m.Called(ctx, bucketName)
	return args.Get(0).([]services.ObjectInfo), args.Error(1)
}

func (m *MockStorageClient) GetObject(ctx context.Context, bucketName, key string) (io.ReadCloser, services.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, key)
	body, _ := args.Get(0).(io.ReadCloser)
	return body, args.Get(1).(services.ObjectInfo), args.Error(2)
}

// MockStorageFactory implements services.StorageClientFactory for testing
type MockStorageFactory struct {
	mock.Mock
}

func (m *MockStorageFactory) NewClient(creds services.Credentials) (services.StorageClient, error) {
	args := m.Called(creds)
	client, _ := args.Get(0).(services.StorageClient)
	return client, args.Error(1)
}

var csrfFieldPattern = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

// testApp is a fully wired server plus a tiny cookie-carrying browser
type testApp struct {
	t       *testing.T
	e       *echo.Echo
	factory *MockStorageFactory
	metrics *metrics.Metrics
	logs    *test.Hook
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger, hook := test.NewNullLogger()
	m := metrics.New()
	factory := new(MockStorageFactory)

	e, err := newServer(
		&services.InstrumentedFactory{Inner: factory, Metrics: m},
		services.NewAuthService(""),
		m,
		logger,
	)
	require.NoError(t, err)

	return &testApp{
		t:       t,
		e:       e,
		factory: factory,
		metrics: m,
		logs:    hook,
		cookies: map[string]*http.Cookie{},
	}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(a.cookies, c.Name)
			continue
		}
		a.cookies[c.Name] = c
	}
	return rec
}

func (a *testApp) get(target string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, target, nil))
}

// csrfToken loads the landing page and returns the token embedded in the form.
func (a *testApp) csrfToken() string {
	a.t.Helper()
	rec := a.get("/")
	require.Equal(a.t, http.StatusOK, rec.Code)
	match := csrfFieldPattern.FindStringSubmatch(rec.Body.String())
	require.Len(a.t, match, 2, "landing page must embed a CSRF token")
	return match[1]
}

func (a *testApp) setCredentials(accessKey, secretKey string) *httptest.ResponseRecorder {
	a.t.Helper()
	form := url.Values{}
	form.Set("accessKey", accessKey)
	form.Set("secretKey", secretKey)
	form.Set("_csrf", a.csrfToken())
	req := httptest.NewRequest(http.MethodPost, "/setCredentials", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return a.do(req)
}
