package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/instalike/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCredentials is an in-memory Credentials recording its transitions
type memCredentials struct {
	mu          sync.Mutex
	token       string
	replaced    int
	invalidated int
}

func (m *memCredentials) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *memCredentials) Replace(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.replaced++
	return nil
}

func (m *memCredentials) Invalidate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.invalidated++
	return nil
}

// fakeAPI accepts only the "fresh" token on /things
type fakeAPI struct {
	refreshOK     bool
	alwaysReject  bool
	refreshDelay  time.Duration
	refreshCalls  atomic.Int32
	thingCalls    atomic.Int32
	refreshBearer atomic.Value
	bodies        chan string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		f.refreshBearer.Store(r.Header.Get("Authorization"))
		time.Sleep(f.refreshDelay)
		if !f.refreshOK {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"accessToken":"fresh"}`))
	})
	mux.HandleFunc("/things", func(w http.ResponseWriter, r *http.Request) {
		f.thingCalls.Add(1)
		if f.bodies != nil {
			data, _ := io.ReadAll(r.Body)
			f.bodies <- string(data)
		}
		if f.alwaysReject || r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"E_UNAUTHORIZED_ACCESS"}`))
			return
		}
		w.Write([]byte(`{"name":"ok"}`))
	})
	return mux
}

type thing struct {
	Name string `json:"name"`
}

func newGateway(t *testing.T, h http.Handler, creds Credentials, retry bool) *Gateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, creds, Options{RetryAfterRefresh: retry}, nil)
}

func TestDo_InjectsBearerWhenTokenPresent(t *testing.T) {
	headers := make(chan http.Header, 2)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
	})

	creds := &memCredentials{token: "abc"}
	g := newGateway(t, h, creds, true)

	require.NoError(t, g.Send(context.Background(), http.MethodGet, "/x", nil, nil, nil))
	got := <-headers
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))

	creds.Invalidate()
	require.NoError(t, g.Send(context.Background(), http.MethodGet, "/x", nil, nil, nil))
	got = <-headers
	assert.Empty(t, got.Get("Authorization"))
}

func TestSend_RefreshThenRetry(t *testing.T) {
	api := &fakeAPI{refreshOK: true}
	creds := &memCredentials{token: "stale"}
	g := newGateway(t, api.handler(), creds, true)

	var out thing
	err := g.Send(context.Background(), http.MethodGet, "/things", nil, nil, &out)
	require.NoError(t, err)

	assert.Equal(t, "ok", out.Name)
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(2), api.thingCalls.Load())
	assert.Equal(t, "Bearer stale", api.refreshBearer.Load())
	token, _ := creds.Token()
	assert.Equal(t, "fresh", token)
}

func TestSend_RefreshWithoutRetry(t *testing.T) {
	api := &fakeAPI{refreshOK: true}
	creds := &memCredentials{token: "stale"}
	g := newGateway(t, api.handler(), creds, false)

	err := g.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(1), api.thingCalls.Load())
	token, ok := creds.Token()
	require.True(t, ok)
	assert.Equal(t, "fresh", token)

	// The next call uses the refreshed token
	require.NoError(t, g.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil))
	assert.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestSend_RefreshFailureClearsToken(t *testing.T) {
	api := &fakeAPI{refreshOK: false}
	creds := &memCredentials{token: "stale"}
	g := newGateway(t, api.handler(), creds, true)

	err := g.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(1), api.thingCalls.Load())
	_, ok := creds.Token()
	assert.False(t, ok)
	assert.Equal(t, 1, creds.invalidated)
}

func TestSend_CallerCancelledDuringRefreshKeepsSession(t *testing.T) {
	api := &fakeAPI{refreshOK: true, refreshDelay: 300 * time.Millisecond}
	creds := &memCredentials{token: "stale"}
	g := newGateway(t, api.handler(), creds, true)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)
	defer cancel()

	err := g.Send(ctx, http.MethodGet, "/things", nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, 0, creds.invalidated)
	token, ok := creds.Token()
	assert.True(t, ok)
	assert.Equal(t, "fresh", token)

	// The refreshed token serves the next call without another exchange
	require.NoError(t, g.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil))
	assert.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestSend_CallerDeadlineDuringRefreshKeepsSession(t *testing.T) {
	api := &fakeAPI{refreshOK: true, refreshDelay: 300 * time.Millisecond}
	creds := &memCredentials{token: "stale"}
	g := newGateway(t, api.handler(), creds, true)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := g.Send(ctx, http.MethodGet, "/things", nil, nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEqual(t, domain.KindUnauthorized, domain.KindOf(err))

	assert.Equal(t, 0, creds.invalidated)
	token, _ := creds.Token()
	assert.Equal(t, "fresh", token)
}

func TestSend_NoTokenNoRefresh(t *testing.T) {
	api := &fakeAPI{refreshOK: true}
	g := newGateway(t, api.handler(), &memCredentials{}, true)

	err := g.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Zero(t, api.refreshCalls.Load())
}

func TestSend_SecondUnauthorizedIsNotRefreshed(t *testing.T) {
	api := &fakeAPI{refreshOK: true, alwaysReject: true}
	creds := &memCredentials{token: "stale"}
	g := newGateway(t, api.handler(), creds, true)

	err := g.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(2), api.thingCalls.Load())
}

func TestSend_RetryReplaysBody(t *testing.T) {
	api := &fakeAPI{refreshOK: true, bodies: make(chan string, 2)}
	creds := &memCredentials{token: "stale"}
	g := newGateway(t, api.handler(), creds, true)

	body := map[string]string{"text": "nice shot"}
	require.NoError(t, g.Send(context.Background(), http.MethodPost, "/things", nil, body, nil))

	first, second := <-api.bodies, <-api.bodies
	assert.JSONEq(t, `{"text":"nice shot"}`, first)
	assert.Equal(t, first, second)
}

func TestSend_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	api := &fakeAPI{refreshOK: true, refreshDelay: 50 * time.Millisecond}
	creds := &memCredentials{token: "stale"}
	g := newGateway(t, api.handler(), creds, true)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.Send(context.Background(), http.MethodGet, "/things", nil, nil, nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, 1, creds.replaced)
}

func TestSend_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   domain.ErrorKind
		fields []string
	}{
		{"not found", http.StatusNotFound, `{"message":"E_ROW_NOT_FOUND"}`, domain.KindNotFound, nil},
		{"rate limited", http.StatusTooManyRequests, ``, domain.KindRateLimited, nil},
		{"validation map", http.StatusUnprocessableEntity,
			`{"message":"invalid","errors":{"userName":["already taken"],"email":["invalid email"]}}`,
			domain.KindValidationFailed, []string{"invalid email", "already taken"}},
		{"validation list", http.StatusUnprocessableEntity,
			`{"errors":[{"field":"password","message":"too short"}]}`,
			domain.KindValidationFailed, []string{"too short"}},
		{"server error", http.StatusInternalServerError, `oops`, domain.KindUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			g := newGateway(t, h, &memCredentials{}, true)

			err := g.Send(context.Background(), http.MethodGet, "/x", nil, nil, nil)
			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.kind, apiErr.Kind)
			if tt.fields != nil {
				assert.Equal(t, tt.fields, apiErr.FieldMessages())
			}
		})
	}
}

func TestSend_ServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := New(url, &memCredentials{}, Options{}, nil)
	err := g.Send(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestSend_CancelledContext(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	g := newGateway(t, h, &memCredentials{}, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Send(ctx, http.MethodGet, "/x", nil, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
