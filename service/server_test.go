package service

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"

	"github.com/ibreez3/pixel-ai/chat"
	"github.com/ibreez3/pixel-ai/chat/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	gw      *mocks.MockGateway
	orch    *chat.Orchestrator
	metrics *Metrics
	router  *gin.Engine
}

func newFixture(t *testing.T, configured bool) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().CheckKeyStatus(gomock.Any()).Return(chat.KeyProbe{Configured: configured, KeyPrefix: "sk-abcd"}, nil)

	m := NewMetrics()
	instrumented := m.Instrument(gw)
	orch := chat.New(instrumented, chat.WithLogger(NewDiscardLogger()))
	orch.Initialize(context.Background())
	srv := NewServer(orch, instrumented, m, NewDiscardLogger())
	return &fixture{gw: gw, orch: orch, metrics: m, router: srv.Router()}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestIndexServesPixelUI(t *testing.T) {
	f := newFixture(t, true)
	w := f.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "PIXEL AI")
}

func TestGetState(t *testing.T) {
	f := newFixture(t, true)
	w := f.do(http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := gjson.ParseBytes(w.Body.Bytes())
	assert.Equal(t, int64(0), body.Get("messages.#").Int())
	assert.Equal(t, "gpt-4o-mini", body.Get("model").String())
	assert.Equal(t, "idle", body.Get("phase").String())
	assert.True(t, body.Get("keyStatus.configured").Bool())
	assert.Equal(t, "API key configured (sk-abcd...)", body.Get("keyStatus.message").String())
}

func TestPostMessage_Success(t *testing.T) {
	f := newFixture(t, true)
	f.gw.EXPECT().Complete(gomock.Any(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}}, "gpt-4o-mini").
		Return(chat.Succeeded("hello!"))

	w := f.do(http.MethodPost, "/api/messages", `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := gjson.ParseBytes(w.Body.Bytes())
	assert.True(t, body.Get("accepted").Bool())
	assert.Equal(t, int64(2), body.Get("state.messages.#").Int())
	assert.Equal(t, "assistant", body.Get("state.messages.1.role").String())
	assert.Equal(t, "hello!", body.Get("state.messages.1.content").String())
	assert.False(t, body.Get("state.busy").Bool())
}

func TestPostMessage_BlankRejected(t *testing.T) {
	f := newFixture(t, true)
	w := f.do(http.MethodPost, "/api/messages", `{"text":"   "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "accepted").Bool())
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "state.messages.#").Int())
}

func TestPostMessage_UnconfiguredKeyRejected(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodPost, "/api/messages", `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := gjson.ParseBytes(w.Body.Bytes())
	assert.False(t, body.Get("accepted").Bool())
	assert.False(t, body.Get("state.keyStatus.configured").Bool())
	assert.Contains(t, body.Get("state.error").String(), "not configured")
}

func TestPostMessage_BadJSON(t *testing.T) {
	f := newFixture(t, true)
	w := f.do(http.MethodPost, "/api/messages", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutModel(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodPut, "/api/model", `{"model":"gpt-9"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/model", `{"model":"gpt-3.5-turbo"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gpt-3.5-turbo", gjson.Get(w.Body.String(), "model").String())

	w = f.do(http.MethodGet, "/api/models", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := gjson.ParseBytes(w.Body.Bytes())
	assert.Equal(t, int64(2), body.Get("models.#").Int())
	assert.Equal(t, "gpt-3.5-turbo", body.Get("current").String())
	assert.Equal(t, "gpt-3.5-turbo", body.Get("fallback").String())
	assert.Equal(t, "GPT-4o Mini", body.Get("models.0.name").String())
}

func TestPutInputAndTheme(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodPut, "/api/input", `{"text":"draft"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "draft", f.orch.Snapshot().Input)

	w = f.do(http.MethodPost, "/api/theme", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "light", gjson.Get(w.Body.String(), "theme").String())
}

func TestGatewayKey(t *testing.T) {
	f := newFixture(t, true)
	f.gw.EXPECT().CheckKeyStatus(gomock.Any()).Return(chat.KeyProbe{Configured: true, KeyPrefix: "sk-zzzz"}, nil)

	w := f.do(http.MethodGet, "/api/gateway/key", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := gjson.ParseBytes(w.Body.Bytes())
	assert.True(t, body.Get("configured").Bool())
	assert.Equal(t, "sk-zzzz", body.Get("keyPrefix").String())
	assert.Equal(t, "API key configured (sk-zzzz...)", body.Get("message").String())
}

func TestGatewayComplete(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodPost, "/api/gateway/complete", `{"messages":[],"model":"gpt-4o-mini"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/gateway/complete", `{"messages":[{"role":"user","content":"hi"}],"model":"davinci"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	turns := []chat.Turn{{Role: chat.RoleUser, Content: "hi"}, {Role: chat.RoleAssistant, Content: "yo"}, {Role: chat.RoleUser, Content: "again"}}
	f.gw.EXPECT().Complete(gomock.Any(), turns, "gpt-4o-mini").
		Return(chat.Failed(chat.KindQuota, "slow down", true))

	w = f.do(http.MethodPost, "/api/gateway/complete",
		`{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"yo"},{"role":"user","content":"again"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := gjson.ParseBytes(w.Body.Bytes())
	assert.False(t, body.Get("success").Bool())
	assert.True(t, body.Get("fallback").Bool())
	assert.Equal(t, "slow down", body.Get("error").String())
}

func TestGatewayComplete_RejectsUnknownRole(t *testing.T) {
	f := newFixture(t, true)

	for _, body := range []string{
		`{"messages":[{"role":"bogus","content":"hi"}]}`,
		`{"messages":[{"role":"user","content":"hi"},{"role":"tool","content":"x"}]}`,
		`{"messages":[{"content":"no role"}]}`,
	} {
		w := f.do(http.MethodPost, "/api/gateway/complete", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.NotEmpty(t, gjson.GetBytes(w.Body.Bytes(), "error").String(), body)
	}
}

func TestEventsStreamsState(t *testing.T) {
	f := newFixture(t, true)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Contains(t, res.Header.Get("Content-Type"), "text/event-stream")

	sc := bufio.NewScanner(res.Body)
	next := func() string {
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(line, "data:") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		return ""
	}

	first := next()
	assert.Equal(t, "dark", gjson.Get(first, "theme").String())

	f.orch.ToggleTheme()
	second := next()
	assert.Equal(t, "light", gjson.Get(second, "theme").String())
}

func TestMetricsCountOutcomes(t *testing.T) {
	f := newFixture(t, true)
	gomock.InOrder(
		f.gw.EXPECT().Complete(gomock.Any(), gomock.Any(), "gpt-4o-mini").Return(chat.Failed(chat.KindQuota, "quota", true)),
		f.gw.EXPECT().Complete(gomock.Any(), gomock.Any(), "gpt-3.5-turbo").Return(chat.Succeeded("ok")),
	)

	w := f.do(http.MethodPost, "/api/messages", `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.Contains(t, out, `pixelai_completions_total{model="gpt-4o-mini",result="quota"} 1`)
	assert.Contains(t, out, `pixelai_completions_total{model="gpt-3.5-turbo",result="ok"} 1`)
	assert.Contains(t, out, `pixelai_key_probes_total{result="configured"} 1`)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, true)
	w := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
}
