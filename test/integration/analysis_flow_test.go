package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"rickshaw-client/internal/bootstrap"
	"rickshaw-client/internal/config"
	"rickshaw-client/internal/dto"
	"rickshaw-client/internal/pkg/serverutils"
	"rickshaw-client/internal/server"
	"rickshaw-client/pkg/intake"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T, endpoint string) (*fiber.App, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DETECTION_API_ENDPOINT", endpoint)
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "app.log"))
	t.Setenv("LIVE_LOG_FILE_PATH", filepath.Join(dir, "live.log"))

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg)
	require.NoError(t, container.ConsumerService.Consume(context.Background()))

	return server.New(cfg, container).GetApp(), cfg
}

func call(t *testing.T, app *fiber.App, cookie *http.Cookie, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestAnalysisFlow(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.AnalyzeRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ImageURL == "https://img/broken.jpg" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"success":true,"isRickshaw":true,"rickshawConfidence":97.5,"labels":["Rickshaw","Wheel"],"labelConfidence":{"Rickshaw":97.5}}`))
	}))
	defer backend.Close()

	app, cfg := setupApp(t, backend.URL)

	// 1. Page render issues the session cookie.
	resp, page := call(t, app, nil, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "Rate My Rickshaw")
	assert.NotContains(t, string(page), config.ConfigWarning)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cfg.Session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	// 2. Successful analysis.
	resp, _ = call(t, app, cookie, http.MethodPut, "/api/analysis/v1/session/url", `{"image_url":"https://img/rickshaw.jpg"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := call(t, app, cookie, http.MethodPost, "/api/analysis/v1/session/submit?wait=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res serverutils.BaseResponse[dto.SessionSnapshot]
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotNil(t, res.Data.Render)
	assert.Equal(t, "97.5%", res.Data.Render.Verdict.Confidence)
	assert.Len(t, res.Data.Render.Labels, 2)
	assert.Equal(t, "97.5%", res.Data.Render.Labels[0].Confidence)
	assert.Empty(t, res.Data.Render.Labels[1].Confidence)

	// 3. Backend failure settles with the status code and clears loading.
	call(t, app, cookie, http.MethodPut, "/api/analysis/v1/session/url", `{"image_url":"https://img/broken.jpg"}`)
	resp, body = call(t, app, cookie, http.MethodPost, "/api/analysis/v1/session/submit?wait=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res = serverutils.BaseResponse[dto.SessionSnapshot]{}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Data.Loading)
	assert.Contains(t, res.Data.Error, "500")
	assert.Nil(t, res.Data.Result)
}

func TestUnconfiguredEndpointWarning(t *testing.T) {
	app, _ := setupApp(t, config.EndpointPlaceholder)

	resp, page := call(t, app, nil, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "Configuration Required")

	resp, body := call(t, app, nil, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"endpoint_configured":false`)
}

func TestLiveRequiresUpgrade(t *testing.T) {
	app, _ := setupApp(t, "http://127.0.0.1:1")

	resp, _ := call(t, app, nil, http.MethodGet, "/api/analysis/v1/live", "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestOversizedUploadShowsSizeMessage(t *testing.T) {
	app, cfg := setupApp(t, config.EndpointPlaceholder)

	resp, _ := call(t, app, nil, http.MethodPut, "/api/analysis/v1/session/mode", `{"mode":"upload"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cfg.Session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="huge.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	part.Write(make([]byte, 13*1024*1024))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/v1/session/file", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(cookie)
	resp, err = app.Test(req, 10000)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := call(t, app, cookie, http.MethodGet, "/api/analysis/v1/session", "")
	var res serverutils.BaseResponse[dto.SessionSnapshot]
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, intake.MsgImageTooBig, res.Data.Error)
	assert.Nil(t, res.Data.File)
}
