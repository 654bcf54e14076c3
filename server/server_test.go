package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/featsat/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const appXML = `<featureModel>
	<feature name="App" mandatory="true">
		<feature name="Core" mandatory="true"/>
		<group type="or">
			<feature name="Search"/>
			<feature name="Filter"/>
		</group>
	</feature>
	<constraints>
		<constraint id="c1"><englishStatement>If Search is selected, Filter must be selected.</englishStatement></constraint>
		%s
	</constraints>
</featureModel>`

// appModel returns the model file, with the given extra constraints.
func appModel(extra ...string) string {
	return strings.Replace(appXML, "%s", strings.Join(extra, "\n"), 1)
}

func newServer(t *testing.T, edit func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RateLimit = 0
	if edit != nil {
		edit(&cfg)
	}
	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

// upload posts the given model file to path, along with the given fields.
func upload(t *testing.T, s *Server, path, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Solver.Backend = "minisat"
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"ok","solver":"gophersat"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	s := newServer(t, nil)
	upload(t, s, "/v1/upload", "app.xml", appModel(), nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "featsat_http_requests_total")
}

func TestUpload(t *testing.T) {
	s := newServer(t, nil)
	rec := upload(t, s, "/v1/upload", "app.xml", appModel(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Formula     string `json:"logic_formula"`
		Constraints []struct {
			ID         string `json:"id"`
			Expression string `json:"booleanExpression"`
			Type       string `json:"type"`
		} `json:"constraints"`
	}
	decode(t, rec, &res)
	assert.True(t, strings.HasPrefix(res.Formula, "App ∧ "), res.Formula)
	assert.Contains(t, res.Formula, "(Search → Filter)")
	require.Len(t, res.Constraints, 1)
	assert.Equal(t, "c1", res.Constraints[0].ID)
	assert.Equal(t, "Search → Filter", res.Constraints[0].Expression)
	assert.Equal(t, "requires", res.Constraints[0].Type)
}

func TestUploadErrors(t *testing.T) {
	s := newServer(t, nil)
	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		code     string
	}{
		{"no file", "", "", http.StatusBadRequest, "no_file"},
		{"invalid XML", "app.xml", "<featureModel>", http.StatusBadRequest, "invalid_model"},
		{"invalid YAML", "app.yaml", "root: [", http.StatusBadRequest, "invalid_model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, s, "/v1/upload", tt.filename, tt.content, nil)
			assert.Equal(t, tt.status, rec.Code)
			var body errorBody
			decode(t, rec, &body)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestUploadNoFileMessage(t *testing.T) {
	s := newServer(t, nil)
	rec := upload(t, s, "/v1/upload", "", "", nil)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "No file part", body.Error)
}

func TestFindMWP(t *testing.T) {
	s := newServer(t, nil)
	for _, backend := range []string{"gophersat", "gini"} {
		t.Run(backend, func(t *testing.T) {
			s := newServer(t, func(cfg *config.Config) { cfg.Solver.Backend = backend })
			rec := upload(t, s, "/v1/find_mwp", "app.xml", appModel(), nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var res struct {
				Products   [][]string `json:"minimum_working_products"`
				Dropped    []any      `json:"dropped"`
				Iterations int        `json:"iterations"`
			}
			decode(t, rec, &res)
			assert.Equal(t, [][]string{{"App", "Core", "Filter"}}, res.Products)
			assert.Equal(t, 2, res.Iterations)
			assert.Empty(t, res.Dropped)
		})
	}
	rec := upload(t, s, "/v1/find_mwp", "app.xml",
		appModel(`<constraint id="c2"><booleanExpression>Core ∧ Unknown</booleanExpression></constraint>`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "invalid_constraint", body.Code)
	assert.Contains(t, body.Error, "Unknown")
}

func TestFindMWPDropped(t *testing.T) {
	s := newServer(t, nil)
	rec := upload(t, s, "/v1/find_mwp", "app.xml",
		appModel(`<constraint id="c2"><englishStatement>Nothing to see here.</englishStatement></constraint>`), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Dropped []struct {
			ID string `json:"id"`
		} `json:"dropped"`
	}
	decode(t, rec, &res)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, "c2", res.Dropped[0].ID)
}

func TestFindMWPIterationLimit(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.Solver.MaxIterations = 1 })
	rec := upload(t, s, "/v1/find_mwp", "app.xml", appModel(), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "iteration_limit", body.Code)
}

func TestVisualization(t *testing.T) {
	s := newServer(t, nil)
	rec := upload(t, s, "/v1/visualization", "app.xml", appModel(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res map[string]any
	decode(t, rec, &res)
	assert.Contains(t, res, "visualization_model")
	assert.Contains(t, res, "mandatory_features")
}

func TestTranslate(t *testing.T) {
	s := newServer(t, nil)
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"requires", `{"englishStatement": "Search requires Filter."}`, http.StatusOK,
			`{"booleanExpression": "Search → Filter", "type": "requires"}`},
		{"excludes", `{"englishStatement": "Ads excludes Premium", "features": ["ads", "premium"]}`, http.StatusOK,
			`{"booleanExpression": "~(Ads ∧ Premium)", "type": "excludes"}`},
		{"untranslated", `{"englishStatement": "Nothing to see here."}`, http.StatusUnprocessableEntity, ""},
		{"unknown feature", `{"englishStatement": "Search requires Filter.", "features": ["Search", "Core"]}`,
			http.StatusUnprocessableEntity, ""},
		{"missing statement", `{"features": ["Search"]}`, http.StatusBadRequest, ""},
		{"not JSON", `englishStatement`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/translate-constraint", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			s.Router().ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.want != "" {
				assert.JSONEq(t, tt.want, rec.Body.String())
			}
		})
	}
}

func TestCount(t *testing.T) {
	s := newServer(t, nil)
	rec := upload(t, s, "/v1/count", "app.xml", appModel(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"count": "2"}`, rec.Body.String())
}

func TestSmallest(t *testing.T) {
	s := newServer(t, nil)
	rec := upload(t, s, "/v1/smallest", "app.xml", appModel(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"product": ["App", "Core", "Filter"]}`, rec.Body.String())
}

func TestExplain(t *testing.T) {
	s := newServer(t, nil)
	rec := upload(t, s, "/v1/explain", "app.xml", appModel(), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = upload(t, s, "/v1/explain", "app.xml",
		appModel(`<constraint id="c2"><booleanExpression>~Core</booleanExpression></constraint>`), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Rules []struct {
			Kind string `json:"kind"`
		} `json:"rules"`
		Messages []string `json:"messages"`
	}
	decode(t, rec, &res)
	require.Len(t, res.Rules, 3)
	assert.Equal(t, "root", res.Rules[0].Kind)
	assert.Equal(t, "Core is mandatory under App", res.Messages[1])
	assert.Contains(t, res.Messages[2], "constraint c2")
}

func TestCheck(t *testing.T) {
	s := newServer(t, nil)
	tests := []struct {
		selection   string
		valid       bool
		completable bool
	}{
		{"App, Core, Filter", true, true},
		{"app,core,search,filter", true, true},
		{"App,Core,Search", false, true},
		{"Core", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.selection, func(t *testing.T) {
			rec := upload(t, s, "/v1/check", "app.xml", appModel(), map[string]string{"selection": tt.selection})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var res struct {
				Valid       bool `json:"valid"`
				Completable bool `json:"completable"`
			}
			decode(t, rec, &res)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.completable, res.Completable)
		})
	}
	rec := upload(t, s, "/v1/check", "app.xml", appModel(), map[string]string{"selection": "App,Ads"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "unknown_feature", body.Code)
}

func TestRateLimit(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.RateBurst = 1
	})
	rec := upload(t, s, "/v1/count", "app.xml", appModel(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = upload(t, s, "/v1/count", "app.xml", appModel(), nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	// Non-solving routes are not limited
	rec = upload(t, s, "/v1/upload", "app.xml", appModel(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
