package agent

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v1 "github.com/erikmagkekse/nfs-manager/agent/api/v1"
	"github.com/erikmagkekse/nfs-manager/exports"
	"github.com/erikmagkekse/nfs-manager/model"
	"github.com/erikmagkekse/nfs-manager/provision"
	"github.com/erikmagkekse/nfs-manager/utils"

	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

const testToken = "s3cret"

func newTestServer(t *testing.T, m *utils.MockRunner) (*echo.Echo, string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "exports")
	p, err := provision.New(model.ProvisionConfig{
		Exports:      model.ExportsConfig{File: file},
		Options:      "rw,sync,no_subtree_check",
		Owner:        "nobody:nogroup",
		Mode:         "777",
		ServiceUnit:  "nfs-kernel-server",
		ExportfsBin:  "exportfs",
		SystemctlBin: "systemctl",
		ChownBin:     "chown",
		ChmodBin:     "chmod",
	}, m)
	require.NoError(t, err)

	h := &v1.Handler{Provisioner: p}
	e := NewServer(h, map[string]string{testToken: "cockpit"}, "test", "abc123", map[string]string{"service_unit": "nfs-kernel-server"})
	return e, file
}

func do(e *echo.Echo, method, target, body, auth string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t, &utils.MockRunner{})

	rec := do(e, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "abc123", resp.Commit)
	assert.Equal(t, "nfs-kernel-server", resp.Features["service_unit"])
}

func TestAuth(t *testing.T) {
	e, file := newTestServer(t, &utils.MockRunner{})
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte("cockpit:"+testToken))

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"unknown scheme", "Token " + testToken, http.StatusUnauthorized},
		{"malformed basic", "Basic !!!", http.StatusUnauthorized},
		{"bearer", "Bearer " + testToken, http.StatusOK},
		{"basic", basic, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/v1/exports", "", tt.auth)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestListExports(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		e, file := newTestServer(t, &utils.MockRunner{})
		require.NoError(t, os.WriteFile(file, []byte("# Name: share\n/srv/share 10.0.0.0/24(rw)\n/srv/plain *(ro)\n"), 0o644))

		rec := do(e, http.MethodGet, "/v1/exports", "", "Bearer "+testToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp v1.ExportListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, []exports.Record{{Name: "share", Path: "/srv/share", ClientSpec: "10.0.0.0/24", Options: "rw"}}, resp.Exports)
	})

	t.Run("missing file", func(t *testing.T) {
		e, _ := newTestServer(t, &utils.MockRunner{})

		rec := do(e, http.MethodGet, "/v1/exports", "", "Bearer "+testToken)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp v1.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, exports.ErrIO, resp.Code)
	})
}

func TestListActiveExports(t *testing.T) {
	e, _ := newTestServer(t, &utils.MockRunner{Out: "/srv/a\t10.0.0.1(rw)\n/srv/b\t<world>(ro)\n"})

	rec := do(e, http.MethodGet, "/v1/exports/active", "", "Bearer "+testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1.ActiveExportListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "/srv/b", resp.Exports[1].Path)
	assert.Equal(t, "<world>", resp.Exports[1].Client)
}

func TestCreateExport(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &utils.MockRunner{}
		e, file := newTestServer(t, m)
		path := filepath.Join(t.TempDir(), "share1")

		body := `{"path":"` + path + `","client":"192.168.1.0/24","name":"share1"}`
		rec := do(e, http.MethodPost, "/v1/exports", body, "Bearer "+testToken)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp v1.ExportCreateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, path, resp.Path)
		assert.True(t, resp.Created)
		assert.Equal(t, provision.MountHint("", path), resp.MountHint)
		assert.Len(t, m.Calls, 4)

		records, err := exports.ReadExports(file, exports.ReadOptions{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "share1", records[0].Name)
	})

	t.Run("invalid path", func(t *testing.T) {
		m := &utils.MockRunner{}
		e, _ := newTestServer(t, m)

		rec := do(e, http.MethodPost, "/v1/exports", `{"path":"relative","client":"10.0.0.1"}`, "Bearer "+testToken)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp v1.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, exports.ErrInvalidArgument, resp.Code)
		assert.Empty(t, m.Calls)
	})

	t.Run("bad body", func(t *testing.T) {
		e, _ := newTestServer(t, &utils.MockRunner{})

		rec := do(e, http.MethodPost, "/v1/exports", `{"path":`, "Bearer "+testToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("step failure", func(t *testing.T) {
		m := &utils.MockRunner{Err: errors.New("exit status 1")}
		e, _ := newTestServer(t, m)

		body := `{"path":"` + filepath.Join(t.TempDir(), "s") + `","client":"10.0.0.1"}`
		rec := do(e, http.MethodPost, "/v1/exports", body, "Bearer "+testToken)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp v1.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, exports.ErrPermission, resp.Code)
	})
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", nil},
		{"single", "cockpit:abc", map[string]string{"abc": "cockpit"}},
		{"multiple with spaces", " cockpit : abc , ops:def ", map[string]string{"abc": "cockpit", "def": "ops"}},
		{"token with colon", "ops:a:b", map[string]string{"a:b": "ops"}},
		{"invalid entries only", "nocolon,:tok,name:", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTokens(tt.input))
		})
	}
}
