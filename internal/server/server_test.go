package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"anoa.com/pengaduan/internal/config"
	"anoa.com/pengaduan/internal/entity"
	"anoa.com/pengaduan/internal/server"
	"anoa.com/pengaduan/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiTest struct {
	t         *testing.T
	db        *gorm.DB
	handler   http.Handler
	publicDir string
}

func setupAPI(t *testing.T) *apiTest {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	publicDir := t.TempDir()

	cfg := &config.Config{
		AppEnv:           "test",
		AllowedOrigins:   []string{"http://localhost:3000"},
		JWTSecret:        "test-secret",
		StorageDriver:    config.StorageDriverLocal,
		StoragePublicDir: publicDir,
		StoragePublicURL: "/storage",
		LoginMaxAttempts: 3,
		LoginDecay:       time.Minute,
		MaxPhotoSizeKB:   2048,
	}

	srv, err := server.NewServer(cfg, db, nil)
	require.NoError(t, err)

	return &apiTest{t: t, db: db, handler: srv.Handler(), publicDir: publicDir}
}

func (a *apiTest) do(req *http.Request, bearer string) *httptest.ResponseRecorder {
	a.t.Helper()

	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Accept", "application/json")
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *apiTest) doJSON(method, path string, body any, bearer string) *httptest.ResponseRecorder {
	a.t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.do(req, bearer)
}

func (a *apiTest) login(identifier, password string) string {
	a.t.Helper()

	rec := a.doJSON(http.MethodPost, "/api/auth/login", map[string]string{"email": identifier, "password": password}, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Status bool   `json:"status"`
		Token  string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(a.t, res.Status)
	return res.Token
}

type formFile struct {
	field string
	name  string
	data  []byte
}

func (a *apiTest) postForm(path string, fields map[string]string, file *formFile, bearer string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile(file.field, file.name)
		require.NoError(a.t, err)
		_, err = fw.Write(file.data)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.do(req, bearer)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type pengaduanBody struct {
	ID            uint    `json:"id_pengaduan"`
	NamaPengaduan string  `json:"nama_pengaduan"`
	Lokasi        string  `json:"lokasi"`
	IDItem        *uint   `json:"id_item"`
	Foto          *string `json:"foto"`
	FotoURL       *string `json:"foto_url"`
	IDUser        uint    `json:"id_user"`
	Status        string  `json:"status"`
}

type messageBody struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func TestComplaintLifecycle(t *testing.T) {
	api := setupAPI(t)
	u := testutil.CreateUser(t, api.db, "u", "u@example.com", "rahasia-u")
	testutil.CreateUser(t, api.db, "v", "v@example.com", "rahasia-v")
	lobby := testutil.CreateLokasi(t, api.db, "Lobby")

	tokenU := api.login("u@example.com", "rahasia-u")
	tokenV := api.login("v", "rahasia-v")

	// U files a complaint with a photo
	rec := api.postForm("/api/pengaduan", map[string]string{
		"nama_pengaduan": "Broken lamp",
		"deskripsi":      "The lobby lamp is broken",
		"id_lokasi":      fmt.Sprint(lobby.ID),
		"id_item":        "",
	}, &formFile{field: "foto", name: "lamp.png", data: testutil.PNG}, tokenU)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[pengaduanBody](t, rec)
	assert.Equal(t, "Broken lamp", created.NamaPengaduan)
	assert.Equal(t, "Lobby", created.Lokasi)
	assert.Equal(t, "DIAJUKAN", created.Status)
	assert.Equal(t, u.ID, created.IDUser)
	assert.Nil(t, created.IDItem)
	require.NotNil(t, created.Foto)
	require.NotNil(t, created.FotoURL)

	photoPath := filepath.Join(api.publicDir, filepath.FromSlash(*created.Foto))
	_, err := os.Stat(photoPath)
	require.NoError(t, err)

	// the photo is served from the public disk
	rec = api.do(httptest.NewRequest(http.MethodGet, *created.FotoURL, nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// U sees it, V does not
	rec = api.doJSON(http.MethodGet, "/api/pengaduan", nil, tokenU)
	require.Equal(t, http.StatusOK, rec.Code)
	listU := decode[[]pengaduanBody](t, rec)
	require.Len(t, listU, 1)
	assert.Equal(t, created.ID, listU[0].ID)

	rec = api.doJSON(http.MethodGet, "/api/pengaduan", nil, tokenV)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	showPath := fmt.Sprintf("/api/pengaduan/%d", created.ID)

	rec = api.doJSON(http.MethodGet, showPath, nil, tokenV)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Pengaduan tidak ditemukan.", decode[messageBody](t, rec).Message)

	rec = api.doJSON(http.MethodDelete, showPath, nil, tokenV)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// renaming the lokasi does not rewrite the complaint
	require.NoError(t, api.db.Model(&entity.Lokasi{}).Where("id_lokasi = ?", lobby.ID).Update("nama_lokasi", "Main Lobby").Error)

	rec = api.doJSON(http.MethodGet, showPath, nil, tokenU)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lobby", decode[pengaduanBody](t, rec).Lokasi)

	// U deletes it
	rec = api.doJSON(http.MethodDelete, showPath, nil, tokenU)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, messageBody{Status: true, Message: "Pengaduan dihapus"}, decode[messageBody](t, rec))

	_, err = os.Stat(photoPath)
	assert.True(t, os.IsNotExist(err))

	rec = api.doJSON(http.MethodGet, showPath, nil, tokenU)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.doJSON(http.MethodDelete, showPath, nil, tokenU)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateComplaintValidation(t *testing.T) {
	api := setupAPI(t)
	testutil.CreateUser(t, api.db, "u", "u@example.com", "rahasia-u")
	lobby := testutil.CreateLokasi(t, api.db, "Lobby")
	tokenU := api.login("u", "rahasia-u")

	testCases := []struct {
		name   string
		fields map[string]string
		file   *formFile
		status int
		field  string
	}{
		{
			name:   "missing title",
			fields: map[string]string{"deskripsi": "d", "id_lokasi": fmt.Sprint(lobby.ID)},
			status: http.StatusUnprocessableEntity,
			field:  "nama_pengaduan",
		},
		{
			name:   "title longer than 255 characters",
			fields: map[string]string{"nama_pengaduan": strings.Repeat("a", 256), "deskripsi": "d", "id_lokasi": fmt.Sprint(lobby.ID)},
			status: http.StatusUnprocessableEntity,
			field:  "nama_pengaduan",
		},
		{
			name:   "foto sent as text",
			fields: map[string]string{"nama_pengaduan": "x", "deskripsi": "d", "id_lokasi": fmt.Sprint(lobby.ID), "foto": "lamp.png"},
			status: http.StatusUnprocessableEntity,
			field:  "foto",
		},
		{
			name:   "foto is not an image",
			fields: map[string]string{"nama_pengaduan": "x", "deskripsi": "d", "id_lokasi": fmt.Sprint(lobby.ID)},
			file:   &formFile{field: "foto", name: "notes.png", data: []byte("just some text")},
			status: http.StatusUnprocessableEntity,
			field:  "foto",
		},
		{
			name:   "unknown lokasi",
			fields: map[string]string{"nama_pengaduan": "x", "deskripsi": "d", "id_lokasi": "9999"},
			status: http.StatusNotFound,
		},
		{
			name:   "unknown item",
			fields: map[string]string{"nama_pengaduan": "x", "deskripsi": "d", "id_lokasi": fmt.Sprint(lobby.ID), "id_item": "9999"},
			status: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.postForm("/api/pengaduan", tc.fields, tc.file, tokenU)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			body := decode[messageBody](t, rec)
			assert.False(t, body.Status)
			assert.NotEmpty(t, body.Message)
			if tc.field != "" {
				assert.Contains(t, body.Errors, tc.field)
			}
		})
	}

	var count int64
	require.NoError(t, api.db.Model(&entity.Pengaduan{}).Count(&count).Error)
	assert.Zero(t, count)

	entries, err := os.ReadDir(api.publicDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateComplaintJSON(t *testing.T) {
	api := setupAPI(t)
	testutil.CreateUser(t, api.db, "u", "u@example.com", "rahasia-u")
	lobby := testutil.CreateLokasi(t, api.db, "Lobby")
	item := testutil.CreateItem(t, api.db, "Lampu", &lobby.ID)
	tokenU := api.login("u", "rahasia-u")

	rec := api.doJSON(http.MethodPost, "/api/pengaduan", map[string]any{
		"nama_pengaduan": "Lampu <mati> & rusak",
		"deskripsi":      "Lampu lobby mati",
		"id_lokasi":      lobby.ID,
		"id_item":        item.ID,
	}, tokenU)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[pengaduanBody](t, rec)
	assert.Equal(t, "Lampu <mati> & rusak", created.NamaPengaduan)
	require.NotNil(t, created.IDItem)
	assert.Equal(t, item.ID, *created.IDItem)
	assert.Nil(t, created.Foto)
}

func TestNonNumericIDIsNotFound(t *testing.T) {
	api := setupAPI(t)
	testutil.CreateUser(t, api.db, "u", "u@example.com", "rahasia-u")
	tokenU := api.login("u", "rahasia-u")

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := api.doJSON(method, "/api/pengaduan/abc", nil, tokenU)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}
}

func TestAuthFlow(t *testing.T) {
	api := setupAPI(t)
	u := testutil.CreateUser(t, api.db, "u", "u@example.com", "rahasia-u")

	// wrong password and unknown user look the same
	wrong := api.doJSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "u", "password": "salah"}, "")
	unknown := api.doJSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody", "password": "salah"}, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "Email/Username atau password salah.", decode[messageBody](t, wrong).Message)

	rec := api.doJSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "u"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[messageBody](t, rec).Errors, "password")

	token := api.login("u@example.com", "rahasia-u")
	other := api.login("u", "rahasia-u")

	rec = api.doJSON(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[struct {
		Status bool           `json:"status"`
		Data   map[string]any `json:"data"`
	}](t, rec)
	assert.True(t, me.Status)
	assert.Equal(t, float64(u.ID), me.Data["id"])
	assert.NotContains(t, me.Data, "password")

	rec = api.doJSON(http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, messageBody{Status: true, Message: "Logout berhasil."}, decode[messageBody](t, rec))

	rec = api.doJSON(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthenticated.", decode[messageBody](t, rec).Message)

	// the second session is untouched
	rec = api.doJSON(http.MethodGet, "/api/auth/me", nil, other)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/api/auth/me", "/api/pengaduan", "/api/lokasi"} {
		rec = api.doJSON(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestLoginThrottle(t *testing.T) {
	api := setupAPI(t)
	testutil.CreateUser(t, api.db, "u", "u@example.com", "rahasia-u")

	for i := 0; i < 3; i++ {
		rec := api.doJSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "u", "password": "salah"}, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := api.doJSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "u", "password": "rahasia-u"}, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	body := decode[messageBody](t, rec)
	assert.False(t, body.Status)
	assert.True(t, strings.HasPrefix(body.Message, "Terlalu banyak percobaan login."))
}

func TestRegistryEndpoints(t *testing.T) {
	api := setupAPI(t)
	testutil.CreateUser(t, api.db, "u", "u@example.com", "rahasia-u")
	lobby := testutil.CreateLokasi(t, api.db, "Lobby")
	kelas := testutil.CreateLokasi(t, api.db, "Kelas")
	testutil.CreateItem(t, api.db, "Lampu", &lobby.ID)
	testutil.CreateItem(t, api.db, "Proyektor", &kelas.ID)
	token := api.login("u", "rahasia-u")

	rec := api.doJSON(http.MethodGet, "/api/lokasi", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	lokasi := decode[[]map[string]any](t, rec)
	require.Len(t, lokasi, 2)
	assert.Equal(t, "Kelas", lokasi[0]["nama_lokasi"])

	rec = api.doJSON(http.MethodGet, "/api/items", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = api.doJSON(http.MethodGet, fmt.Sprintf("/api/items?id_lokasi=%d", lobby.ID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Lampu", items[0]["nama_item"])

	rec = api.doJSON(http.MethodGet, "/api/items?id_lokasi=abc", nil, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealthz(t *testing.T) {
	api := setupAPI(t)

	rec := api.doJSON(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
