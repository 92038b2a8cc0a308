package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/memberimport/internal/apperrors"
	"github.com/mrlokans/memberimport/internal/backend"
	"github.com/mrlokans/memberimport/internal/database/fixtures"
	"github.com/mrlokans/memberimport/internal/database/sessions"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/importers/matchers"
	"github.com/mrlokans/memberimport/internal/services"
)

const membersCSV = "Voornaam;Achternaam;Geboortedatum;Tak\n" +
	"Emma;Peeters;20/08/2015;Welpen\n" +
	"Noah;Maes;03/02/2017;Kapoenen\n"

type fakeEnqueuer struct{}

func (fakeEnqueuer) EnqueueCommit(context.Context, string, bool, *bool) (string, error) {
	return "task-42", nil
}

func setupImportRouter(t *testing.T, maxUploadBytes int64) (*gin.Engine, *services.ImportService) {
	t.Helper()

	db := setupDatabase(t)
	local := backend.NewLocal(db.DB, nil)
	pipelines := func(period *entities.RegistrationPeriod) *importers.Pipeline {
		return importers.NewPipeline(matchers.Default(matchers.Options{Country: "BE", Period: period}))
	}
	service := services.NewImportService(pipelines, local, sessions.NewRepository(db.DB), services.NewSessionStore(time.Hour), services.Options{
		OrganizationID:  "org-1",
		DefaultPeriodID: fixtures.PeriodID,
		ImporterOptions: []importers.ImporterOption{importers.WithRowDelay(0)},
	})

	router := NewRouter(RouterConfig{
		ImportService:  service,
		Database:       db,
		OrganizationID: "org-1",
		MaxUploadBytes: maxUploadBytes,
	})
	return router, service
}

func uploadRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func uploadMembers(t *testing.T, router *gin.Engine) UploadResponse {
	t.Helper()

	w := serve(router, uploadRequest(t, "leden.csv", membersCSV))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) backend.ErrorResponse {
	t.Helper()

	var response backend.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestImportsController_FullFlow(t *testing.T) {
	router, _ := setupImportRouter(t, 0)

	uploaded := uploadMembers(t, router)
	require.NotNil(t, uploaded.SessionView)
	assert.NotEmpty(t, uploaded.ID)
	assert.Equal(t, 2, uploaded.TotalRows)
	require.Len(t, uploaded.Columns, 4)
	assert.Equal(t, "Voornaam", uploaded.Columns[0].Header)
	assert.Equal(t, "member.first_name", uploaded.Columns[0].MatcherID)
	assert.NotEmpty(t, uploaded.Matchers)

	base := "/api/imports/" + uploaded.ID

	w := serve(router, jsonRequest(http.MethodPost, base+"/commit", ""))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.CodeInvalidState, decodeError(t, w).Code)

	w = serve(router, jsonRequest(http.MethodPost, base+"/preview", ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var preview services.PreviewView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.Empty(t, preview.Errors)
	require.Len(t, preview.Members, 2)
	assert.Equal(t, services.MemberStatusNew, preview.Members[0].Status)
	assert.Equal(t, "Welpen", preview.Members[0].Group)

	w = serve(router, jsonRequest(http.MethodPost, base+"/commit", `{"paid": true}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.CommitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Empty(t, result.TaskID)
	require.Len(t, result.Reports, 2)
	assert.Empty(t, result.Reports[0].Error)

	w = serve(router, jsonRequest(http.MethodGet, base, ""))
	require.Equal(t, http.StatusOK, w.Code)
	var session services.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, entities.ImportStatusCompleted, session.Status)
	assert.Equal(t, 2, session.Succeeded)
	assert.Len(t, session.Reports, 2)

	w = serve(router, jsonRequest(http.MethodPost, base+"/commit", ""))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestImportsController_BackgroundCommit(t *testing.T) {
	router, service := setupImportRouter(t, 0)
	service.SetEnqueuer(fakeEnqueuer{})

	uploaded := uploadMembers(t, router)
	base := "/api/imports/" + uploaded.ID

	w := serve(router, jsonRequest(http.MethodPost, base+"/preview", ""))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, jsonRequest(http.MethodPost, base+"/commit", `{"waiting_list": false}`))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.JSONEq(t, `{"task_id":"task-42"}`, w.Body.String())
}

func TestImportsController_SetColumn(t *testing.T) {
	router, _ := setupImportRouter(t, 0)
	uploaded := uploadMembers(t, router)
	base := "/api/imports/" + uploaded.ID

	w := serve(router, jsonRequest(http.MethodPut, base+"/columns/3", `{"matcher_id": ""}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view services.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Columns[3].MatcherID)

	w = serve(router, jsonRequest(http.MethodPut, base+"/columns/3", `{"matcher_id": "registration.group"}`))
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"non numeric index", base + "/columns/x", `{"matcher_id": ""}`, http.StatusBadRequest},
		{"index out of range", base + "/columns/10", `{"matcher_id": ""}`, http.StatusBadRequest},
		{"unknown matcher", base + "/columns/0", `{"matcher_id": "member.shoe_size"}`, http.StatusNotFound},
		{"invalid body", base + "/columns/0", `{`, http.StatusBadRequest},
		{"unknown session", "/api/imports/missing/columns/0", `{"matcher_id": ""}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, jsonRequest(http.MethodPut, tt.path, tt.body))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestImportsController_Decide(t *testing.T) {
	router, _ := setupImportRouter(t, 0)
	uploaded := uploadMembers(t, router)
	base := "/api/imports/" + uploaded.ID

	w := serve(router, jsonRequest(http.MethodPost, base+"/existing/0", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, jsonRequest(http.MethodPost, base+"/existing/0", `{"equal": true}`))
	assert.Equal(t, http.StatusConflict, w.Code, "not previewed yet")

	w = serve(router, jsonRequest(http.MethodPost, base+"/preview", ""))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, jsonRequest(http.MethodPost, base+"/existing/0", `{"equal": true}`))
	assert.Equal(t, http.StatusConflict, w.Code, "new members have no probable match")

	w = serve(router, jsonRequest(http.MethodPost, base+"/existing/7", `{"equal": false}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, jsonRequest(http.MethodPost, base+"/existing", `{"equal": false}`))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestImportsController_UploadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		router, _ := setupImportRouter(t, 0)
		w := serve(router, jsonRequest(http.MethodPost, "/api/imports", ""))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "file is required", decodeError(t, w).Message)
	})

	t.Run("unsupported format", func(t *testing.T) {
		router, _ := setupImportRouter(t, 0)
		w := serve(router, uploadRequest(t, "leden.txt", membersCSV))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.CodeInvalidType, decodeError(t, w).Code)
	})

	t.Run("file too large", func(t *testing.T) {
		router, _ := setupImportRouter(t, 64)
		w := serve(router, uploadRequest(t, "leden.csv", membersCSV+strings.Repeat("Lena;Bos;01/01/2016;Welpen\n", 10)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestImportsController_Matchers(t *testing.T) {
	router, _ := setupImportRouter(t, 0)

	w := serve(router, jsonRequest(http.MethodGet, "/api/matchers", ""))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Matchers []services.MatcherView `json:"matchers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Matchers)
}
