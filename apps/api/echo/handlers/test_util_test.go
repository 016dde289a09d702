package handlers_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	echoapi "github.com/ucfglobal/studentforms/apps/api/echo"
	"github.com/ucfglobal/studentforms/core"
	"github.com/ucfglobal/studentforms/core/form"
	emailsvc "github.com/ucfglobal/studentforms/services/email"
	logsvc "github.com/ucfglobal/studentforms/services/logger"
	dummydb "github.com/ucfglobal/studentforms/storage/database/dummy"
	"github.com/ucfglobal/studentforms/storage/files"
)

type httpErr struct {
	Error string `json:"error"`
}

type testApp struct {
	server    http.Handler
	store     *files.Store
	uploadDir string
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	core.Conf = &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "UCF Global Forms",
		FromEmail: "noreply@localhost",
		API:       core.APIConfig{DefaultPageLimit: 100, MaxPageLimit: 1000},
	}
	core.InitValidators()
	emailsvc.ClearSentMessages()

	logger := logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	uploadDir := t.TempDir()
	store := files.NewStore(uploadDir, logger)
	svc := form.NewService(dummydb.NewFormRepository(db), store, emailsvc.NewConsoleServiceMock(), logger)

	server := echoapi.NewServer(&echoapi.Options{
		Addr:           ":0",
		DisableReqLogs: true,
		FormSvc:        svc,
		Logger:         logger,
	})
	return &testApp{server: server, store: store, uploadDir: uploadDir}
}

func (app *testApp) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(body)
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) doMultipart(t *testing.T, path string, fields map[string]string, fileFields map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			t.Fatalf("writing field %s: %v", key, err)
		}
	}
	for key, content := range fileFields {
		fw, err := w.CreateFormFile(key, key+".pdf")
		if err != nil {
			t.Fatalf("creating file part %s: %v", key, err)
		}
		if _, err = fw.Write(content); err != nil {
			t.Fatalf("writing file part %s: %v", key, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshallSubmission(t *testing.T, data []byte) form.Submission {
	t.Helper()
	var sub form.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		t.Fatalf("unmarshalling submission: %v (body: %s)", err, data)
	}
	return sub
}

func unmarshallSubmissions(t *testing.T, data []byte) []form.Submission {
	t.Helper()
	var subs []form.Submission
	if err := json.Unmarshal(data, &subs); err != nil {
		t.Fatalf("unmarshalling submissions: %v (body: %s)", err, data)
	}
	return subs
}
