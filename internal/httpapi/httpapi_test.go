package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/core"
	"github.com/joseph-ayodele/label-verifier/internal/extract"
	"github.com/joseph-ayodele/label-verifier/internal/ocr"
	"github.com/joseph-ayodele/label-verifier/internal/rules"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// textRecognizer treats the uploaded bytes as the label's text.
type textRecognizer struct{}

func (textRecognizer) Recognize(_ context.Context, img []byte, rotation int) ([]string, error) {
	if rotation != 0 {
		return nil, nil
	}
	return strings.Split(string(img), "\n"), nil
}

type fakeHealth struct{ err error }

func (fakeHealth) Name() string                      { return "tesseract" }
func (f fakeHealth) Available(context.Context) error { return f.err }

func newTestRouter(t *testing.T, health HealthChecker, maxUpload int64) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg, err := rules.Default()
	require.NoError(t, err)
	proc, err := core.NewProcessor(logger, ocr.NewAggregator(textRecognizer{}, logger), reg)
	require.NoError(t, err)
	return NewRouter(proc, health, logger, Options{MaxUploadBytes: maxUpload})
}

const oldCrowForm = `{"brand_name":"Old Crow","class_type_designation":"Bourbon Whiskey","alcohol_content":"40","net_contents":"750ML","name_address":"Old Crow Distillery Co, Frankfort KY"}`

var oldCrowLabel = "OLD CROW BOURBON WHISKEY 40% ALC BY VOL 750 ML\n" +
	"Old Crow Distillery Co, Frankfort KY\n" + extract.CanonicalWarning

type upload struct {
	name string
	data string
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postAnalyze(t *testing.T, router http.Handler, query string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, "/analyze"+query, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeCompliant(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, 0)

	rec := postAnalyze(t, router, "",
		map[string]string{"beverage_type": "spirits", "form_data": oldCrowForm},
		upload{name: "front.png", data: oldCrowLabel})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "COMPLIANT", got["status"])
	assert.Equal(t, "SPIRITS", got["beverage_type"])
	assert.Empty(t, got["discrepancies"])
	assert.EqualValues(t, 8, got["rules_evaluated"])
	images := got["images"].([]any)
	require.Len(t, images, 1)
	assert.Equal(t, "front.png", images[0].(map[string]any)["id"])
}

func TestAnalyzeReportsDiscrepancies(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, 0)
	label := strings.Replace(oldCrowLabel, "40%", "45%", 1)

	rec := postAnalyze(t, router, "",
		map[string]string{"beverage_type": "MALT", "form_data": oldCrowForm},
		upload{name: "label.jpg", data: label})

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Status        string `json:"status"`
		Discrepancies []struct {
			RuleID   string `json:"rule_id"`
			Severity string `json:"severity"`
			Message  string `json:"message"`
		} `json:"discrepancies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "COMPLIANT", got.Status, "ABV is informational for malt")
	require.Len(t, got.Discrepancies, 1)
	assert.Equal(t, "ALC_PERCENT_MATCH_EXACT", got.Discrepancies[0].RuleID)
	assert.Equal(t, "info", got.Discrepancies[0].Severity)
}

func TestAnalyzeXLSX(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, 0)

	rec := postAnalyze(t, router, "?format=xlsx",
		map[string]string{"beverage_type": "WINE", "form_data": oldCrowForm},
		upload{name: "front.png", data: oldCrowLabel})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	status, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "COMPLIANT", status)
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, 0)
	good := upload{name: "front.png", data: oldCrowLabel}

	tests := []struct {
		name   string
		fields map[string]string
		files  []upload
		code   string
	}{
		{name: "missing beverage type", fields: map[string]string{"form_data": oldCrowForm}, files: []upload{good}, code: common.CodeInvalidInput},
		{name: "unknown beverage type", fields: map[string]string{"beverage_type": "cider", "form_data": oldCrowForm}, files: []upload{good}, code: common.CodeUnknownBeverageType},
		{name: "bad form json", fields: map[string]string{"beverage_type": "WINE", "form_data": `{"brand_name":`}, files: []upload{good}, code: common.CodeInvalidInput},
		{name: "no images", fields: map[string]string{"beverage_type": "WINE", "form_data": oldCrowForm}, code: common.CodeNoImages},
		{name: "unsupported format", fields: map[string]string{"beverage_type": "WINE", "form_data": oldCrowForm}, files: []upload{{name: "label.gif", data: "x"}}, code: common.CodeInvalidInput},
		{name: "empty image", fields: map[string]string{"beverage_type": "WINE", "form_data": oldCrowForm}, files: []upload{{name: "label.png"}}, code: common.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAnalyze(t, router, "", tt.fields, tt.files...)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var got errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.code, got.Error)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestAnalyzeRejectsOversizedUploads(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, 1024)

	rec := postAnalyze(t, router, "",
		map[string]string{"beverage_type": "WINE", "form_data": oldCrowForm},
		upload{name: "huge.png", data: strings.Repeat("x", 4096)})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, fakeHealth{}, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","ocr_engine":"tesseract","ocr_available":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	newTestRouter(t, fakeHealth{err: errors.New("executable file not found")}, 0).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestRules(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, fakeHealth{}, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []ruleSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, constants.Malt, got[0].BeverageType)
	require.Len(t, got[0].Rules, 8)
	assert.Equal(t, constants.RuleAlcPercentPresent, got[0].Rules[3].RuleID)
	assert.Equal(t, constants.SeverityInfo, got[0].Rules[3].Severity)
	assert.Equal(t, constants.SeverityError, got[1].Rules[3].Severity)
}

func TestAnalyzeHonoursRequestDeadline(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, 0)
	body, contentType := multipartBody(t,
		map[string]string{"beverage_type": "SPIRITS", "form_data": oldCrowForm},
		upload{name: "front.png", data: oldCrowLabel})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/analyze", body).WithContext(ctx)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID), "request id generated when absent")
}
