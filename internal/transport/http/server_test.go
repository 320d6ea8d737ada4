package http

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"airway-triage/internal/assessment"
	"airway-triage/internal/bootstrap"
	"airway-triage/internal/config"
	"airway-triage/internal/inference"
)

type assessmentBody struct {
	Score          int      `json:"score"`
	RiskCategory   string   `json:"risk_category"`
	Concerns       []string `json:"concerns"`
	ImagesAnalyzed int      `json:"images_analyzed"`
}

type errorBody struct {
	Error string `json:"error"`
}

func testRouter(t *testing.T, checkpointPath string, maxFileBytes int64) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App:    config.AppConfig{Name: "airway-triage", GinMode: "test"},
		Model:  config.ModelConfig{CheckpointPath: checkpointPath, ImageSize: 224},
		Upload: config.UploadConfig{MaxFileBytes: maxFileBytes},
		CORS:   config.CORSConfig{AllowOrigins: []string{"*"}},
	}
	app := &bootstrap.App{
		Config:    cfg,
		Engine:    inference.NewEngine(checkpointPath, "", cfg.Model.ImageSize),
		Mock:      assessment.NewMock(rand.NewSource(7)),
		StartedAt: time.Now(),
	}
	return NewRouter(app)
}

func missingCheckpoint(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.onnx")
}

// multipartBody builds a request body with each (filename, content) pair
// under the "images" field.
func multipartBody(t *testing.T, files [][2]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f[0])
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(f[1])); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func postMultipart(router http.Handler, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthWithoutCheckpoint(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Status          string `json:"status"`
		ModelAvailable  bool   `json:"model_available"`
		ModelFileExists bool   `json:"model_file_exists"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("status = %q, want healthy", body.Status)
	}
	if body.ModelAvailable || body.ModelFileExists {
		t.Errorf("model flags = %v/%v, want false/false", body.ModelAvailable, body.ModelFileExists)
	}
}

func TestHealthReflectsCheckpointOnDisk(t *testing.T) {
	checkpoint := filepath.Join(t.TempDir(), "model.onnx")
	if err := os.WriteFile(checkpoint, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write checkpoint stub: %v", err)
	}
	router := testRouter(t, checkpoint, 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body struct {
		ModelAvailable  bool `json:"model_available"`
		ModelFileExists bool `json:"model_file_exists"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if !body.ModelFileExists {
		t.Errorf("model_file_exists = false, want true")
	}
	if body.ModelAvailable {
		t.Errorf("model_available = true for an engine that never loaded")
	}
}

func TestAnalyzeRejectsMissingMultipart(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 10<<20)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != "No images provided" {
		t.Errorf("error = %q, want 'No images provided'", body.Error)
	}
}

func TestAnalyzeRejectsWrongFieldName(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 10<<20)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", "front.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("data"))
	w.Close()

	rec := postMultipart(router, "/analyze", &buf, w.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No images provided") {
		t.Errorf("body = %s, want missing images message", rec.Body.String())
	}
}

func TestAnalyzeRejectsInvalidExtension(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 10<<20)

	body, contentType := multipartBody(t, [][2]string{{"scan.bmp", "data"}})
	rec := postMultipart(router, "/analyze", body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "scan.bmp") {
		t.Errorf("body = %s, want the offending filename", rec.Body.String())
	}
}

func TestAnalyzeRejectsOversizedFile(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 16)

	body, contentType := multipartBody(t, [][2]string{{"front.jpg", strings.Repeat("x", 64)}})
	rec := postMultipart(router, "/analyze", body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "File too large") {
		t.Errorf("body = %s, want file too large message", rec.Body.String())
	}
}

func TestAnalyzePlaceholderWhenModelUnavailable(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 10<<20)

	// Content bytes are irrelevant: the placeholder path never decodes.
	body, contentType := multipartBody(t, [][2]string{{"front.jpg", "not-an-image"}})
	rec := postMultipart(router, "/analyze", body, contentType)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (degraded placeholder)", rec.Code)
	}
	var result assessmentBody
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Score != 50 || result.RiskCategory != assessment.CategoryModerate {
		t.Errorf("placeholder = %d/%s, want 50/Moderate", result.Score, result.RiskCategory)
	}
	if result.ImagesAnalyzed != 1 {
		t.Errorf("images_analyzed = %d, want 1", result.ImagesAnalyzed)
	}
}

func TestAnalyzeMockValidUploads(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 10<<20)

	for i := 0; i < 50; i++ {
		body, contentType := multipartBody(t, [][2]string{
			{"front.jpg", "junk-bytes"},
			{"lat.png", "junk-bytes"},
		})
		rec := postMultipart(router, "/analyze/mock", body, contentType)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var result assessmentBody
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if result.Score < 25 || result.Score > 85 {
			t.Fatalf("mock score %d outside [25,85]", result.Score)
		}
		if result.RiskCategory != assessment.Categorize(result.Score) {
			t.Fatalf("category %s does not match score %d", result.RiskCategory, result.Score)
		}
		if result.ImagesAnalyzed != 2 {
			t.Fatalf("images_analyzed = %d, want 2", result.ImagesAnalyzed)
		}
		if len(result.Concerns) == 0 {
			t.Fatalf("mock returned no concerns")
		}
	}
}

func TestAnalyzeMockValidation(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 10<<20)

	body, contentType := multipartBody(t, [][2]string{{"scan.gif", "data"}})
	rec := postMultipart(router, "/analyze/mock", body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCORSAllowAllOrigins(t *testing.T) {
	router := testRouter(t, missingCheckpoint(t), 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
