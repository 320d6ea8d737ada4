package handler

import (
	"fmt"
	"image"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"airway-triage/internal/assessment"
	"airway-triage/internal/inference"
	"airway-triage/internal/transport/http/response"
	"airway-triage/internal/upload"
)

// AnalyzeHandler serves the airway assessment endpoints. For best
// results callers provide three images: front view, open mouth, and
// lateral view.
type AnalyzeHandler struct {
	engine       *inference.Engine
	mock         *assessment.Mock
	maxFileBytes int64
}

func NewAnalyzeHandler(engine *inference.Engine, mock *assessment.Mock, maxFileBytes int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		engine:       engine,
		mock:         mock,
		maxFileBytes: maxFileBytes,
	}
}

// Analyze runs the model over the uploaded airway photos and returns the
// difficulty assessment. When the model is not loaded the endpoint
// degrades to placeholder output; /health reports the real model state.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	files, ok := h.validUploads(c)
	if !ok {
		return
	}

	if !h.engine.Available() {
		response.OK(c, assessment.Placeholder(len(files)))
		return
	}

	result, err := h.analyzeWithModel(files)
	if err != nil {
		log.Printf("analysis failed: %v", err)
		response.Error(c, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}
	response.OK(c, result)
}

// AnalyzeMock returns randomized results of the same shape, for UI work
// without the model present. Image bytes are never decoded here.
func (h *AnalyzeHandler) AnalyzeMock(c *gin.Context) {
	files, ok := h.validUploads(c)
	if !ok {
		return
	}
	response.OK(c, h.mock.Analyze(len(files)))
}

func (h *AnalyzeHandler) analyzeWithModel(files []*multipart.FileHeader) (assessment.Result, error) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}

	slots, ok := upload.ResolveRoles(names)
	if !ok {
		return assessment.Result{}, fmt.Errorf("no images to assign to views")
	}

	// Decode each distinct upload once; duplicated roles share the image.
	decoded := make(map[int]image.Image, len(files))
	var views [3]image.Image
	for role, idx := range slots {
		if img, seen := decoded[idx]; seen {
			views[role] = img
			continue
		}
		img, err := decodeUpload(files[idx])
		if err != nil {
			return assessment.Result{}, fmt.Errorf("decode %s: %w", files[idx].Filename, err)
		}
		decoded[idx] = img
		views[role] = img
	}

	p, err := h.engine.Predict(views[upload.RoleFront], views[upload.RoleOpen], views[upload.RoleLateral])
	if err != nil {
		return assessment.Result{}, err
	}
	return assessment.FromProbability(p, len(files)), nil
}

func decodeUpload(fh *multipart.FileHeader) (image.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return inference.DecodeImage(f)
}

func (h *AnalyzeHandler) validUploads(c *gin.Context) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		response.Error(c, http.StatusBadRequest, "No images provided")
		return nil, false
	}

	files, err := upload.Validate(form.File["images"])
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return nil, false
	}

	for _, f := range files {
		if h.maxFileBytes > 0 && f.Size > h.maxFileBytes {
			response.Error(c, http.StatusBadRequest, fmt.Sprintf(
				"File too large: %s (max %d bytes)", f.Filename, h.maxFileBytes))
			return nil, false
		}
	}
	return files, true
}
