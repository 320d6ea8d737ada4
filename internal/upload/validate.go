package upload

import (
	"fmt"
	"mime/multipart"
	"strings"
)

// File types the intake UI is allowed to submit. HEIC/HEIF cover photos
// taken on iOS devices.
var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"heic": true,
	"heif": true,
}

// ValidationError rejects an upload set; the message goes back to the
// caller verbatim with a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate filters the headers uploaded under the "images" form field
// and returns the ordered valid subset. A nil slice means the field was
// absent from the request.
func Validate(files []*multipart.FileHeader) ([]*multipart.FileHeader, error) {
	if files == nil {
		return nil, &ValidationError{Message: "No images provided"}
	}
	if len(files) == 0 || allFilenamesEmpty(files) {
		return nil, &ValidationError{Message: "No images selected"}
	}

	valid := make([]*multipart.FileHeader, 0, len(files))
	for _, f := range files {
		if f.Filename != "" {
			valid = append(valid, f)
		}
	}
	if len(valid) == 0 {
		return nil, &ValidationError{Message: "No valid images provided"}
	}

	for _, f := range valid {
		if !allowedExtensions[extensionOf(f.Filename)] {
			return nil, &ValidationError{Message: fmt.Sprintf(
				"Invalid file type: %s. Allowed types: JPEG, PNG, HEIC", f.Filename)}
		}
	}
	return valid, nil
}

func allFilenamesEmpty(files []*multipart.FileHeader) bool {
	for _, f := range files {
		if f.Filename != "" {
			return false
		}
	}
	return true
}

// extensionOf returns the lowercased text after the last dot, or "" when
// the filename has no dot.
func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}
