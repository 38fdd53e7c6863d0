package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxImageUploadSize is the largest accepted image upload
const MaxImageUploadSize = 5 * 1024 * 1024 // 5MB

// imageContentTypes maps accepted extensions to their media types
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".ico":  "image/x-icon",
}

// ValidateImageUpload checks the size, extension and sniffed content of an uploaded image
func ValidateImageUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxImageUploadSize {
		return fmt.Errorf("file size exceeds the maximum limit of 5MB")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	expected, ok := imageContentTypes[ext]
	if !ok {
		return fmt.Errorf("file type not allowed. Accepted formats: JPG, PNG, GIF, WEBP, ICO")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Read first 512 bytes to detect content type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	if detected != expected && !(ext == ".ico" && detected == "image/vnd.microsoft.icon") {
		return fmt.Errorf("invalid image content for %s file", ext)
	}
	return nil
}

// StoreMedia validates an uploaded image and stores it under a fresh key for kind
func StoreMedia(ctx context.Context, storage StorageProvider, kind string, fileHeader *multipart.FileHeader) (*StorageResult, error) {
	if !IsValidMediaKind(kind) {
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}
	if err := ValidateImageUpload(fileHeader); err != nil {
		v := NewValidationError()
		v.Add("file", err.Error())
		return nil, v
	}

	key := GenerateMediaKey(kind, fileHeader.Filename)
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	result, err := storage.UploadReader(ctx, src, key, imageContentTypes[strings.ToLower(filepath.Ext(fileHeader.Filename))], fileHeader.Size)
	if err != nil {
		return nil, err
	}
	result.FileOriginalName = fileHeader.Filename
	return result, nil
}
