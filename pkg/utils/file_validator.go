package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"semapa/config"
	apperrors "semapa/pkg/errors"
)

// ValidateFile checks size, extension and sniffed MIME type against the upload context rules.
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("contexto de upload desconhecido: %s", contextName)
	}

	if rules.MaxSizeMB > 0 {
		maxSizeBytes := rules.MaxSizeMB * 1024 * 1024
		if fileHeader.Size > maxSizeBytes {
			return apperrors.NewValidationError("arquivo", "tamanho (%d KB) excede o limite de %d MB", fileHeader.Size/1024, rules.MaxSizeMB)
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	if len(rules.AllowedExtensions) > 0 && !slices.Contains(rules.AllowedExtensions, ext) {
		return apperrors.NewValidationError("arquivo", "extensão não permitida: %q", ext)
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("não foi possível ler o arquivo para identificar o tipo: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("não foi possível reposicionar o arquivo: %w", err)
	}

	mimeType := http.DetectContentType(buffer[:n])
	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return apperrors.NewValidationError("arquivo", "tipo de arquivo não permitido: %s", mimeType)
	}

	return nil
}
