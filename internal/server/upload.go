package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ragserve/internal/domain"
)

const maxUploadBytes = 64 << 20

// validExtensions maps accepted upload extensions to the document type
// the caller must declare for them.
var validExtensions = map[string]string{
	".pdf":  domain.DocTypePDF,
	".xlsx": domain.DocTypeExcel,
	".xls":  domain.DocTypeExcel,
	".docx": domain.DocTypeWord,
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "failed to parse upload form",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "missing file field",
		})
		return
	}
	defer file.Close()

	docType := r.FormValue("type_doc")
	suffix := strings.ToLower(filepath.Ext(header.Filename))
	if expected, ok := validExtensions[suffix]; !ok || expected != docType {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": fmt.Sprintf("only .pdf, .xlsx, .xls, .docx uploads with a matching type_doc are accepted; got %q with type_doc %q", suffix, docType),
		})
		return
	}

	target := filepath.Join(s.dataDir, fmt.Sprintf("%s_%s", uuid.NewString()[:8], filepath.Base(header.Filename)))
	if err := saveUpload(file, target); err != nil {
		s.logger.Error("failed to store upload", zap.String("path", target), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "failed to store uploaded file",
		})
		return
	}

	if err := s.ingester.IngestFile(r.Context(), target, docType); err != nil {
		s.logger.Error("ingestion failed",
			zap.String("path", target), zap.String("doc_type", docType), zap.Error(err))

		status := http.StatusInternalServerError
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]any{"error": err.Error()})
		return
	}

	// Metadata recording is best-effort once the index holds the content.
	if err := s.docs.Save(r.Context(), target, docType); err != nil {
		s.logger.Warn("failed to record document metadata",
			zap.String("path", target), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{"state": "success"})
}

func saveUpload(src io.Reader, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(target)
		return err
	}
	return nil
}
