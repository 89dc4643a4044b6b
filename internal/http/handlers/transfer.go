package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/http/respond"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/ledger"
)

// handleImport accepts CSV either as the raw request body or as the "file"
// part of a multipart form.
func (h *MemberHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.importMaxBytes)

	content, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "import file too large")
			return
		}
		respond.Error(w, http.StatusBadRequest, "could not read import file")
		return
	}

	result, err := h.svc.ImportCSV(r.Context(), content)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "import finished", result)
}

func (h *MemberHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(r.Context(), &buf); err != nil {
		h.writeError(w, err)
		return
	}
	respond.Attachment(w, ledger.DefaultExportName, "text/csv; charset=utf-8", buf.Bytes())
}

func readUpload(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		b, err := io.ReadAll(r.Body)
		return string(b), err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return "", err
	}
	defer file.Close()
	b, err := io.ReadAll(file)
	return string(b), err
}
