package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/report"
)

const maxReportUpload = 10 << 20

// ImportReport loads the blend of a previously exported PDF report into the
// session.
func ImportReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReportUpload)
	if err := r.ParseMultipartForm(maxReportUpload); err != nil {
		importFailed(w, r, "Upload a PDF report of at most 10 MB.", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("report")
	if err != nil {
		importFailed(w, r, "Choose a PDF report to import.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		importFailed(w, r, "The upload could not be read.", http.StatusBadRequest)
		return
	}

	imported, err := report.ReadPDF(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if !errors.Is(err, report.ErrNotAReport) {
			applog.Debug(r.Context(), "uploaded file is not a readable pdf", "error", err)
		}
		importFailed(w, r, "The uploaded file is not a LipidGenesis report.", http.StatusUnprocessableEntity)
		return
	}

	eval := evaluate(imported.Input())
	if err := saveInput(r.Context(), eval.Input); err != nil {
		applog.Error(r.Context(), "failed to store imported blend", "error", err)
		http.Error(w, "The blend could not be saved for this session.", http.StatusServiceUnavailable)
		return
	}
	applog.Info(r.Context(), "report imported", "oils", len(eval.Input.Percentages), "line", eval.Input.Line)
	afterUpdate(w, r, eval.Input, workspaceMessage{
		notice: fmt.Sprintf("Imported a blend of %d oils.", len(eval.Input.Percentages)),
	})
}

// importFailed keeps htmx clients on the workspace with the message shown
// inline; other clients get a plain error response.
func importFailed(w http.ResponseWriter, r *http.Request, message string, status int) {
	if isHTMX(r) {
		renderWorkspace(w, r, loadInput(r), workspaceMessage{err: message}, http.StatusOK)
		return
	}
	http.Error(w, message, status)
}
