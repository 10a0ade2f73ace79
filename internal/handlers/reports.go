package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/report"
)

// ExportReport renders the session's blend as a downloadable report. The
// format comes from the path extension: /app/report.pdf, .csv or .json.
func ExportReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	format := strings.TrimPrefix(path.Ext(r.URL.Path), ".")
	renderer, err := exportRenderer(format)
	if err != nil {
		http.Error(w, "Unsupported report format.", http.StatusNotFound)
		return
	}

	doc := buildDocument(evaluate(loadInput(r)))
	var buf bytes.Buffer
	if err := renderer.Render(r.Context(), &buf, doc); err != nil {
		applog.Error(r.Context(), "failed to render report", "error", err, "format", format)
		http.Error(w, "We were unable to generate the report. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportFilename(doc, renderer.Extension())))
	if _, err := w.Write(buf.Bytes()); err != nil {
		applog.Error(r.Context(), "failed to write report", "error", err)
		return
	}
	applog.Info(r.Context(), "report exported", "format", format, "fingerprint", doc.Fingerprint, "bytes", buf.Len())
}

var errExportFormat = errors.New("handlers: format not offered for download")

func exportRenderer(format string) (report.Renderer, error) {
	switch format {
	case "pdf", "csv", "json":
		return report.ForFormat(format, report.Options{Locale: reportLocale})
	default:
		return nil, errExportFormat
	}
}

func reportFilename(doc report.Document, ext string) string {
	id := doc.Fingerprint
	if len(id) > 12 {
		id = id[:12]
	}
	if id == "" {
		return "lipidgenesis." + ext
	}
	return fmt.Sprintf("lipidgenesis-%s.%s", id, ext)
}
