package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "klvcli/internal/errors"
	"klvcli/internal/exporter"
	"klvcli/internal/files"
	"klvcli/internal/services"
	"klvcli/internal/validation"
	"klvcli/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// ReportServiceInterface is the slice of the report service the handler needs.
type ReportServiceInterface interface {
	Load(ctx context.Context, filename string, r io.Reader) (int, error)
	Run(ctx context.Context, filter services.Filter) (*domain.ReportSet, error)
	Latest(ctx context.Context) (*domain.ReportSet, error)
	GetTable(ctx context.Context, name domain.Report) (domain.ReportTable, error)
	ExportLatest(ctx context.Context, w services.SetWriter) error
}

// ReportHandler serves uploads, aggregation runs, and report reads.
type ReportHandler struct {
	service       ReportServiceInterface
	fileValidator *validation.FileValidator
	archive       *files.Manager
	csvWriter     *exporter.CSVWriter
	validate      *validator.Validate
	maxUploadSize int64
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler. archive and csvWriter may be
// nil; the upload copy and disk-export routes then degrade gracefully.
func NewReportHandler(service ReportServiceInterface, fileValidator *validation.FileValidator, archive *files.Manager, csvWriter *exporter.CSVWriter, maxUploadSize int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:       service,
		fileValidator: fileValidator,
		archive:       archive,
		csvWriter:     csvWriter,
		validate:      validator.New(),
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "report_handler")),
		errorHandler:  errorHandler,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.Post("/run", h.Run)
	r.Get("/latest", h.Latest)
	r.Post("/export", h.ExportAll)
	r.Get("/exports", h.ListExports)
	r.Get("/uploads", h.ListUploads)

	r.Route("/{report}", func(r chi.Router) {
		r.Use(h.ReportCtx)
		r.Get("/", h.GetReport)
		r.Get("/export", h.ExportReport)
	})

	return r
}

// ReportCtx rejects unknown report names before the handlers run.
func (h *ReportHandler) ReportCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := domain.Report(chi.URLParam(r, "report"))
		if !name.Valid() {
			h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/reports/upload. The multipart file wholesale
// replaces any previously loaded dataset; it does not append.
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field 'file' is required"))
		return
	}
	defer file.Close()

	if err := h.fileValidator.ValidateUpload(header.Filename, header.Size, h.maxUploadSize); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.UploadFailed(err))
		return
	}

	// Keep a copy of the raw upload on disk while parsing it.
	var reader io.Reader = file
	var archive *files.UploadArchive
	if h.archive != nil {
		archive, err = h.archive.NewUploadArchive(header.Filename)
		if err != nil {
			h.logger.WarnContext(r.Context(), "upload archiving unavailable",
				slog.String("error", err.Error()))
		} else {
			reader = io.TeeReader(file, archive.Writer())
		}
	}

	rows, err := h.service.Load(r.Context(), header.Filename, reader)
	if archive != nil {
		if err != nil {
			archive.Discard()
		} else if commitErr := archive.Commit(); commitErr != nil {
			h.logger.WarnContext(r.Context(), "failed to finalize upload archive",
				slog.String("error", commitErr.Error()))
		}
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "upload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename))
		if errors.Is(err, services.ErrUnsupportedFormat) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadInvalid)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.UploadFailed(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"filename": header.Filename,
		"rows":     rows,
	})
}

// runRequest carries the optional date window for an aggregation run.
type runRequest struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// Run handles POST /api/reports/run: re-aggregates the loaded dataset.
func (h *ReportHandler) Run(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req runRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("from/to", "dates must be YYYY-MM-DD"))
		return
	}

	filter, err := buildFilter(req)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("from/to", err.Error()))
		return
	}

	set, err := h.service.Run(r.Context(), filter)
	if err != nil {
		h.logger.WarnContext(r.Context(), "run failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"run_id":       set.RunID,
		"generated_at": set.GeneratedAt,
		"input_rows":   set.InputRows,
		"filtered_out": set.FilteredOut,
	})
}

// Latest handles GET /api/reports/latest: run metadata without table bodies.
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.Latest(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	rowCounts := make(map[domain.Report]int, len(set.Tables))
	for name, table := range set.Tables {
		rowCounts[name] = len(table.Rows)
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id":       set.RunID,
		"generated_at": set.GeneratedAt,
		"input_rows":   set.InputRows,
		"filtered_out": set.FilteredOut,
		"row_counts":   rowCounts,
	})
}

// GetReport handles GET /api/reports/{report}.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	name := domain.Report(chi.URLParam(r, "report"))

	table, err := h.service.GetTable(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, table)
}

// ExportReport handles GET /api/reports/{report}/export, streaming the table
// as a CSV attachment.
func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	name := domain.Report(chi.URLParam(r, "report"))

	table, err := h.service.GetTable(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", name.ExportFilename()))
	if err := exporter.ExportTable(w, table); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("report", string(name)),
			slog.String("error", err.Error()))
	}
}

// ExportAll handles POST /api/reports/export: writes the latest report set
// to the reports directory, one CSV per report.
func (h *ReportHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	if h.csvWriter == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInternalServer)
		return
	}

	if err := h.service.ExportLatest(r.Context(), h.csvWriter); err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	filenames := make([]string, 0, len(domain.Reports))
	for _, name := range domain.Reports {
		filenames = append(filenames, name.ExportFilename())
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"files":  filenames,
	})
}

// ListExports handles GET /api/reports/exports.
func (h *ReportHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	h.listFiles(w, r, func(m *files.Manager) ([]files.FileInfo, error) {
		return m.ListExports()
	})
}

// ListUploads handles GET /api/reports/uploads: the archived upload copies.
func (h *ReportHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	h.listFiles(w, r, func(m *files.Manager) ([]files.FileInfo, error) {
		return m.ListUploads()
	})
}

func (h *ReportHandler) listFiles(w http.ResponseWriter, r *http.Request, list func(*files.Manager) ([]files.FileInfo, error)) {
	if h.archive == nil {
		render.JSON(w, r, map[string]interface{}{"files": []files.FileInfo{}})
		return
	}

	found, err := list(h.archive)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if found == nil {
		found = []files.FileInfo{}
	}
	render.JSON(w, r, map[string]interface{}{"files": found})
}

func buildFilter(req runRequest) (services.Filter, error) {
	var filter services.Filter
	if req.From != "" {
		t, err := time.Parse(dateLayout, req.From)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q", req.From)
		}
		filter.From = t
	}
	if req.To != "" {
		t, err := time.Parse(dateLayout, req.To)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q", req.To)
		}
		// Inclusive: the whole final day is in range.
		filter.To = t.Add(24*time.Hour - time.Second)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return filter, errors.New("to date precedes from date")
	}
	return filter, nil
}

// mapServiceError translates services sentinels into API errors. Anything
// unrecognized falls through as-is and renders a 500.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoDataset):
		return apierrors.ErrNoDataset
	case errors.Is(err, services.ErrNoDataInRange):
		return apierrors.ErrNoDataInRange
	case errors.Is(err, services.ErrNoReportSet):
		return apierrors.ErrNoReportSet
	case errors.Is(err, services.ErrUnknownReport):
		return apierrors.ErrReportNotFound
	default:
		return err
	}
}
