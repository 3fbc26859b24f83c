package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/service"
)

// MaxUploadBytes bounds the size of one multipart upload request.
const MaxUploadBytes = 64 << 20

// uploadField is the multipart field that carries the files.
const uploadField = "files"

// FilesHandler handles uploading and listing the team's files.
type FilesHandler struct {
	workspace service.WorkspaceService
	maxBytes  int64
}

// NewFilesHandler creates a new FilesHandler.
func NewFilesHandler(workspace service.WorkspaceService) *FilesHandler {
	return &FilesHandler{
		workspace: workspace,
		maxBytes:  MaxUploadBytes,
	}
}

// FileListResponse represents the HTTP response payload for listing files.
//
// swagger:model FileListResponse
type FileListResponse struct {
	Files []service.FileInfo `json:"files"`
}

// UploadResponse represents the HTTP response payload for an upload.
//
// swagger:model UploadResponse
type UploadResponse struct {
	service.UploadReport
	Message string `json:"message"`
}

// ServeHTTP lists files on GET and stores a multipart upload on POST.
//
// swagger:route POST /api/files uploadFiles
//
// # Upload files for the caller's team
//
// Accepts multipart/form-data with one or more "files" parts. Each file is
// reported separately; unsupported formats are rejected without failing the
// others. The team index is rebuilt before the response is sent.
//
// ---
// consumes:
// - multipart/form-data
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Upload report
//	  schema:
//	    "$ref": "#/definitions/UploadResponse"
//	'400':
//	  description: No files or malformed form
//	'413':
//	  description: Upload too large
func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.upload(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *FilesHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	files, err := h.workspace.Files(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list files")
		return
	}
	if files == nil {
		files = []service.FileInfo{}
	}
	writeJSON(ctx, w, http.StatusOK, FileListResponse{Files: files})
}

func (h *FilesHandler) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File[uploadField]
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			logger.WarnContext(ctx, "failed to open uploaded part", "file", fh.Filename, "error", err)
			continue
		}
		defer closePart(f)
		uploads = append(uploads, service.Upload{Name: fh.Filename, Content: f})
	}

	report, err := h.workspace.Upload(ctx, uploads)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to store files")
		return
	}

	msg := "Files saved to the team folder."
	if report.Stored == 0 {
		msg = "No files were saved."
	} else if report.Stored < len(report.Files) {
		msg = "Some files were saved to the team folder."
	}
	if report.Stored > 0 && report.IndexError != "" {
		msg += " The index could not be rebuilt yet."
	}
	writeJSON(ctx, w, http.StatusOK, UploadResponse{UploadReport: report, Message: msg})
}

func closePart(f multipart.File) {
	_ = f.Close()
}
