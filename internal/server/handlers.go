package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/logging"
	"github.com/jonathan/hiring-pipeline/internal/server/middleware"
	"github.com/jonathan/hiring-pipeline/internal/storage"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

const maxJSONBody = 1 << 20

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, s.log, status, data)
}

// errorResponse maps err to a status code and writes {"error": ...}
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	writeError(w, s.log, err)
}

func writeJSON(w http.ResponseWriter, log *logging.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, log *logging.Logger, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	}
	writeJSON(w, log, status, map[string]string{"error": publicMessage(err, status)})
}

// decodeJSON reads a required JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	if errors.Is(err, io.EOF) {
		return types.Invalid("body", "request body is required")
	}
	return bodyError(err)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return bodyError(err)
}

func bodyError(err error) error {
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return types.Invalid("body", "invalid JSON: "+err.Error())
}

// pathID parses the {name} wildcard as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, types.Invalid(name, "must be a valid UUID")
	}
	return id, nil
}

// actor returns the authenticated caller; routes using it sit behind AuthMiddleware.
func actor(r *http.Request) types.Actor {
	a, _ := middleware.GetActor(r)
	return a
}

// parseMultipart bounds and parses a multipart form body.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	// one file plus form fields
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+maxJSONBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return types.Invalid("body", "expected a multipart form: "+err.Error())
	}
	return nil
}

// formFile reads an optional uploaded file; nil means the field was absent.
func formFile(r *http.Request, field string) (*storage.File, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, types.Invalid(field, "could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", field, err)
	}
	return &storage.File{
		Filename:    header.Filename,
		ContentType: detectContentType(header, data),
		Data:        data,
	}, nil
}

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".md":   "text/markdown",
	".txt":  "text/plain",
	".zip":  "application/zip",
}

// detectContentType trusts the part header unless it is generic, then falls back
// to the file extension and finally to content sniffing.
func detectContentType(header *multipart.FileHeader, data []byte) string {
	ct := header.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/octet-stream") {
		return ct
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

func formUUID(r *http.Request, field string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return uuid.Nil, types.Invalid(field, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, types.Invalid(field, "must be a valid UUID")
	}
	return id, nil
}

func formTime(r *http.Request, field string) (*time.Time, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, types.Invalid(field, "must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func formFloat(r *http.Request, field string) (*float64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, types.Invalid(field, "must be a number")
	}
	return &v, nil
}
