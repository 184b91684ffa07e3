package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/pandacode-cli/internal/frame"
	"github.com/KaramelBytes/pandacode-cli/internal/packager"
	"github.com/KaramelBytes/pandacode-cli/internal/runner"
)

// Upload field names accepted by /api/generate.
var fileFields = []string{"csv_file", "file"}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(s.started).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opt.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", s.opt.MaxUploadBytes))
			return
		}
		respondError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		respondError(w, http.StatusBadRequest, errors.New("missing required parameter: query"))
		return
	}

	filePath := "none"
	upload, err := s.saveUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if upload != "" {
		filePath = upload
		defer func() {
			if err := os.Remove(upload); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.log.Warn("remove upload", "path", upload, "error", err)
			}
		}()
	}

	start := time.Now()
	res := s.opt.Runner.Run(r.Context(), runner.Params{
		Query:      query,
		FilePath:   filePath,
		Preference: r.FormValue("preference"),
		Model:      strings.TrimSpace(r.FormValue("model")),
	})
	s.metrics.duration.Observe(time.Since(start).Seconds())

	if !res.OK() {
		s.metrics.queries.WithLabelValues(string(res.ErrorKind)).Inc()
		s.log.Error("query failed", "kind", res.ErrorKind, "error", *res.Error)
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":      *res.Error,
			"error_kind": res.ErrorKind,
		})
		return
	}
	s.metrics.queries.WithLabelValues("ok").Inc()
	if res.Chart != "" {
		s.metrics.charts.Inc()
	}
	if err := s.opt.History.Add(res); err != nil {
		s.log.Warn("history not updated", "error", err)
	}
	respondJSON(w, http.StatusOK, res)
}

// saveUpload copies the uploaded dataset to UploadDir, keeping its extension
// so the loader can pick the format. It returns "" when nothing was uploaded.
func (s *Server) saveUpload(r *http.Request) (string, error) {
	for _, field := range fileFields {
		file, hdr, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(hdr.Filename))
		out, err := os.CreateTemp(s.opt.UploadDir, "upload-*"+ext)
		if err != nil {
			return "", fmt.Errorf("store upload: %w", err)
		}
		if _, err := io.Copy(out, file); err != nil {
			_ = out.Close()
			_ = os.Remove(out.Name())
			return "", fmt.Errorf("store upload: %w", err)
		}
		if err := out.Close(); err != nil {
			_ = os.Remove(out.Name())
			return "", fmt.Errorf("store upload: %w", err)
		}
		return out.Name(), nil
	}
	return "", nil
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.opt.History.List())
}

func (s *Server) handleClearHistory(w http.ResponseWriter, _ *http.Request) {
	if err := s.opt.History.Clear(); err != nil {
		s.log.Error("clear history", "error", err)
		respondError(w, http.StatusInternalServerError, errors.New("failed to clear history"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleLatestChart(w http.ResponseWriter, _ *http.Request) {
	name, err := packager.Latest(s.opt.ChartsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respondJSON(w, http.StatusNotFound, map[string]string{"error": "No chart available"})
			return
		}
		s.log.Error("find latest chart", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error retrieving chart"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"chartUrl": "/charts/" + name})
}

func (s *Server) handleSupportedFormats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, frame.SupportedFormats())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}
