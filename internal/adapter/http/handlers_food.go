package adapthttp

import (
	"errors"
	"io"
	"net/http"
)

// 10 MB, matches the recognition API's own upload cap.
const maxImageBytes = 10 << 20

func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("image file is required"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	foods, err := s.recognition.AnalyzeImage(r.Context(), image, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"foods": foods, "success": len(foods) > 0})
}

func (s *Server) handleFoodSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New("q is required"))
		return
	}

	results, err := s.recognition.Search(r.Context(), query, intQuery(r, "limit", 10))
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
