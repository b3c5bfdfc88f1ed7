package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/substream/substream/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seriesCount, err := s.storage.CountSeries(ctx)
	if err != nil {
		s.logger.Error("status: count series failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	termCount, err := s.storage.CountTermEntries(ctx)
	if err != nil {
		s.logger.Error("status: count term entries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	snap, err := s.model.Snapshot(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"series":         seriesCount,
		"term_entries":   termCount,
		"indexed_series": snap.Size(),
		"dimensions":     snap.Vectorizer.Dimensions(),
		"model_built_at": snap.BuiltAt,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s.logger.Debug("search request", zap.String("query", query))
	response, err := s.engine.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

// handleVectorSearch ranks by plain cosine similarity, without the strict
// keyword coverage gate of the hybrid endpoint.
func (s *Server) handleVectorSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := s.config.Search.VectorLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}
	start := time.Now()
	hits, err := s.engine.VectorSearch(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("vector search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response := &models.SearchResponse{Query: query, Results: []models.SearchResult{}}
	for _, hit := range hits {
		series, err := s.storage.GetSeriesByName(r.Context(), hit.Name)
		if err != nil {
			continue
		}
		response.Results = append(response.Results, models.SearchResult{
			ID:       series.ID,
			Name:     series.Name,
			ImageURL: series.ImageURL,
			Synopsis: series.Synopsis,
			Score:    hit.Score,
		})
	}
	response.Count = len(response.Results)
	response.QueryTime = time.Since(start).Milliseconds()
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	list, err := s.storage.ListSeries(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*models.Series{}
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	series, err := s.storage.GetSeriesByID(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "series not found")
		return
	}
	s.respondJSON(w, http.StatusOK, series)
}

// handleSimilar returns content-similar series for a series id.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	series, err := s.storage.GetSeriesByID(r.Context(), id)
	if err != nil {
		s.respondJSON(w, http.StatusOK, models.RecommendResponse{Recommendations: []models.SearchResult{}})
		return
	}
	s.respondRecommendations(w, r, series.Name, s.recommend(r, series.Name, 6))
}

func (s *Server) handleRecommendContent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.respondRecommendations(w, r, name, s.recommend(r, name, s.config.Search.RecommendLimit))
}

func (s *Server) recommend(r *http.Request, name string, topN int) []models.ScoredSeries {
	recos, err := s.recommender.ByContent(r.Context(), name, topN)
	if err != nil {
		s.logger.Error("content recommendation failed", zap.String("series", name), zap.Error(err))
		return nil
	}
	return recos
}

func (s *Server) handleRecommendUser(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r)
	recos, err := s.recommender.ForUser(r.Context(), username, 10)
	if err != nil {
		s.logger.Error("user recommendation failed", zap.String("user", username), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondRecommendations(w, r, username, recos)
}

// respondRecommendations enriches scored names with catalog metadata.
func (s *Server) respondRecommendations(w http.ResponseWriter, r *http.Request, subject string, recos []models.ScoredSeries) {
	enriched := make([]models.SearchResult, 0, len(recos))
	for _, reco := range recos {
		series, err := s.storage.GetSeriesByName(r.Context(), reco.Name)
		if err != nil {
			continue
		}
		enriched = append(enriched, models.SearchResult{
			ID:       series.ID,
			Name:     series.Name,
			ImageURL: series.ImageURL,
			Synopsis: series.Synopsis,
			Score:    reco.Score,
		})
	}
	s.respondJSON(w, http.StatusOK, models.RecommendResponse{For: subject, Recommendations: enriched})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	snap, err := s.model.Build(r.Context(), true)
	if err != nil {
		s.logger.Error("model rebuild failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "rebuilt",
		"indexed_series": snap.Size(),
		"dimensions":     snap.Vectorizer.Dimensions(),
	})
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Username == "" || creds.Email == "" || creds.Password == "" {
		s.respondError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	hash, err := hashPassword(creds.Password)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	user := &models.User{Username: creds.Username, Email: creds.Email, PasswordHash: hash}
	if err := s.storage.CreateUser(r.Context(), user); err != nil {
		s.respondError(w, http.StatusConflict, "username or email already taken")
		return
	}
	token := s.sessions.Create(user.Username)
	s.respondJSON(w, http.StatusCreated, map[string]string{"username": user.Username, "token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.storage.GetUser(r.Context(), creds.Username)
	if err != nil || !checkPassword(user.PasswordHash, creds.Password) {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token := s.sessions.Create(user.Username)
	s.respondJSON(w, http.StatusOK, map[string]string{"username": user.Username, "token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(bearerToken(r))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.storage.GetRatings(r.Context(), usernameFrom(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ratings == nil {
		ratings = []*models.Rating{}
	}
	s.respondJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleUpsertRating(w http.ResponseWriter, r *http.Request) {
	var rating models.Rating
	if err := json.NewDecoder(r.Body).Decode(&rating); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rating.Username = usernameFrom(r)
	if err := rating.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.storage.GetSeriesByName(r.Context(), rating.SeriesName); err != nil {
		s.respondError(w, http.StatusNotFound, "series not found")
		return
	}
	if err := s.storage.UpsertRating(r.Context(), &rating); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rating)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.storage.DeleteRating(r.Context(), usernameFrom(r), name); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := s.storage.ListWatchlist(r.Context(), usernameFrom(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*models.Series{}
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	if _, err := s.storage.GetSeriesByID(r.Context(), id); err != nil {
		s.respondError(w, http.StatusNotFound, "series not found")
		return
	}
	if err := s.storage.AddToWatchlist(r.Context(), usernameFrom(r), id); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (s *Server) handleRemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	if err := s.storage.RemoveFromWatchlist(r.Context(), usernameFrom(r), id); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
