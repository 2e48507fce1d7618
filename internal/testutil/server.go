// Package testutil provides an in-memory Luna API server for tests and examples.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/json"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// TestAPIKey is accepted by every Server.
const TestAPIKey = "lk_test_abcdefghijklmnopqrstuvwxyz012345"

// Server is a fake Luna API backed by maps. It accepts TestAPIKey, any access
// token it issued, and tokens added with AllowToken.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	users         map[string]luna.User
	projects      map[string]luna.Project
	tokens        map[string]struct{}
	refreshTokens map[string]struct{}
	failures      []int
	nextID        int

	requests  atomic.Int32
	refreshes atomic.Int32
	tokenTTL  time.Duration
}

// NewServer starts a fake API server. Call Close when done.
func NewServer() *Server {
	server := &Server{
		users:         make(map[string]luna.User),
		projects:      make(map[string]luna.Project),
		tokens:        map[string]struct{}{TestAPIKey: {}},
		refreshTokens: make(map[string]struct{}),
		tokenTTL:      time.Hour,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(server.echoRequestID)
	router.Use(server.injectFailures)

	router.Post(constants.RefreshPath, server.refresh)

	router.Group(func(r chi.Router) {
		r.Use(server.authenticate)

		r.Route(constants.UsersPath, func(r chi.Router) {
			r.Get("/", server.listUsers)
			r.Post("/", server.createUser)
			r.Get("/{id}", server.getUser)
			r.Patch("/{id}", server.updateUser)
			r.Delete("/{id}", server.deleteUser)
		})

		r.Route(constants.ProjectsPath, func(r chi.Router) {
			r.Get("/", server.listProjects)
			r.Post("/", server.createProject)
			r.Get("/{id}", server.getProject)
			r.Patch("/{id}", server.updateProject)
			r.Delete("/{id}", server.deleteProject)
		})
	})

	server.Server = httptest.NewServer(router)

	return server
}

// AllowToken makes the server accept access token.
func (s *Server) AllowToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = struct{}{}
}

// AllowRefreshToken makes the server accept refresh token once.
func (s *Server) AllowRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshTokens[token] = struct{}{}
}

// FailNext makes the next len(statuses) requests fail with the given statuses.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, statuses...)
}

// Requests returns the number of requests received.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Refreshes returns the number of successful token refreshes.
func (s *Server) Refreshes() int {
	return int(s.refreshes.Load())
}

// SeedUsers adds n users named "User <i>" and returns them in list order.
func (s *Server) SeedUsers(n int) []luna.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := make([]luna.User, 0, n)

	for i := range n {
		user := s.newUserLocked(fmt.Sprintf("user%d@example.com", i+1), fmt.Sprintf("User %d", i+1))
		seeded = append(seeded, user)
	}

	return seeded
}

// SeedProjects adds n projects owned by ownerID and returns them in list order.
func (s *Server) SeedProjects(n int, ownerID string) []luna.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := make([]luna.Project, 0, n)

	for i := range n {
		project := s.newProjectLocked(fmt.Sprintf("Project %d", i+1), nil, ownerID)
		seeded = append(seeded, project)
	}

	return seeded
}

func (s *Server) echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)

		if id := r.Header.Get(constants.HeaderRequestID); id != "" {
			w.Header().Set(constants.HeaderRequestID, id)
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()

		status := 0
		if len(s.failures) > 0 {
			status = s.failures[0]
			s.failures = s.failures[1:]
		}

		s.mu.Unlock()

		if status != 0 {
			if status == http.StatusTooManyRequests {
				w.Header().Set(constants.HeaderRetryAfter, "0")
			}

			writeError(w, status, luna.CodeUnknown, http.StatusText(status))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get(constants.HeaderAuthorization), "Bearer ")

		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()

		if !ok || !known {
			writeError(w, http.StatusUnauthorized, luna.CodeAuthInvalidKey, "invalid credentials")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}

	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		writeError(w, http.StatusBadRequest, luna.CodeValidationFailed, "malformed body")

		return
	}

	s.mu.Lock()

	_, valid := s.refreshTokens[body.RefreshToken]
	if !valid {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, luna.CodeAuthTokenExpired, "refresh token is not valid")

		return
	}

	delete(s.refreshTokens, body.RefreshToken)

	n := s.refreshes.Add(1)
	access := fmt.Sprintf("access-%d", n)
	refresh := fmt.Sprintf("refresh-%d", n)
	s.tokens[access] = struct{}{}
	s.refreshTokens[refresh] = struct{}{}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    int64(s.tokenTTL / time.Second),
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]luna.User, 0, len(s.users))

	for _, user := range s.users {
		users = append(users, user)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writePage(w, r, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user, ok := s.users[chi.URLParam(r, "id")]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, luna.CodeResourceNotFound, "user not found")

		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var create luna.UserCreate

	err := json.NewDecoder(r.Body).Decode(&create)
	if err != nil || create.Email == "" || create.Name == "" {
		writeError(w, http.StatusBadRequest, luna.CodeValidationFailed, "email and name are required")

		return
	}

	s.mu.Lock()
	for _, existing := range s.users {
		if existing.Email == create.Email {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, luna.CodeResourceConflict, "email already registered")

			return
		}
	}

	user := s.newUserLocked(create.Email, create.Name)
	user.AvatarURL = create.AvatarURL
	s.users[user.ID] = user
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var update luna.UserUpdate

	err := json.NewDecoder(r.Body).Decode(&update)
	if err != nil {
		writeError(w, http.StatusBadRequest, luna.CodeValidationFailed, "malformed body")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, luna.CodeResourceNotFound, "user not found")

		return
	}

	if update.Name != nil {
		user.Name = *update.Name
	}

	if update.AvatarURL != nil {
		user.AvatarURL = update.AvatarURL
	}

	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = user

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, ok := s.users[id]; !ok {
		writeError(w, http.StatusNotFound, luna.CodeResourceNotFound, "user not found")

		return
	}

	delete(s.users, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	projects := make([]luna.Project, 0, len(s.projects))

	for _, project := range s.projects {
		projects = append(projects, project)
	}
	s.mu.Unlock()

	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	writePage(w, r, projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	project, ok := s.projects[chi.URLParam(r, "id")]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, luna.CodeResourceNotFound, "project not found")

		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var create luna.ProjectCreate

	err := json.NewDecoder(r.Body).Decode(&create)
	if err != nil || create.Name == "" {
		writeError(w, http.StatusBadRequest, luna.CodeValidationFailed, "name is required")

		return
	}

	s.mu.Lock()
	project := s.newProjectLocked(create.Name, create.Description, "usr_owner")
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var update luna.ProjectUpdate

	err := json.NewDecoder(r.Body).Decode(&update)
	if err != nil {
		writeError(w, http.StatusBadRequest, luna.CodeValidationFailed, "malformed body")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, luna.CodeResourceNotFound, "project not found")

		return
	}

	if update.Name != nil {
		project.Name = *update.Name
	}

	if update.Description != nil {
		project.Description = update.Description
	}

	project.UpdatedAt = time.Now().UTC()
	s.projects[project.ID] = project

	writeJSON(w, http.StatusOK, project)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, ok := s.projects[id]; !ok {
		writeError(w, http.StatusNotFound, luna.CodeResourceNotFound, "project not found")

		return
	}

	delete(s.projects, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) newUserLocked(email, name string) luna.User {
	s.nextID++
	now := time.Now().UTC().Truncate(time.Second)
	user := luna.User{
		ID:        fmt.Sprintf("usr_%06d", s.nextID),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user

	return user
}

func (s *Server) newProjectLocked(name string, description *string, ownerID string) luna.Project {
	s.nextID++
	now := time.Now().UTC().Truncate(time.Second)
	project := luna.Project{
		ID:          fmt.Sprintf("prj_%06d", s.nextID),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.projects[project.ID] = project

	return project
}

// writePage serves items[cursor:cursor+limit]. The cursor is the offset of
// the first item of the page.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	limit := constants.DefaultPageLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > constants.MaxPageLimit {
			writeError(w, http.StatusBadRequest, luna.CodeValidationFailed, "limit must be between 1 and 100")

			return
		}

		limit = parsed
	}

	offset := 0

	if raw := r.URL.Query().Get("cursor"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > len(items) {
			writeError(w, http.StatusBadRequest, luna.CodeValidationFailed, "invalid cursor")

			return
		}

		offset = parsed
	}

	end := min(offset+limit, len(items))
	page := luna.ListResponse[T]{Data: items[offset:end]}

	if end < len(items) {
		next := strconv.Itoa(end)
		page.HasMore = true
		page.NextCursor = &next
	}

	writeJSON(w, http.StatusOK, page)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}
