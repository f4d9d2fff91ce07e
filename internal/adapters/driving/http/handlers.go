package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
)

// maxUploadSize bounds document uploads (50 MB)
const maxUploadSize = 50 << 20

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and redis connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Dependency unavailable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials or account disabled"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrInvalidCredentials:
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case domain.ErrUnauthorized:
			writeError(w, http.StatusUnauthorized, "account disabled")
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "email and password are required")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh godoc
// @Summary      Refresh token
// @Description  Exchange a refresh token for a new JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid refresh token"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.RefreshToken(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout user
// @Description  Invalidate the current session token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	_ = s.authService.Logout(r.Context(), token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogoutAll godoc
// @Summary      Logout everywhere
// @Description  Invalidate all sessions for the current user
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /auth/logout-all [post]
func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.authService.LogoutAll(r.Context(), authCtx.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to invalidate sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Setup endpoint (no auth required, one-time use)

// handleSetup godoc
// @Summary      Initial setup
// @Description  Create the initial admin user. This endpoint can only be called once when no users exist.
// @Tags         Setup
// @Accept       json
// @Produce      json
// @Param        request  body      driving.SetupRequest  true  "Admin user details"
// @Success      201      {object}  driving.SetupResponse
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      403      {object}  ErrorResponse  "Setup already complete"
// @Failure      500      {object}  ErrorResponse  "Setup failed"
// @Router       /setup [post]
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req driving.SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.userService.Setup(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "email, password, and name are required")
		case domain.ErrForbidden:
			writeError(w, http.StatusForbidden, "setup already complete")
		default:
			writeError(w, http.StatusInternalServerError, "setup failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// User endpoints

// handleGetMe godoc
// @Summary      Get current user
// @Description  Get the currently authenticated user's profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserSummary
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Router       /me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user.ToSummary())
}

// handleChangePassword godoc
// @Summary      Change password
// @Description  Change the password of the currently authenticated user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.ChangePasswordRequest  true  "Current and new password"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      401      {object}  ErrorResponse  "Wrong current password"
// @Router       /me/password [put]
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.authService.ChangePassword(r.Context(), authCtx.UserID, req); err != nil {
		switch err {
		case domain.ErrInvalidCredentials:
			writeError(w, http.StatusUnauthorized, "current password is incorrect")
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "invalid password")
		default:
			writeError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListUsers godoc
// @Summary      List all users
// @Description  Get a list of all users (admin only)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.UserSummary
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Forbidden - admin only"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /users [get]
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	summaries := make([]*domain.UserSummary, len(users))
	for i, u := range users {
		summaries[i] = u.ToSummary()
	}

	writeJSON(w, http.StatusOK, summaries)
}

// handleCreateUser godoc
// @Summary      Create user
// @Description  Create a new user (admin only)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreateUserRequest  true  "User details"
// @Success      201      {object}  domain.UserSummary
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "User already exists"
// @Router       /users [post]
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.userService.Create(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrAlreadyExists:
			writeError(w, http.StatusConflict, "user already exists")
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user.ToSummary())
}

// handleGetUser godoc
// @Summary      Get user
// @Description  Get a user by ID (admin only)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.UserSummary
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Router       /users/{id} [get]
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user.ToSummary())
}

// handleUpdateUser godoc
// @Summary      Update user
// @Description  Update a user's name, role, or active flag (admin only)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "User ID"
// @Param        request  body      driving.UpdateUserRequest  true  "Fields to update"
// @Success      200      {object}  domain.UserSummary
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      404      {object}  ErrorResponse  "User not found"
// @Router       /users/{id} [put]
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.userService.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		switch err {
		case domain.ErrNotFound:
			writeError(w, http.StatusNotFound, "user not found")
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	writeJSON(w, http.StatusOK, user.ToSummary())
}

// handleDeleteUser godoc
// @Summary      Delete user
// @Description  Delete a user by ID (admin only)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Router       /users/{id} [delete]
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	if err := s.userService.Delete(r.Context(), id); err != nil {
		switch err {
		case domain.ErrNotFound:
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete user")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// setPasswordRequest carries an admin-set password
type setPasswordRequest struct {
	Password string `json:"password"`
}

// handleSetPassword godoc
// @Summary      Set user password
// @Description  Set a new password for a user (admin only)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true  "User ID"
// @Param        request  body      setPasswordRequest  true  "New password"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      404      {object}  ErrorResponse  "User not found"
// @Router       /users/{id}/password [put]
func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.userService.SetPassword(r.Context(), r.PathValue("id"), req.Password); err != nil {
		switch err {
		case domain.ErrNotFound:
			writeError(w, http.StatusNotFound, "user not found")
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "invalid password")
		default:
			writeError(w, http.StatusInternalServerError, "failed to set password")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Workspace endpoints

// handleListWorkspaces godoc
// @Summary      List workspaces
// @Description  Get all workspaces
// @Tags         Workspaces
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Workspace
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /workspaces [get]
func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.workspaceService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list workspaces")
		return
	}

	writeJSON(w, http.StatusOK, workspaces)
}

// handleCreateWorkspace godoc
// @Summary      Create workspace
// @Description  Create a new workspace
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreateWorkspaceRequest  true  "Workspace details"
// @Success      201      {object}  domain.Workspace
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "Workspace name already taken"
// @Router       /workspaces [post]
func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workspace, err := s.workspaceService.Create(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch err {
		case domain.ErrAlreadyExists:
			writeError(w, http.StatusConflict, "workspace name already taken")
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create workspace")
		}
		return
	}

	writeJSON(w, http.StatusCreated, workspace)
}

// handleGetWorkspace godoc
// @Summary      Get workspace
// @Description  Get a workspace with its source and analysis counts
// @Tags         Workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  domain.WorkspaceSummary
// @Failure      404  {object}  ErrorResponse  "Workspace not found"
// @Router       /workspaces/{id} [get]
func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	summary, err := s.workspaceService.GetSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "workspace not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get workspace")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleUpdateWorkspace godoc
// @Summary      Update workspace
// @Description  Update a workspace's name, description, visibility, or active flag
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Workspace ID"
// @Param        request  body      driving.UpdateWorkspaceRequest  true  "Fields to update"
// @Success      200      {object}  domain.Workspace
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      404      {object}  ErrorResponse  "Workspace not found"
// @Router       /workspaces/{id} [put]
func (s *Server) handleUpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workspace, err := s.workspaceService.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "workspace not found")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "workspace name already taken")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update workspace")
		}
		return
	}

	writeJSON(w, http.StatusOK, workspace)
}

// handleDeleteWorkspace godoc
// @Summary      Delete workspace
// @Description  Delete a workspace and everything in it (admin only)
// @Tags         Workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Workspace not found"
// @Router       /workspaces/{id} [delete]
func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.workspaceService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "workspace not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handlePurgeWorkspace godoc
// @Summary      Purge workspace content
// @Description  Blank extracted document content across the workspace, keeping metadata and scores (admin only)
// @Tags         Workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  driving.PurgeResult
// @Failure      404  {object}  ErrorResponse  "Workspace not found"
// @Router       /workspaces/{id}/purge [post]
func (s *Server) handlePurgeWorkspace(w http.ResponseWriter, r *http.Request) {
	result, err := s.workspaceService.PurgeContent(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "workspace not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to purge workspace content")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Source endpoints

// handleListSources godoc
// @Summary      List sources
// @Description  Get all document sources in a workspace (content omitted)
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {array}   domain.Source
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /workspaces/{id}/sources [get]
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.sourceService.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}

	writeJSON(w, http.StatusOK, sources)
}

// handleUploadSource godoc
// @Summary      Upload document
// @Description  Ingest a document from a multipart form. The file type is detected from the file name, text is extracted, and the word count computed.
// @Tags         Sources
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file          formData  file    true   "Document file"
// @Param        workspace_id  formData  string  true   "Workspace ID"
// @Param        title         formData  string  true   "Document title"
// @Success      201  {object}  domain.Source
// @Failure      400  {object}  ErrorResponse  "Invalid upload"
// @Failure      404  {object}  ErrorResponse  "Workspace not found"
// @Failure      409  {object}  ErrorResponse  "Duplicate document"
// @Router       /sources/upload [post]
func (s *Server) handleUploadSource(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	req := driving.UploadSourceRequest{
		WorkspaceID:     r.FormValue("workspace_id"),
		Title:           r.FormValue("title"),
		FileName:        header.Filename,
		Data:            data,
		SourceType:      domain.SourceType(r.FormValue("source_type")),
		Status:          domain.SourceStatus(r.FormValue("status")),
		IsAuthoritative: r.FormValue("is_authoritative") == "true",
		Version:         r.FormValue("version"),
		Author:          r.FormValue("author"),
		Department:      r.FormValue("department"),
		ContainsPII:     r.FormValue("contains_pii") == "true",
	}
	if v := r.FormValue("document_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "document_date must be RFC 3339")
			return
		}
		req.DocumentDate = &t
	}

	source, err := s.sourceService.Upload(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "document already uploaded to this workspace")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "workspace not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid upload")
		default:
			writeError(w, http.StatusInternalServerError, "failed to ingest document")
		}
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

// handleImportSource godoc
// @Summary      Import document
// @Description  Fetch a document from a connected external provider and ingest it
// @Tags         Sources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.ImportRequest  true  "Import details"
// @Success      201      {object}  domain.Source
// @Failure      400      {object}  ErrorResponse  "Invalid request or provider not configured"
// @Failure      404      {object}  ErrorResponse  "Workspace not found"
// @Failure      409      {object}  ErrorResponse  "Duplicate document"
// @Failure      503      {object}  ErrorResponse  "Provider unavailable"
// @Router       /sources/import [post]
func (s *Server) handleImportSource(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, err := s.sourceService.Import(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConnectorNotFound):
			writeError(w, http.StatusBadRequest, "provider not configured")
		case errors.Is(err, domain.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "provider unavailable")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "document already imported to this workspace")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "workspace not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid import request")
		default:
			writeError(w, http.StatusInternalServerError, "failed to import document")
		}
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

// handleGetSource godoc
// @Summary      Get source
// @Description  Get a document source by ID, including its extracted content
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Source ID"
// @Success      200  {object}  domain.Source
// @Failure      404  {object}  ErrorResponse  "Source not found"
// @Router       /sources/{id} [get]
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	source, err := s.sourceService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}

	writeJSON(w, http.StatusOK, source)
}

// handleUpdateSource godoc
// @Summary      Update source
// @Description  Update a source's metadata (title, status, authoritative flag, provenance fields)
// @Tags         Sources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Source ID"
// @Param        request  body      driving.UpdateSourceRequest  true  "Fields to update"
// @Success      200      {object}  domain.Source
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      404      {object}  ErrorResponse  "Source not found"
// @Router       /sources/{id} [put]
func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, err := s.sourceService.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "source not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update source")
		}
		return
	}

	writeJSON(w, http.StatusOK, source)
}

// handleDeleteSource godoc
// @Summary      Delete source
// @Description  Delete a document source
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Source ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Source not found"
// @Router       /sources/{id} [delete]
func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	if err := s.sourceService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "source not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete source")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handlePurgeSource godoc
// @Summary      Purge source content
// @Description  Blank a source's extracted content while keeping its metadata (admin only)
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Source ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Source not found or already purged"
// @Router       /sources/{id}/purge [post]
func (s *Server) handlePurgeSource(w http.ResponseWriter, r *http.Request) {
	if err := s.sourceService.Purge(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "source not found or already purged")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to purge source content")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

// Prompt pack endpoints

// handleListPromptPacks godoc
// @Summary      List prompt packs
// @Description  Get all prompt pack versions
// @Tags         Prompt Packs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.PromptPack
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /prompt-packs [get]
func (s *Server) handleListPromptPacks(w http.ResponseWriter, r *http.Request) {
	packs, err := s.promptService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list prompt packs")
		return
	}

	writeJSON(w, http.StatusOK, packs)
}

// handleCreatePromptPack godoc
// @Summary      Create prompt pack
// @Description  Create a new versioned prompt pack (admin only)
// @Tags         Prompt Packs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreatePromptPackRequest  true  "Prompt pack details"
// @Success      201      {object}  domain.PromptPack
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "Version tag already exists"
// @Router       /prompt-packs [post]
func (s *Server) handleCreatePromptPack(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.CreatePromptPackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pack, err := s.promptService.Create(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "version tag already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create prompt pack")
		}
		return
	}

	writeJSON(w, http.StatusCreated, pack)
}

// handleGetActivePromptPack godoc
// @Summary      Get active prompt pack
// @Description  Get the active prompt pack for a use case
// @Tags         Prompt Packs
// @Produce      json
// @Security     BearerAuth
// @Param        use_case  query     string  true  "Use case (e.g. strategy, post-mortem)"
// @Success      200       {object}  domain.PromptPack
// @Failure      400       {object}  ErrorResponse  "Missing use_case"
// @Failure      404       {object}  ErrorResponse  "No active pack for use case"
// @Router       /prompt-packs/active [get]
func (s *Server) handleGetActivePromptPack(w http.ResponseWriter, r *http.Request) {
	useCase := r.URL.Query().Get("use_case")
	if useCase == "" {
		writeError(w, http.StatusBadRequest, "missing use_case parameter")
		return
	}

	pack, err := s.promptService.GetActiveForUseCase(r.Context(), useCase)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no active prompt pack for use case")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get prompt pack")
		return
	}

	writeJSON(w, http.StatusOK, pack)
}

// handleGetPromptPack godoc
// @Summary      Get prompt pack
// @Description  Get a prompt pack by ID
// @Tags         Prompt Packs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prompt pack ID"
// @Success      200  {object}  domain.PromptPack
// @Failure      404  {object}  ErrorResponse  "Prompt pack not found"
// @Router       /prompt-packs/{id} [get]
func (s *Server) handleGetPromptPack(w http.ResponseWriter, r *http.Request) {
	pack, err := s.promptService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "prompt pack not found")
		return
	}

	writeJSON(w, http.StatusOK, pack)
}

// handleUpdatePromptPack godoc
// @Summary      Update prompt pack
// @Description  Update an unlocked prompt pack (admin only). Locked packs cannot be edited.
// @Tags         Prompt Packs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Prompt pack ID"
// @Param        request  body      driving.UpdatePromptPackRequest  true  "Fields to update"
// @Success      200      {object}  domain.PromptPack
// @Failure      403      {object}  ErrorResponse  "Pack is locked"
// @Failure      404      {object}  ErrorResponse  "Prompt pack not found"
// @Router       /prompt-packs/{id} [put]
func (s *Server) handleUpdatePromptPack(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdatePromptPackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pack, err := s.promptService.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPackLocked):
			writeError(w, http.StatusForbidden, "prompt pack is locked")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "prompt pack not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update prompt pack")
		}
		return
	}

	writeJSON(w, http.StatusOK, pack)
}

// handleDeletePromptPack godoc
// @Summary      Delete prompt pack
// @Description  Delete an unlocked prompt pack (admin only)
// @Tags         Prompt Packs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prompt pack ID"
// @Success      200  {object}  StatusResponse
// @Failure      403  {object}  ErrorResponse  "Pack is locked"
// @Failure      404  {object}  ErrorResponse  "Prompt pack not found"
// @Router       /prompt-packs/{id} [delete]
func (s *Server) handleDeletePromptPack(w http.ResponseWriter, r *http.Request) {
	if err := s.promptService.Delete(r.Context(), r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, domain.ErrPackLocked):
			writeError(w, http.StatusForbidden, "prompt pack is locked")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "prompt pack not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete prompt pack")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleLockPromptPack godoc
// @Summary      Lock prompt pack
// @Description  Freeze a prompt pack against further edits (admin only)
// @Tags         Prompt Packs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prompt pack ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Prompt pack not found"
// @Router       /prompt-packs/{id}/lock [post]
func (s *Server) handleLockPromptPack(w http.ResponseWriter, r *http.Request) {
	if err := s.promptService.Lock(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt pack not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to lock prompt pack")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "locked"})
}

// handleActivatePromptPack godoc
// @Summary      Activate prompt pack
// @Description  Make a pack the active version for its use case, deactivating any previous one (admin only)
// @Tags         Prompt Packs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prompt pack ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Prompt pack not found"
// @Router       /prompt-packs/{id}/activate [post]
func (s *Server) handleActivatePromptPack(w http.ResponseWriter, r *http.Request) {
	if err := s.promptService.Activate(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt pack not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to activate prompt pack")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

// handleDeprecatePromptPack godoc
// @Summary      Deprecate prompt pack
// @Description  Deactivate a pack and stamp its deprecation time (admin only)
// @Tags         Prompt Packs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prompt pack ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Prompt pack not found"
// @Router       /prompt-packs/{id}/deprecate [post]
func (s *Server) handleDeprecatePromptPack(w http.ResponseWriter, r *http.Request) {
	if err := s.promptService.Deprecate(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt pack not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to deprecate prompt pack")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deprecated"})
}

// Analysis endpoints

// handleListAnalyses godoc
// @Summary      List analyses
// @Description  Get all analyses in a workspace
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {array}   domain.Analysis
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /workspaces/{id}/analyses [get]
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.analysisService.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}

	writeJSON(w, http.StatusOK, analyses)
}

// handleCreateAnalysis godoc
// @Summary      Create analysis
// @Description  Create a new analysis, pinning the prompt pack version that will govern it
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreateAnalysisRequest  true  "Analysis details"
// @Success      201      {object}  domain.Analysis
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      404      {object}  ErrorResponse  "Workspace or prompt pack not found"
// @Router       /analyses [post]
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.CreateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	analysis, err := s.analysisService.Create(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "workspace or prompt pack not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create analysis")
		}
		return
	}

	writeJSON(w, http.StatusCreated, analysis)
}

// handleGetAnalysis godoc
// @Summary      Get analysis
// @Description  Get an analysis by ID
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis ID"
// @Success      200  {object}  domain.Analysis
// @Failure      404  {object}  ErrorResponse  "Analysis not found"
// @Router       /analyses/{id} [get]
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.analysisService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// handleDeleteAnalysis godoc
// @Summary      Delete analysis
// @Description  Delete an analysis and its score history
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Analysis not found"
// @Router       /analyses/{id} [delete]
func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.analysisService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete analysis")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleAttachSource godoc
// @Summary      Attach source
// @Description  Link a source in the same workspace to an analysis
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Analysis ID"
// @Param        request  body      driving.AttachSourceRequest  true  "Source link"
// @Success      200      {object}  StatusResponse
// @Failure      403      {object}  ErrorResponse  "Source belongs to another workspace"
// @Failure      404      {object}  ErrorResponse  "Analysis or source not found"
// @Router       /analyses/{id}/sources [post]
func (s *Server) handleAttachSource(w http.ResponseWriter, r *http.Request) {
	var req driving.AttachSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.analysisService.AttachSource(r.Context(), r.PathValue("id"), req); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "source belongs to another workspace")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "analysis or source not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to attach source")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "attached"})
}

// handleDetachSource godoc
// @Summary      Detach source
// @Description  Unlink a source from an analysis
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true  "Analysis ID"
// @Param        sourceID  path      string  true  "Source ID"
// @Success      200       {object}  StatusResponse
// @Failure      404       {object}  ErrorResponse  "Link not found"
// @Router       /analyses/{id}/sources/{sourceID} [delete]
func (s *Server) handleDetachSource(w http.ResponseWriter, r *http.Request) {
	err := s.analysisService.DetachSource(r.Context(), r.PathValue("id"), r.PathValue("sourceID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "source is not attached to this analysis")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to detach source")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "detached"})
}

// handleReportConflict godoc
// @Summary      Report conflict
// @Description  Record a contradiction between sources. Conflicts penalise subsequent rigor scores by severity.
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Analysis ID"
// @Param        request  body      driving.ReportConflictRequest  true  "Conflict details"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid severity"
// @Failure      404      {object}  ErrorResponse  "Analysis not found"
// @Router       /analyses/{id}/conflicts [post]
func (s *Server) handleReportConflict(w http.ResponseWriter, r *http.Request) {
	var req driving.ReportConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.analysisService.ReportConflict(r.Context(), r.PathValue("id"), req); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "analysis not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid conflict severity")
		default:
			writeError(w, http.StatusInternalServerError, "failed to report conflict")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// handleScoreAnalysis godoc
// @Summary      Score analysis
// @Description  Compute the rigor score over the analysis's attached sources and record a snapshot with the delta from the previous run
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis ID"
// @Success      200  {object}  driving.ScoreResponse
// @Failure      404  {object}  ErrorResponse  "Analysis not found"
// @Router       /analyses/{id}/score [post]
func (s *Server) handleScoreAnalysis(w http.ResponseWriter, r *http.Request) {
	resp, err := s.analysisService.Score(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to score analysis")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleReadinessAnalysis godoc
// @Summary      Check readiness
// @Description  Scan the analysis's sources against its prompt pack's required criteria and persist the per-criterion results
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis ID"
// @Success      200  {object}  rigor.ReadinessResult
// @Failure      404  {object}  ErrorResponse  "Analysis not found"
// @Router       /analyses/{id}/readiness [post]
func (s *Server) handleReadinessAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.analysisService.Readiness(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check readiness")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAnalysisHistory godoc
// @Summary      Score history
// @Description  Get rigor score snapshots for an analysis, newest first
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Analysis ID"
// @Param        limit  query     int     false  "Maximum snapshots to return"
// @Success      200    {array}   domain.RigorSnapshot
// @Failure      404    {object}  ErrorResponse  "Analysis not found"
// @Router       /analyses/{id}/history [get]
func (s *Server) handleAnalysisHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	snapshots, err := s.analysisService.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get score history")
		return
	}

	writeJSON(w, http.StatusOK, snapshots)
}

// exportRequest toggles citation instructions in the export package
type exportRequest struct {
	IncludeCitations bool `json:"include_citations"`
}

// handleExportAnalysis godoc
// @Summary      Export analysis
// @Description  Build the handoff package (system prompt, sources, metadata) for an external LLM. Fails unless the readiness check passes.
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string         true   "Analysis ID"
// @Param        request  body      exportRequest  false  "Export options"
// @Success      200      {object}  driving.ExportResponse
// @Failure      404      {object}  ErrorResponse  "Analysis not found"
// @Failure      422      {object}  ErrorResponse  "Analysis not ready for export"
// @Router       /analyses/{id}/export [post]
func (s *Server) handleExportAnalysis(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && r.ContentLength > 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.analysisService.Export(r.Context(), r.PathValue("id"), req.IncludeCitations)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "analysis not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to export analysis")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Audit endpoints

// handleListAuditRecent godoc
// @Summary      Recent audit entries
// @Description  Get the most recent audit entries across all entities (admin only)
// @Tags         Audit
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum entries to return (default 100)"
// @Success      200    {array}   domain.AuditEntry
// @Failure      500    {object}  ErrorResponse  "Internal server error"
// @Router       /audit [get]
func (s *Server) handleListAuditRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.auditStore.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleListAuditByEntity godoc
// @Summary      Audit entries for entity
// @Description  Get audit entries for one entity, newest first (admin only)
// @Tags         Audit
// @Produce      json
// @Security     BearerAuth
// @Param        entityType  path      string  true  "Entity type (workspace, source, analysis, prompt_pack, user)"
// @Param        entityID    path      string  true  "Entity ID"
// @Success      200         {array}   domain.AuditEntry
// @Failure      500         {object}  ErrorResponse  "Internal server error"
// @Router       /audit/{entityType}/{entityID} [get]
func (s *Server) handleListAuditByEntity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.auditStore.ListByEntity(r.Context(), r.PathValue("entityType"), r.PathValue("entityID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Integration endpoints

// handleListIntegrations godoc
// @Summary      List integrations
// @Description  Get connected providers, optionally filtered by workspace
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Param        workspace_id  query     string  false  "Filter by workspace"
// @Success      200           {array}   domain.Integration
// @Failure      500           {object}  ErrorResponse  "Internal server error"
// @Router       /integrations [get]
func (s *Server) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	integrations, err := s.integrationService.List(r.Context(), r.URL.Query().Get("workspace_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list integrations")
		return
	}

	writeJSON(w, http.StatusOK, integrations)
}

// handleCreateIntegration godoc
// @Summary      Connect provider
// @Description  Register an external document provider; the connection is tested before it is saved
// @Tags         Integrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreateIntegrationRequest  true  "Integration details"
// @Success      201      {object}  domain.Integration
// @Failure      400      {object}  ErrorResponse  "Invalid request or connection test failed"
// @Failure      404      {object}  ErrorResponse  "Workspace not found"
// @Router       /integrations [post]
func (s *Server) handleCreateIntegration(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.CreateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	integration, err := s.integrationService.Create(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "workspace not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create integration")
		}
		return
	}

	writeJSON(w, http.StatusCreated, integration)
}

// handleGetIntegration godoc
// @Summary      Get integration
// @Description  Get an integration's details; credentials are never returned
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Integration ID"
// @Success      200  {object}  domain.Integration
// @Failure      404  {object}  ErrorResponse  "Integration not found"
// @Router       /integrations/{id} [get]
func (s *Server) handleGetIntegration(w http.ResponseWriter, r *http.Request) {
	integration, err := s.integrationService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "integration not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get integration")
		return
	}

	writeJSON(w, http.StatusOK, integration)
}

// handleUpdateIntegration godoc
// @Summary      Update integration
// @Description  Update an integration's name, credentials, settings, or active flag
// @Tags         Integrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Integration ID"
// @Param        request  body      driving.UpdateIntegrationRequest  true  "Fields to update"
// @Success      200      {object}  domain.Integration
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      404      {object}  ErrorResponse  "Integration not found"
// @Router       /integrations/{id} [put]
func (s *Server) handleUpdateIntegration(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	integration, err := s.integrationService.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "integration not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid integration update")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update integration")
		}
		return
	}

	writeJSON(w, http.StatusOK, integration)
}

// handleDeleteIntegration godoc
// @Summary      Disconnect provider
// @Description  Delete an integration and its sync history
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Integration ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Integration not found"
// @Router       /integrations/{id} [delete]
func (s *Server) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	if err := s.integrationService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "integration not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete integration")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleTestIntegration godoc
// @Summary      Test connection
// @Description  Verify the stored credentials against the provider
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Integration ID"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse  "Connection failed"
// @Failure      404  {object}  ErrorResponse  "Integration not found"
// @Router       /integrations/{id}/test [post]
func (s *Server) handleTestIntegration(w http.ResponseWriter, r *http.Request) {
	if err := s.integrationService.TestConnection(r.Context(), r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "integration not found")
		default:
			writeError(w, http.StatusBadRequest, "connection failed: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSyncIntegration godoc
// @Summary      Sync integration
// @Description  Walk the provider's files and import new documents into the workspace
// @Tags         Integrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true   "Integration ID"
// @Param        request  body      driving.SyncRequest  false  "Sync options"
// @Success      200      {object}  domain.SyncJob
// @Failure      400      {object}  ErrorResponse  "Integration inactive"
// @Failure      404      {object}  ErrorResponse  "Integration not found"
// @Router       /integrations/{id}/sync [post]
func (s *Server) handleSyncIntegration(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.SyncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	job, err := s.integrationService.Sync(r.Context(), authCtx.UserID, r.PathValue("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "integration not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "integration is not active")
		default:
			writeError(w, http.StatusInternalServerError, "failed to sync integration")
		}
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// handleSyncHistory godoc
// @Summary      Sync history
// @Description  Get past sync jobs for an integration, newest first
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Integration ID"
// @Param        limit  query     int     false  "Maximum jobs to return"
// @Success      200    {array}   domain.SyncJob
// @Failure      404    {object}  ErrorResponse  "Integration not found"
// @Router       /integrations/{id}/sync-history [get]
func (s *Server) handleSyncHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	jobs, err := s.integrationService.SyncHistory(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "integration not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list sync jobs")
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
