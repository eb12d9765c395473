package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"tableflip.dev/newday/pkg/apikey"
	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/ident"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/task"
	"tableflip.dev/newday/pkg/timeutil"
)

const (
	maxDayIDLength = 50
	listDaysLimit  = 10
)

type response struct {
	Success bool   `json:"success"`
	TaskID  string `json:"taskId,omitempty"`
	DayID   string `json:"dayId,omitempty"`
	Message string `json:"message"`
}

type addTaskRequest struct {
	Text  *string         `json:"text"`
	Type  json.RawMessage `json:"type"`
	Notes string          `json:"notes"`
	DayID string          `json:"dayId"`
}

type dayRef struct {
	ID      string             `json:"id"`
	Created timeutil.Timestamp `json:"created"`
}

type listDaysResponse struct {
	Success bool     `json:"success"`
	Days    []dayRef `json:"days"`
	Message string   `json:"message"`
}

// strictTypes are the only type names accepted over the API; aliases are a
// CLI nicety.
var strictTypes = map[string]task.Type{
	"Most":  task.Most,
	"Other": task.Other,
	"Quick": task.Quick,
	"PDP":   task.PDP,
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, response{Message: msg})
}

// authenticate resolves the bearer key to a user id. It writes the error
// response itself and returns false on failure.
func (s *Server) authenticate(c *gin.Context, missing string) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		fail(c, http.StatusUnauthorized, missing)
		return "", false
	}
	key := strings.TrimPrefix(header, "Bearer ")
	if err := apikey.ValidateFormat(key); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid API key format")
		return "", false
	}
	userID, err := s.store.UserByAPIKeyHash(c.Request.Context(), apikey.Hash(key))
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid API key")
			return "", false
		}
		s.internalError(c, "look up api key", err)
		return "", false
	}
	return userID, true
}

func (s *Server) internalError(c *gin.Context, what string, err error) {
	s.log.Error("ingest: "+what, "path", c.Request.URL.Path, "err", err)
	fail(c, http.StatusInternalServerError, "Internal server error")
}

// requestType reads the optional type field. A missing, null or empty type
// means Other; anything else must be one of the exact type names.
func requestType(raw json.RawMessage) (task.Type, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return task.Other, true
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", false
	}
	if name == "" {
		return task.Other, true
	}
	typ, ok := strictTypes[name]
	return typ, ok
}

func (s *Server) handleAddTask(c *gin.Context) {
	userID, ok := s.authenticate(c, "Missing or invalid Authorization header. Use: Bearer {api-key}")
	if !ok {
		return
	}

	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		fail(c, http.StatusBadRequest, `Missing or invalid "text" field. Task text is required.`)
		return
	}
	if utf8.RuneCountInString(*req.Text) > task.MaxTextLength {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Task text exceeds maximum length of %d characters.", task.MaxTextLength))
		return
	}
	if utf8.RuneCountInString(req.Notes) > task.MaxNotesLength {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Notes exceed maximum length of %d characters.", task.MaxNotesLength))
		return
	}
	if len(req.DayID) > maxDayIDLength {
		fail(c, http.StatusBadRequest, "Invalid dayId format.")
		return
	}
	typ, ok := requestType(req.Type)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid task type. Must be one of: Most, Other, Quick, PDP")
		return
	}

	ctx := c.Request.Context()
	dayID := req.DayID
	if dayID == "" {
		days, err := s.days(c, userID)
		if err != nil {
			s.internalError(c, "list days", err)
			return
		}
		latest, ok := day.Latest(days)
		if !ok {
			fail(c, http.StatusBadRequest, "No days found. Please create a day in the app first.")
			return
		}
		dayID = latest.ID
	} else {
		if !ident.Valid(dayID) {
			fail(c, http.StatusBadRequest, "Day not found.")
			return
		}
		if _, err := s.store.Get(ctx, userID, remote.Days, dayID); err != nil {
			if errors.Is(err, remote.ErrNotFound) {
				fail(c, http.StatusBadRequest, "Day not found.")
				return
			}
			s.internalError(c, "get day", err)
			return
		}
	}

	now := s.now()
	tk := task.New(strings.TrimSpace(*req.Text), typ, now)
	tk.Notes = strings.TrimSpace(req.Notes)
	link := day.Link(dayID, tk.ID, now)
	if err := s.store.Commit(ctx, userID,
		remote.Set(remote.Tasks, tk.ID, tk),
		remote.Set(remote.DayTasks, link.ID, link),
	); err != nil {
		s.internalError(c, "commit task", err)
		return
	}

	c.JSON(http.StatusCreated, response{
		Success: true,
		TaskID:  tk.ID,
		DayID:   dayID,
		Message: "Task added successfully",
	})
}

func (s *Server) handleListDays(c *gin.Context) {
	userID, ok := s.authenticate(c, "Missing or invalid Authorization header")
	if !ok {
		return
	}
	days, err := s.days(c, userID)
	if err != nil {
		s.internalError(c, "list days", err)
		return
	}
	recent := day.Recent(days, listDaysLimit)
	refs := make([]dayRef, 0, len(recent))
	for _, d := range recent {
		refs = append(refs, dayRef{ID: d.ID, Created: d.Created})
	}
	c.JSON(http.StatusOK, listDaysResponse{
		Success: true,
		Days:    refs,
		Message: fmt.Sprintf("Found %d recent days", len(refs)),
	})
}

func (s *Server) days(c *gin.Context, userID string) ([]day.Day, error) {
	docs, err := s.store.List(c.Request.Context(), userID, remote.Days)
	if err != nil {
		return nil, err
	}
	days, err := remote.Decode[day.Day](docs)
	if err != nil {
		// Undecodable documents are skipped; the rest are still usable.
		s.log.Warn("ingest: skipped undecodable days", "user", userID, "err", err)
	}
	return days, nil
}
