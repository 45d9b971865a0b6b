package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/requestdata"
	"github.com/homesync/homesync-backend/internal/services"
	"github.com/homesync/homesync-backend/internal/types"
)

const dateLayout = "2006-01-02"

type TaskHandler struct {
	tasks services.TaskService
}

func NewTaskHandler(tasks services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	ID              *uuid.UUID         `json:"id"`
	Title           string             `json:"title" binding:"required"`
	Description     string             `json:"description"`
	TaskType        string             `json:"task_type"`
	AssignedTo      *uuid.UUID         `json:"assigned_to"`
	DayWindow       *string            `json:"day_window"`
	WeekStart       *string            `json:"week_start"`
	TimeOfDay       *string            `json:"time_of_day"`
	DurationMinutes *int               `json:"duration_minutes"`
	Recurrence      *string            `json:"recurrence"`
	Ingredients     []types.Ingredient `json:"ingredients"`
}

func (th *TaskHandler) List(c *gin.Context) {
	householdID, err := uuid.Parse(c.Param("householdID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid household id"})
		return
	}
	var weekStart *time.Time
	if raw := c.Query("week_start"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be YYYY-MM-DD"})
			return
		}
		weekStart = &parsed
	}
	tasks, err := th.tasks.List(c.Request.Context(), householdID, weekStart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (th *TaskHandler) Create(c *gin.Context) {
	householdID, err := uuid.Parse(c.Param("householdID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid household id"})
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := services.CreateTaskInput{
		ID:              req.ID,
		Title:           req.Title,
		Description:     req.Description,
		TaskType:        req.TaskType,
		AssignedTo:      req.AssignedTo,
		DayWindow:       req.DayWindow,
		TimeOfDay:       req.TimeOfDay,
		DurationMinutes: req.DurationMinutes,
		Recurrence:      req.Recurrence,
		Ingredients:     req.Ingredients,
	}
	if req.WeekStart != nil {
		parsed, err := time.Parse(dateLayout, *req.WeekStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be YYYY-MM-DD"})
			return
		}
		in.WeekStart = &parsed
	}

	rd := requestdata.GetRequestData(c.Request.Context())
	task, err := th.tasks.Create(c.Request.Context(), householdID, rd.UserID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Patch accepts a JSON merge patch; a key that is present with a null value
// clears the field, an absent key leaves it alone.
func (th *TaskHandler) Patch(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("taskID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	patch, err := buildTaskPatch(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rd := requestdata.GetRequestData(c.Request.Context())
	task, err := th.tasks.Patch(c.Request.Context(), taskID, rd.UserID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (th *TaskHandler) Delete(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("taskID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if err := th.tasks.Delete(c.Request.Context(), taskID, rd.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func buildTaskPatch(raw map[string]json.RawMessage) (services.TaskPatch, error) {
	var p services.TaskPatch

	if msg, ok := raw["title"]; ok {
		if err := json.Unmarshal(msg, &p.Title); err != nil || p.Title == nil {
			return p, errBadField("title")
		}
	}
	if msg, ok := raw["description"]; ok {
		if err := json.Unmarshal(msg, &p.Description); err != nil {
			return p, errBadField("description")
		}
	}
	if msg, ok := raw["task_type"]; ok {
		if err := json.Unmarshal(msg, &p.TaskType); err != nil || p.TaskType == nil {
			return p, errBadField("task_type")
		}
	}
	if msg, ok := raw["state"]; ok {
		if err := json.Unmarshal(msg, &p.State); err != nil || p.State == nil {
			return p, errBadField("state")
		}
	}
	if msg, ok := raw["assigned_to"]; ok {
		if err := json.Unmarshal(msg, &p.AssignedTo); err != nil {
			return p, errBadField("assigned_to")
		}
		p.AssignedToSet = true
	}
	if msg, ok := raw["day_window"]; ok {
		if err := json.Unmarshal(msg, &p.DayWindow); err != nil {
			return p, errBadField("day_window")
		}
		p.DayWindowSet = true
	}
	if msg, ok := raw["week_start"]; ok {
		var s *string
		if err := json.Unmarshal(msg, &s); err != nil {
			return p, errBadField("week_start")
		}
		if s != nil {
			parsed, err := time.Parse(dateLayout, *s)
			if err != nil {
				return p, errBadField("week_start")
			}
			p.WeekStart = &parsed
		}
		p.WeekStartSet = true
	}
	if msg, ok := raw["time_of_day"]; ok {
		if err := json.Unmarshal(msg, &p.TimeOfDay); err != nil {
			return p, errBadField("time_of_day")
		}
		p.TimeOfDaySet = true
	}
	if msg, ok := raw["duration_minutes"]; ok {
		if err := json.Unmarshal(msg, &p.DurationMinutes); err != nil {
			return p, errBadField("duration_minutes")
		}
		p.DurationSet = true
	}
	if msg, ok := raw["recurrence"]; ok {
		if err := json.Unmarshal(msg, &p.Recurrence); err != nil {
			return p, errBadField("recurrence")
		}
		p.RecurrenceSet = true
	}
	if msg, ok := raw["ingredients"]; ok {
		var ings []types.Ingredient
		if err := json.Unmarshal(msg, &ings); err != nil {
			return p, errBadField("ingredients")
		}
		p.Ingredients = &ings
	}
	return p, nil
}
