package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"focus-api/domain"
	"focus-api/notify"
	"focus-api/tasks"
)

const createTaskMaxSize = 1 << 20

// Register wires up all API routes on the provided Echo instance. deduper
// may be nil, in which case create requests are not deduplicated.
func Register(e *echo.Echo, store Store, notifier notify.Notifier, deduper Deduper, logger *log.Logger) {
	e.GET("/api/tasks", getTasks(store, logger))
	e.POST("/api/tasks", postTask(store, deduper, logger))
	e.PATCH("/api/tasks/:id", patchTask(store))
	e.POST("/api/tasks/:id/toggle", toggleTask(store))
	e.DELETE("/api/tasks/completed", clearCompleted(store))
	e.DELETE("/api/tasks/:id", deleteTask(store))
	e.GET("/api/calendar", getCalendar(store))
	e.POST("/api/permission", requestPermission(notifier))
	e.GET("/api/stream", streamTasks(store))
	e.GET("/healthz", healthz())
}

type tasksResponse struct {
	Tasks       []taskView `json:"tasks"`
	ActiveCount int        `json:"activeCount"`
}

// taskView decorates a task with its overdue determination so clients can
// style past-due entries without re-deriving the date math.
type taskView struct {
	domain.Task
	Overdue bool `json:"overdue,omitempty"`
}

func viewTasks(list []domain.Task, now time.Time) []taskView {
	views := make([]taskView, len(list))
	for i, task := range list {
		views[i] = taskView{Task: task, Overdue: task.Overdue(now)}
	}
	return views
}

type createTaskRequest struct {
	Text           string `json:"text"`
	DueDate        string `json:"dueDate"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Priority       string `json:"priority"`
	ReminderOffset int    `json:"reminderOffset"`
}

type updateTaskRequest struct {
	Text           *string `json:"text"`
	DueDate        *string `json:"dueDate"`
	StartTime      *string `json:"startTime"`
	EndTime        *string `json:"endTime"`
	Priority       *string `json:"priority"`
	ReminderOffset *int    `json:"reminderOffset"`
}

type calendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Cells []domain.Cell `json:"cells"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getTasks(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		filterParam := c.QueryParam("filter")
		metrics.SetFilter(filterParam)
		mode, ok := domain.ParseFilterMode(filterParam)
		if !ok {
			metrics.SetErrorStage("invalid_filter")
			err = c.String(http.StatusBadRequest, "invalid filter")
			return err
		}

		fetchStart := time.Now()
		all := store.All()
		metrics.ObserveFetch(time.Since(fetchStart))

		resp := tasksResponse{
			Tasks:       viewTasks(domain.Filter(all, mode), time.Now()),
			ActiveCount: domain.ActiveCount(all),
		}
		metrics.SetTasksReturned(len(resp.Tasks))
		metrics.SetActiveCount(resp.ActiveCount)

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, resp)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func postTask(store Store, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		lr := io.LimitReader(c.Request().Body, createTaskMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req createTaskRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		key := c.Request().Header.Get("Idempotency-Key")
		if key == "" {
			key = uuid.NewString()
		}
		if deduper != nil {
			fresh, err := deduper.Add(ctx, key)
			if err != nil {
				// Dedupe is best effort; a dead Redis must not block creates.
				logger.WithError(err).Warn("idempotency check failed")
			} else if !fresh {
				return c.String(http.StatusConflict, "duplicate request")
			}
		}

		task, ok := store.Add(ctx, tasks.Draft{
			Text:           req.Text,
			DueDate:        req.DueDate,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Priority:       req.Priority,
			ReminderOffset: req.ReminderOffset,
		})
		if !ok {
			if deduper != nil {
				if err := deduper.Remove(ctx, key); err != nil {
					logger.WithError(err).Warn("idempotency rollback failed")
				}
			}
			return c.String(http.StatusBadRequest, "task text required")
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func patchTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid task id")
		}

		lr := io.LimitReader(c.Request().Body, createTaskMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req updateTaskRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		task, ok := store.Update(c.Request().Context(), id, tasks.Changes{
			Text:           req.Text,
			DueDate:        req.DueDate,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Priority:       req.Priority,
			ReminderOffset: req.ReminderOffset,
		})
		if !ok {
			return c.String(http.StatusNotFound, "task not found")
		}
		return c.JSON(http.StatusOK, task)
	}
}

// toggleTask and deleteTask treat unknown ids as no-ops, mirroring the
// store semantics, so a stale UI acting on a removed task never sees an
// error.
func toggleTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid task id")
		}
		store.Toggle(c.Request().Context(), id)
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid task id")
		}
		store.Delete(c.Request().Context(), id)
		return c.NoContent(http.StatusNoContent)
	}
}

func clearCompleted(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		removed := store.ClearCompleted(c.Request().Context())
		return c.JSON(http.StatusOK, map[string]int{"removed": removed})
	}
}

func getCalendar(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		now := time.Now()
		year, month := now.Year(), now.Month()

		if v := c.QueryParam("year"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return c.String(http.StatusBadRequest, "invalid year")
			}
			year = n
		}
		if v := c.QueryParam("month"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 12 {
				return c.String(http.StatusBadRequest, "invalid month")
			}
			month = time.Month(n)
		}

		return c.JSON(http.StatusOK, calendarResponse{
			Year:  year,
			Month: int(month),
			Cells: domain.MonthCells(store.All(), year, month, now),
		})
	}
}

func requestPermission(notifier notify.Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		state, err := notifier.RequestPermission(c.Request().Context())
		if err != nil {
			// Denial is a valid outcome, not a server failure.
			c.Logger().Warnf("permission request: %v", err)
		}
		return c.JSON(http.StatusOK, map[string]notify.Permission{"permission": state})
	}
}
