package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thenoetrevino/projecthub/internal/models"
	"github.com/thenoetrevino/projecthub/internal/services/backlog"
	"github.com/thenoetrevino/projecthub/internal/services/project"
	"github.com/thenoetrevino/projecthub/internal/services/sprint"
)

type handlers struct {
	d Deps
}

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// bind decodes the body; malformed JSON is an invalid argument.
func bind(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return fmt.Errorf("%w: malformed request body", models.ErrInvalidArgument)
	}
	return nil
}

func (h *handlers) healthz(c echo.Context) error {
	if h.d.Health != nil {
		if err := h.d.Health(c.Request().Context()); err != nil {
			h.d.Logger.Error("health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ---- projects ----

type createProjectBody struct {
	Name string `json:"name"`
}

type addMemberBody struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (h *handlers) listProjects(c echo.Context) error {
	projects, err := h.d.Projects.ListProjects(c.Request().Context(), callerFrom(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(projects))
}

func (h *handlers) createProject(c echo.Context) error {
	var body createProjectBody
	if err := bind(c, &body); err != nil {
		return err
	}
	p, err := h.d.Projects.CreateProject(c.Request().Context(), callerFrom(c), project.CreateProjectRequest{Name: body.Name})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, p)
}

func (h *handlers) listMembers(c echo.Context) error {
	members, err := h.d.Projects.ListMembers(c.Request().Context(), callerFrom(c), c.Param("projectID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(members))
}

func (h *handlers) addMember(c echo.Context) error {
	var body addMemberBody
	if err := bind(c, &body); err != nil {
		return err
	}
	role, err := models.ParseRole(body.Role)
	if err != nil {
		return err
	}
	m, err := h.d.Projects.AddMember(c.Request().Context(), callerFrom(c), project.AddMemberRequest{
		ProjectID: c.Param("projectID"),
		UserID:    body.UserID,
		Role:      role,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, m)
}

// ---- sprints ----

type createSprintBody struct {
	Name      string     `json:"name"`
	Goal      string     `json:"goal"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (h *handlers) listSprints(c echo.Context) error {
	sprints, err := h.d.Sprints.ListSprints(c.Request().Context(), callerFrom(c), c.Param("projectID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(sprints))
}

func (h *handlers) createSprint(c echo.Context) error {
	var body createSprintBody
	if err := bind(c, &body); err != nil {
		return err
	}
	s, err := h.d.Sprints.CreateSprint(c.Request().Context(), callerFrom(c), sprint.CreateSprintRequest{
		ProjectID: c.Param("projectID"),
		Name:      body.Name,
		Goal:      body.Goal,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, s)
}

type editSprintBody struct {
	Goal      *string    `json:"goal"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (h *handlers) getSprint(c echo.Context) error {
	s, err := h.d.Sprints.GetSprint(c.Request().Context(), callerFrom(c), c.Param("sprintID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, s)
}

func (h *handlers) editSprint(c echo.Context) error {
	var body editSprintBody
	if err := bind(c, &body); err != nil {
		return err
	}
	s, err := h.d.Sprints.EditSprint(c.Request().Context(), callerFrom(c), c.Param("sprintID"), sprint.EditSprintRequest{
		Goal:      body.Goal,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, s)
}

func (h *handlers) startSprint(c echo.Context) error {
	s, err := h.d.Sprints.StartSprint(c.Request().Context(), callerFrom(c), c.Param("sprintID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, s)
}

func (h *handlers) completeSprint(c echo.Context) error {
	s, err := h.d.Sprints.CompleteSprint(c.Request().Context(), callerFrom(c), c.Param("sprintID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, s)
}

func (h *handlers) sprintSummary(c echo.Context) error {
	summary, err := h.d.Sprints.Summarize(c.Request().Context(), callerFrom(c), c.Param("sprintID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, summary)
}

func (h *handlers) activeWorkSummary(c echo.Context) error {
	summary, err := h.d.Sprints.SummarizeActive(c.Request().Context(), callerFrom(c), c.Param("projectID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, summary)
}

// ---- backlog ----

type createItemBody struct {
	Title    string  `json:"title"`
	SprintID *string `json:"sprintId"`
}

type updateItemBody struct {
	Title      *string `json:"title"`
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	Point      *int    `json:"point"`
	AssigneeID *string `json:"assigneeId"`
}

type reorderBody struct {
	TargetSprintID *string `json:"targetSprintId"`
	InsertPosition *int    `json:"insertPosition"`
}

func (h *handlers) createItem(c echo.Context) error {
	var body createItemBody
	if err := bind(c, &body); err != nil {
		return err
	}
	item, err := h.d.Backlog.CreateItem(c.Request().Context(), callerFrom(c), backlog.CreateItemRequest{
		ProjectID: c.Param("projectID"),
		Title:     body.Title,
		SprintID:  emptyToNil(body.SprintID),
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, item)
}

func (h *handlers) listItems(c echo.Context) error {
	req := backlog.ListItemsRequest{
		ProjectID: c.Param("projectID"),
		SprintID:  optionalQuery(c, "sprintId"),
	}
	if s := c.QueryParam("status"); s != "" {
		status, err := models.ParseStatus(s)
		if err != nil {
			return err
		}
		req.Status = &status
	}
	if p := c.QueryParam("priority"); p != "" {
		priority, err := models.ParsePriority(p)
		if err != nil {
			return err
		}
		req.Priority = &priority
	}
	var err error
	if req.Page, err = intQuery(c, "page"); err != nil {
		return err
	}
	if req.Size, err = intQuery(c, "size"); err != nil {
		return err
	}

	page, err := h.d.Backlog.ListItems(c.Request().Context(), callerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, page)
}

func (h *handlers) getItem(c echo.Context) error {
	item, err := h.d.Backlog.GetItem(c.Request().Context(), callerFrom(c), c.Param("itemID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, item)
}

func (h *handlers) updateItem(c echo.Context) error {
	var body updateItemBody
	if err := bind(c, &body); err != nil {
		return err
	}
	req := backlog.UpdateItemRequest{Title: body.Title, Point: body.Point, AssigneeID: body.AssigneeID}
	if body.Status != nil {
		status := models.Status(*body.Status)
		req.Status = &status
	}
	if body.Priority != nil {
		priority := models.Priority(*body.Priority)
		req.Priority = &priority
	}

	item, err := h.d.Backlog.UpdateItem(c.Request().Context(), callerFrom(c), c.Param("itemID"), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, item)
}

func (h *handlers) reorderItem(c echo.Context) error {
	var body reorderBody
	if err := bind(c, &body); err != nil {
		return err
	}
	if body.InsertPosition == nil {
		return fmt.Errorf("%w: insertPosition is required", models.ErrInvalidArgument)
	}
	item, err := h.d.Backlog.ReorderItem(c.Request().Context(), callerFrom(c), c.Param("itemID"), backlog.ReorderRequest{
		TargetSprintID: emptyToNil(body.TargetSprintID),
		InsertPosition: *body.InsertPosition,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, item)
}

func (h *handlers) deleteItem(c echo.Context) error {
	if err := h.d.Backlog.DeleteItem(c.Request().Context(), callerFrom(c), c.Param("itemID")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) listActivity(c echo.Context) error {
	logs, err := h.d.Backlog.ListActivity(c.Request().Context(), callerFrom(c), c.Param("itemID"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(logs))
}

func optionalQuery(c echo.Context, name string) *string {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	return &v
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", models.ErrInvalidArgument, name)
	}
	return n, nil
}

// nonNil keeps empty lists rendering as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
