package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool

	// Out and Err default to os.Stdout and os.Stderr
	Out io.Writer
	Err io.Writer
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out != nil {
		return f.Out
	}
	return os.Stdout
}

func (f *OutputFormatter) errOut() io.Writer {
	if f.Err != nil {
		return f.Err
	}
	return os.Stderr
}

// Success outputs successful operation result
func (f *OutputFormatter) Success(data any) error {
	if f.Quiet {
		if idGetter, ok := data.(interface{ GetID() string }); ok {
			_, err := fmt.Fprintln(f.out(), idGetter.GetID())
			return err
		}
		if items, ok := data.([]*models.BacklogItem); ok {
			for _, item := range items {
				if _, err := fmt.Fprintln(f.out(), item.ID); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if f.JSON {
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	return f.prettyPrint(data)
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	fmt.Fprintf(f.errOut(), "Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(f.errOut(), "Suggestion: %s\n", suggestion)
	}
	return nil
}

// prettyPrint formats the domain types as tables or short summaries
func (f *OutputFormatter) prettyPrint(data any) error {
	if item, ok := data.(*models.BacklogItem); ok {
		return writeItemCard(f.out(), item)
	}

	w := tabwriter.NewWriter(f.out(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch v := data.(type) {
	case []*models.BacklogItem:
		fmt.Fprintln(w, "#\tID\tTITLE\tSTATUS\tPRIORITY\tPOINT")
		for i, it := range v {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", i+1, it.ID, it.Title, it.Status, it.Priority, it.Point)
		}
	case []*models.Sprint:
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSTART\tEND")
		for _, s := range v {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Status, date(s.StartDate), date(s.EndDate))
		}
	case *models.Sprint:
		fmt.Fprintf(w, "Sprint '%s' (ID: %s, %s)\n", v.Name, v.ID, v.Status)
	case *models.SprintSummary:
		fmt.Fprintf(w, "Sprint %s: %d done, %d not done, %d total\n", v.SprintID, v.Done, v.NotDone, v.Total)
	case *models.ActiveWorkSummary:
		fmt.Fprintf(w, "Active sprints:\t%d\n", v.ActiveSprints)
		fmt.Fprintf(w, "To do:\t%d\n", v.Todo)
		fmt.Fprintf(w, "In progress:\t%d\n", v.InProgress)
		fmt.Fprintf(w, "Done:\t%d\n", v.Done)
	case *models.Project:
		fmt.Fprintf(w, "Project '%s' (ID: %s)\n", v.Name, v.ID)
	case []*models.Project:
		fmt.Fprintln(w, "ID\tNAME")
		for _, p := range v {
			fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
		}
	case *models.Member:
		fmt.Fprintf(w, "%s is now %s of %s\n", v.UserID, v.Role, v.ProjectID)
	case []*models.Member:
		fmt.Fprintln(w, "USER\tROLE")
		for _, m := range v {
			fmt.Fprintf(w, "%s\t%s\n", m.UserID, m.Role)
		}
	case []*models.ActivityLog:
		for _, a := range v {
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.CreatedAt.Format(time.RFC3339), a.Type, a.Description)
		}
	case string:
		fmt.Fprintln(w, v)
	case fmt.Stringer:
		fmt.Fprintln(w, v.String())
	default:
		fmt.Fprintf(w, "%+v\n", data)
	}
	return nil
}

func location(sprintID *string) string {
	if sprintID == nil {
		return models.BacklogLocationName
	}
	return "sprint " + *sprintID
}

func date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}
