package cli

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/projecthub/internal/models"
)

const cardWidth = 80

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2).
			Width(cardWidth)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

var priorityColors = map[models.Priority]string{
	models.PriorityLow:    "#5FAF5F",
	models.PriorityMedium: "#D7AF00",
	models.PriorityHigh:   "#D75F5F",
}

// writeItemCard renders one backlog item as a bordered card
func writeItemCard(w io.Writer, item *models.BacklogItem) error {
	var content strings.Builder

	content.WriteString(titleStyle.Render(item.Title))
	content.WriteString("\n\n")

	field := func(label, value string, style lipgloss.Style) {
		fmt.Fprintf(&content, "%s %s\n", labelStyle.Render(label), style.Render(value))
	}

	field("ID:", item.ID, valueStyle)
	field("Location:", location(item.SprintID), valueStyle)
	field("Status:", string(item.Status), valueStyle)

	priority := lipgloss.NewStyle().Bold(true)
	if c, ok := priorityColors[item.Priority]; ok {
		priority = priority.Foreground(lipgloss.Color(c))
	}
	field("Priority:", string(item.Priority), priority)
	field("Point:", fmt.Sprintf("%d", item.Point), valueStyle)
	if item.AssigneeID != "" {
		field("Assignee:", item.AssigneeID, valueStyle)
	}

	if !item.CreatedAt.IsZero() {
		field("Created:", item.CreatedAt.Format("Jan 2, 2006 3:04 PM"), subtleStyle)
	}
	if !item.UpdatedAt.IsZero() {
		field("Updated:", item.UpdatedAt.Format("Jan 2, 2006 3:04 PM"), subtleStyle)
	}

	_, err := fmt.Fprintln(w, cardStyle.Render(strings.TrimRight(content.String(), "\n")))
	return err
}
