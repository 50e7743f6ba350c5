package tasks

import (
	"fmt"
	"strings"
)

// FormatTask renders a task as a single record.
// Only the due date has a placeholder; other missing fields print as empty
// strings or false.
func FormatTask(t Task) string {
	due := t.Due
	if due == "" {
		due = "Not set"
	}

	return fmt.Sprintf("%s\n (Due: %s) - Notes: %s - ID: %s - Status: %s - URI: %s - Hidden: %t - Parent: %s - Deleted?: %t - Completed Date: %s - Position: %s - Updated Date: %s - ETag: %s - Links: %s - Kind: %s",
		t.Title, due, t.Notes, t.ID, t.Status, t.SelfLink, t.Hidden, t.Parent,
		t.Deleted, t.Completed, t.Position, t.Updated, t.Etag, joinLinks(t.Links), t.Kind)
}

// FormatTasks renders tasks one record after another, separated by newlines.
func FormatTasks(list []Task) string {
	records := make([]string, len(list))
	for i, t := range list {
		records[i] = FormatTask(t)
	}
	return strings.Join(records, "\n")
}

// FormatTaskDetail renders a task as "Label: value" lines for resource reads.
func FormatTaskDetail(t Task) string {
	lines := []string{
		"Title: " + orDefault(t.Title, "No title"),
		"Status: " + orDefault(t.Status, "Unknown"),
		"Due: " + orDefault(t.Due, "Not set"),
		"Notes: " + orDefault(t.Notes, "No notes"),
		"Hidden: " + boolOrUnknown(t.Hidden),
		"Parent: " + orDefault(t.Parent, "Unknown"),
		"Deleted?: " + boolOrUnknown(t.Deleted),
		"Completed Date: " + orDefault(t.Completed, "Unknown"),
		"Position: " + orDefault(t.Position, "Unknown"),
		"ETag: " + orDefault(t.Etag, "Unknown"),
		"Links: " + orDefault(joinLinks(t.Links), "Unknown"),
		"Kind: " + orDefault(t.Kind, "Unknown"),
		"Status: " + orDefault(t.Status, "Unknown"),
		// The Tasks API has no creation time; clients expect this line anyway.
		"Created: " + orDefault(t.Updated, "Unknown"),
		"Updated: " + orDefault(t.Updated, "Unknown"),
	}
	return strings.Join(lines, "\n")
}

func joinLinks(links []Link) string {
	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.Link)
	}
	return strings.Join(urls, ", ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// boolOrUnknown treats false the same as an absent value.
func boolOrUnknown(v bool) string {
	if !v {
		return "Unknown"
	}
	return "true"
}
