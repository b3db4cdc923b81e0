// Package navigation provides utilities for managing navigation state and breadcrumbs.
package navigation

import (
	"strconv"

	"github.com/rosterd/rosterd/internal/db/models"
)

// Sections of the navigation bar.
const (
	SectionDashboard = "dashboard"
	SectionGroup     = "group"
	SectionEvent     = "event"
)

const dashboardPath = "/dashboard"

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// ForDashboard creates the context of a dashboard page.
func ForDashboard(pageTitle, activePage string) *Context {
	return NewContext(pageTitle, SectionDashboard, activePage).
		AddBreadcrumb("Dashboard", dashboardPath, activePage == SectionDashboard)
}

// ForGroup creates the context of a group page. The page itself is the active breadcrumb
// unless it is the group home.
func ForGroup(pageTitle, activePage string, group *models.Group) *Context {
	ctx := NewContext(pageTitle, SectionGroup, activePage).
		AddBreadcrumb("Dashboard", dashboardPath, false).
		AddBreadcrumb(group.Name, GroupPath(group), activePage == "")

	if activePage != "" {
		ctx.AddBreadcrumb(pageTitle, GroupPath(group)+"/"+activePage, true)
	}

	return ctx
}

// ForEvent creates the context of an event page.
func ForEvent(pageTitle, activePage string, group *models.Group, event *models.Event) *Context {
	ctx := NewContext(pageTitle, SectionEvent, activePage).
		AddBreadcrumb("Dashboard", dashboardPath, false).
		AddBreadcrumb(group.Name, GroupPath(group), false).
		AddBreadcrumb(event.Name, EventPath(group, event), activePage == "")

	if activePage != "" {
		ctx.AddBreadcrumb(pageTitle, EventPath(group, event)+"/"+activePage, true)
	}

	return ctx
}

// GroupPath is the home page of a group.
func GroupPath(group *models.Group) string {
	return "/g/" + group.URL
}

// EventPath is the home page of an event.
func EventPath(group *models.Group, event *models.Event) string {
	return GroupPath(group) + "/e/" + strconv.FormatUint(event.ID, 10)
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
