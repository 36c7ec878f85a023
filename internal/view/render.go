// Package view projects a store snapshot into an HTML node tree. Every render
// builds a new tree; nothing is diffed or reused between calls.
package view

import (
	"strconv"

	"partyplanner/internal/domain"
	"partyplanner/internal/store"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContainerID is the id of the element whose subtree is replaced on every render.
const ContainerID = "app"

// RefreshPath is the form action that reloads every collection.
const RefreshPath = "/refresh"

// SelectPath is the form action that selects party id.
func SelectPath(id int64) string {
	return "/parties/" + strconv.FormatInt(id, 10) + "/select"
}

// Renderer turns snapshots into view trees. It holds no state between calls.
type Renderer struct {
	Dates *DateFormatter
}

// NewRenderer returns a renderer using dates for the detail pane.
func NewRenderer(dates *DateFormatter) *Renderer {
	if dates == nil {
		dates = NewDateFormatter("en-US", nil)
	}
	return &Renderer{Dates: dates}
}

// Render builds the #app container for s.
func (r *Renderer) Render(s store.Snapshot) *html.Node {
	container := el(atom.Div, attr("id", ContainerID), attr("class", "container"))
	appendAll(container,
		header(),
		errorBanner(s.ErrorMessage),
		loading(s.Loading),
		mainLayout(
			partyList(s.Parties, s.SelectedParty),
			r.partyDetails(s),
		),
	)
	return container
}

func header() *html.Node {
	h := el(atom.Header)
	h1 := el(atom.H1)
	h1.AppendChild(text("Party Planner"))
	form := postForm(RefreshPath, "Refresh")
	appendAll(h, h1, form)
	return h
}

func errorBanner(msg string) *html.Node {
	if msg == "" {
		return nil
	}
	div := el(atom.Div, attr("class", "error"), attr("role", "alert"))
	div.AppendChild(text(msg))
	return div
}

func loading(on bool) *html.Node {
	if !on {
		return nil
	}
	p := el(atom.P, attr("class", "loading"), attr("aria-busy", "true"))
	p.AppendChild(text("Loading…"))
	return p
}

func mainLayout(list, details *html.Node) *html.Node {
	m := el(atom.Main)
	appendAll(m, list, details)
	return m
}

func partyList(parties []domain.Party, selected *domain.Party) *html.Node {
	section := el(atom.Section, attr("class", "parties"))
	h2 := el(atom.H2)
	h2.AppendChild(text("Upcoming Parties"))
	section.AppendChild(h2)

	if len(parties) == 0 {
		p := el(atom.P, attr("class", "empty"))
		p.AppendChild(text("No parties found."))
		section.AppendChild(p)
		return section
	}

	ul := el(atom.Ul)
	for _, p := range parties {
		ul.AppendChild(partyListItem(p, selected != nil && selected.ID == p.ID))
	}
	section.AppendChild(ul)
	return section
}

func partyListItem(p domain.Party, isSelected bool) *html.Node {
	li := el(atom.Li, attr("data-id", strconv.FormatInt(p.ID, 10)))
	if isSelected {
		li.Attr = append(li.Attr, attr("class", "selected"), attr("aria-current", "true"))
	}
	li.AppendChild(postForm(SelectPath(p.ID), p.Label()))
	return li
}

func (r *Renderer) partyDetails(s store.Snapshot) *html.Node {
	section := el(atom.Section, attr("id", "selected"), attr("class", "details"))
	h2 := el(atom.H2)
	h2.AppendChild(text("Party Details"))
	section.AppendChild(h2)

	p := s.SelectedParty
	if p == nil {
		prompt := el(atom.P, attr("class", "prompt"))
		prompt.AppendChild(text("Select a party to see the details."))
		section.AppendChild(prompt)
		return section
	}

	dl := el(atom.Dl)
	appendAll(dl, row("Name", domain.Str(p.Name))...)
	appendAll(dl, row("ID", strconv.FormatInt(p.ID, 10))...)
	appendAll(dl, row("Date", r.Dates.Format(domain.Str(p.Date)))...)
	appendAll(dl, row("Description", domain.Str(p.Description))...)
	appendAll(dl, row("Location", domain.Str(p.Location))...)
	section.AppendChild(dl)

	appendAll(section, guestList(domain.GuestsAttending(p, s.Guests, s.Rsvps))...)
	return section
}

func row(label, value string) []*html.Node {
	dt := el(atom.Dt)
	dt.AppendChild(text(label))
	dd := el(atom.Dd)
	dd.AppendChild(text(value))
	return []*html.Node{dt, dd}
}

func guestList(guests []domain.Guest) []*html.Node {
	h3 := el(atom.H3)
	h3.AppendChild(text("Guests"))
	ul := el(atom.Ul, attr("class", "guests"))
	for _, g := range guests {
		li := el(atom.Li, attr("data-id", strconv.FormatInt(g.ID, 10)))
		li.AppendChild(text(domain.Str(g.Name)))
		ul.AppendChild(li)
	}
	return []*html.Node{h3, ul}
}

func postForm(action, label string) *html.Node {
	form := el(atom.Form, attr("method", "post"), attr("action", action))
	btn := el(atom.Button, attr("type", "submit"))
	btn.AppendChild(text(label))
	form.AppendChild(btn)
	return form
}

func el(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// appendAll appends children in order, skipping nil (omitted) sub-views.
func appendAll(parent *html.Node, children ...*html.Node) {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
}
