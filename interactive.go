package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/thedittmer/intel-hub/internal/hub"
	"github.com/thedittmer/intel-hub/internal/models"
	"github.com/thedittmer/intel-hub/internal/session"
	"github.com/thedittmer/intel-hub/internal/ui"
)

// windowChoices are the windows offered by the menu, in days.
var windowChoices = []int{1, 3, 7, 30}

type menu struct {
	c      *cli.Context
	h      *hub.Hub
	st     session.State
	days   int
	reader *bufio.Reader
	out    io.Writer
}

func runInteractive(c *cli.Context) error {
	if !ui.IsInteractive() {
		return showCmd(c)
	}

	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	st, err := loadSession(c, h)
	if err != nil {
		return err
	}

	m := &menu{c: c, h: h, st: st, days: h.Window(), reader: bufio.NewReader(os.Stdin), out: os.Stdout}
	return m.loop()
}

func (m *menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	line, err := m.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (m *menu) loop() error {
	fmt.Fprintln(m.out, ui.Header("AI Intelligence Hub", fmt.Sprintf("Window: last %d days", m.days)))
	if len(m.st.Feed) == 0 {
		fmt.Fprintln(m.out, ui.DimStyle.Render("Choose 1 to collect the latest AI papers, blogs and news."))
	}

	for {
		if m.c.Context.Err() != nil {
			return nil
		}

		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, m.status())
		for _, o := range m.options() {
			fmt.Fprintln(m.out, ui.MenuOption(o[0], o[1]))
		}

		choice, ok := m.prompt("\nEnter choice (1-10): ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			m.refresh()
		case "2":
			fmt.Fprint(m.out, ui.Feed(m.st.Feed, m.st.Saved, m.st.Summaries, ui.Width(m.out)))
		case "3":
			m.summarize()
		case "4":
			m.save()
		case "5":
			m.bookmarks()
		case "6":
			m.deleteBookmark()
		case "7":
			m.search()
		case "8":
			m.changeWindow()
		case "9":
			m.addBlog()
		case "10", "q":
			return nil
		default:
			fmt.Fprintln(m.out, ui.Error("Invalid choice"))
		}
	}
}

func (m *menu) options() [][2]string {
	return [][2]string{
		{"1", "Refresh feed"},
		{"2", "Show feed"},
		{"3", "Summarize an item"},
		{"4", "Save an item"},
		{"5", "Show bookmarks"},
		{"6", "Delete a bookmark"},
		{"7", "Search feed"},
		{"8", fmt.Sprintf("Change window (now %d days)", m.days)},
		{"9", "Add a blog feed"},
		{"10", "Exit"},
	}
}

func (m *menu) status() string {
	parts := []string{
		fmt.Sprintf("window %dd", m.days),
		fmt.Sprintf("%d items", len(m.st.Feed)),
		fmt.Sprintf("%d saved", len(m.st.Saved)),
	}
	if last, err := m.h.LastRefresh(m.c.Context); err == nil && !last.IsZero() {
		parts = append(parts, "refreshed "+last.Local().Format("2006-01-02 15:04"))
	}
	return ui.Status(parts...)
}

func (m *menu) refresh() {
	fmt.Fprintln(m.out, ui.DimStyle.Render("Collecting AI news from around the world..."))
	st, report, err := m.h.Refresh(m.c.Context, m.st, m.h.DefaultSelection(), m.days)
	m.st = st
	if err != nil {
		fmt.Fprintln(m.out, ui.Warning(err.Error()))
	}
	fmt.Fprint(m.out, ui.Outcomes(report))
	fmt.Fprintln(m.out, ui.Success(fmt.Sprintf("%d items", len(m.st.Feed))))
}

func (m *menu) pick() (models.Item, bool) {
	if len(m.st.Feed) == 0 {
		fmt.Fprintln(m.out, ui.DimStyle.Render("The feed is empty. Refresh first."))
		return models.Item{}, false
	}
	ref, ok := m.prompt(fmt.Sprintf("Item number (1-%d) or id: ", len(m.st.Feed)))
	if !ok || ref == "" {
		return models.Item{}, false
	}
	item, err := m.st.Lookup(ref)
	if err != nil {
		fmt.Fprintln(m.out, ui.Error(err.Error()))
		return models.Item{}, false
	}
	return item, true
}

func (m *menu) summarize() {
	if !m.h.SummariesEnabled() {
		fmt.Fprintln(m.out, ui.Warning("Summaries are off. Set ai.provider in your config."))
		return
	}
	item, ok := m.pick()
	if !ok {
		return
	}
	st, err := summarizeItem(m.c, m.h, m.st, item)
	m.st = st
	if err != nil {
		fmt.Fprintln(m.out, err)
	}
}

func (m *menu) save() {
	item, ok := m.pick()
	if !ok {
		return
	}
	st, saved, err := m.h.Save(m.c.Context, m.st, item, "")
	m.st = st
	switch {
	case err != nil:
		fmt.Fprintln(m.out, ui.Error("Save failed: "+err.Error()))
	case !saved:
		fmt.Fprintln(m.out, ui.DimStyle.Render("Already saved."))
	default:
		fmt.Fprintln(m.out, ui.Success("Saved: "+item.Title))
	}
}

func (m *menu) bookmarks() {
	bookmarks, err := m.h.Bookmarks(m.c.Context)
	if err != nil {
		fmt.Fprintln(m.out, ui.Warning("Bookmarks unavailable: "+err.Error()))
		return
	}
	if len(bookmarks) == 0 {
		fmt.Fprintln(m.out, ui.DimStyle.Render("No bookmarks yet."))
		return
	}
	width := ui.Width(m.out)
	fmt.Fprintln(m.out, ui.Section(fmt.Sprintf("Bookmarks (%d)", len(bookmarks))))
	for _, b := range bookmarks {
		fmt.Fprint(m.out, ui.Bookmark(b, width))
	}
}

func (m *menu) deleteBookmark() {
	id, ok := m.prompt("Bookmark id: ")
	if !ok || id == "" {
		return
	}
	st, removed, err := m.h.Delete(m.c.Context, m.st, id)
	m.st = st
	switch {
	case err != nil:
		fmt.Fprintln(m.out, ui.Error("Delete failed: "+err.Error()))
	case !removed:
		fmt.Fprintln(m.out, ui.DimStyle.Render("No bookmark with that id."))
	default:
		fmt.Fprintln(m.out, ui.Success("Deleted."))
	}
}

func (m *menu) search() {
	term, ok := m.prompt("\nEnter search term: ")
	if !ok || term == "" {
		return
	}
	matches := searchFeed(m.st.Feed, term)
	if len(matches) == 0 {
		fmt.Fprintln(m.out, ui.DimStyle.Render("No matching items."))
		return
	}
	width := ui.Width(m.out)
	fmt.Fprintln(m.out, ui.Section(fmt.Sprintf("%d results for %q", len(matches), term)))
	for _, i := range matches {
		item := m.st.Feed[i]
		item.Title = ui.Highlight(item.Title, term)
		fmt.Fprintln(m.out, ui.Item(i+1, item, m.st.IsSaved(item.ID), m.st.Summaries[item.ID], width))
	}
}

func (m *menu) addBlog() {
	name, ok := m.prompt("Blog name: ")
	if !ok || name == "" {
		return
	}
	feedURL, ok := m.prompt("Feed URL: ")
	if !ok || feedURL == "" {
		return
	}
	b, err := m.h.AddBlog(name, feedURL)
	if err != nil {
		fmt.Fprintln(m.out, ui.Error("Add failed: "+err.Error()))
		return
	}
	fmt.Fprintln(m.out, ui.Success(fmt.Sprintf("Added %s. Refresh to fetch it.", b.Name)))
}

func (m *menu) changeWindow() {
	fmt.Fprintf(m.out, "Window in days %v: ", windowChoices)
	line, ok := m.prompt("")
	if !ok {
		return
	}
	days, err := strconv.Atoi(line)
	if err != nil || days < 0 {
		fmt.Fprintln(m.out, ui.Error("Enter a non-negative number of days"))
		return
	}
	m.days = days
	fmt.Fprintln(m.out, ui.Success(fmt.Sprintf("Window set to %d days. Refresh to apply.", days)))
}

// searchFeed returns the positions of items whose title, source or content
// contains every word of query, ignoring case. Feed order is kept.
func searchFeed(items []models.Item, query string) []int {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil
	}

	var out []int
	for i, item := range items {
		text := strings.ToLower(item.Title + " " + item.Source + " " + item.Content)
		matched := true
		for _, w := range words {
			if !strings.Contains(text, w) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, i)
		}
	}
	return out
}
