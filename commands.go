package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/thedittmer/intel-hub/internal/hub"
	"github.com/thedittmer/intel-hub/internal/models"
	"github.com/thedittmer/intel-hub/internal/session"
	"github.com/thedittmer/intel-hub/internal/ui"
)

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// selection narrows the hub's default selection by the command's flags.
func selection(c *cli.Context, h *hub.Hub) models.Selection {
	sel := h.DefaultSelection()
	if v := c.StringSlice("papers"); len(v) > 0 {
		sel.Papers = v
	}
	if v := c.StringSlice("blogs"); len(v) > 0 {
		sel.Blogs = v
	}
	if v := c.StringSlice("news"); len(v) > 0 {
		sel.News = v
	}
	return sel
}

func loadSession(c *cli.Context, h *hub.Hub) (session.State, error) {
	st, err := h.Session(c.Context)
	if err != nil {
		return st, cli.Exit(fmt.Sprintf("Error loading session: %v", err), ExitDataError)
	}
	return st, nil
}

func refreshCmd(c *cli.Context) error {
	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	days := h.Window()
	if c.IsSet("days") {
		days = c.Int("days")
		if days < 0 {
			return cli.Exit("--days must not be negative", ExitUsageError)
		}
	}

	st, err := loadSession(c, h)
	if err != nil {
		return err
	}

	fmt.Println(ui.DimStyle.Render(fmt.Sprintf("Collecting items from the last %d days...", days)))
	st, report, err := h.Refresh(c.Context, st, selection(c, h), days)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	fmt.Print(ui.Outcomes(report))
	fmt.Print(ui.Feed(st.Feed, st.Saved, st.Summaries, ui.Width(os.Stdout)))
	return nil
}

func showCmd(c *cli.Context) error {
	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	st, err := loadSession(c, h)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return outputJSON(st.Feed)
	}

	last, err := h.LastRefresh(c.Context)
	if err == nil && !last.IsZero() {
		fmt.Println(ui.DimStyle.Render("Last refreshed " + last.Local().Format("2006-01-02 15:04")))
	} else if len(st.Feed) == 0 {
		fmt.Println(ui.DimStyle.Render("Run `intel-hub refresh` to collect the latest items."))
		return nil
	}
	fmt.Print(ui.Feed(st.Feed, st.Saved, st.Summaries, ui.Width(os.Stdout)))
	return nil
}

func summarizeCmd(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: intel-hub summarize <number|id>", ExitUsageError)
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
	item, err := st.Lookup(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	_, err = summarizeItem(c, h, st, item)
	return err
}

// summarizeItem prints the summary of item, streaming it when the provider
// supports that.
func summarizeItem(c *cli.Context, h *hub.Hub, st session.State, item models.Item) (session.State, error) {
	fmt.Println(ui.SourceStyle.Render(item.Icon+" "+item.Source) + "  " + item.Title)

	stream := ui.NewStream(os.Stdout)
	var onUpdate func(string)
	if h.Streaming() {
		onUpdate = stream.Update
	}

	st, summary, err := h.Summarize(c.Context, st, item, onUpdate)
	if !stream.Done() {
		fmt.Println(ui.SummaryStyle.Width(ui.Width(os.Stdout) - 4).Render(summary))
	}
	if err != nil {
		return st, cli.Exit(ui.Error(err.Error()), exitCodeFor(err))
	}
	return st, nil
}

func saveCmd(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: intel-hub save <number|id>", ExitUsageError)
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
	item, err := st.Lookup(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	_, saved, err := h.Save(c.Context, st, item, c.String("memo"))
	if err != nil {
		return cli.Exit(ui.Error("Save failed: "+err.Error()), exitCodeFor(err))
	}
	if !saved {
		fmt.Println(ui.DimStyle.Render("Already saved: " + item.Title))
		return nil
	}
	fmt.Println(ui.Success("Saved: " + item.Title))
	return nil
}

func listBookmarksCmd(c *cli.Context) error {
	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	bookmarks, err := h.Bookmarks(c.Context)
	if err != nil {
		return cli.Exit(ui.Error("Error loading bookmarks: "+err.Error()), exitCodeFor(err))
	}

	if c.Bool("json") {
		return outputJSON(bookmarks)
	}
	if len(bookmarks) == 0 {
		fmt.Println(ui.DimStyle.Render("No bookmarks yet."))
		return nil
	}
	width := ui.Width(os.Stdout)
	fmt.Println(ui.Section(fmt.Sprintf("Bookmarks (%d)", len(bookmarks))))
	for _, b := range bookmarks {
		fmt.Print(ui.Bookmark(b, width))
	}
	return nil
}

func listBlogsCmd(c *cli.Context) error {
	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	blogs := h.Blogs()
	if c.Bool("json") {
		return outputJSON(blogs)
	}
	fmt.Println(ui.Section(fmt.Sprintf("Blogs (%d)", len(blogs))))
	for _, b := range blogs {
		fmt.Printf("%s  %s\n", ui.SourceStyle.Render(b.Name), ui.LinkStyle.Render(b.URL))
	}
	return nil
}

// addBlogCmd takes the feed URL as the last argument so names may contain
// spaces.
func addBlogCmd(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("Usage: intel-hub blogs add <name> <feed-url>", ExitUsageError)
	}
	args := c.Args().Slice()
	name := strings.Join(args[:len(args)-1], " ")
	feedURL := args[len(args)-1]

	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	b, err := h.AddBlog(name, feedURL)
	if err != nil {
		return cli.Exit(ui.Error("Add failed: "+err.Error()), exitCodeFor(err))
	}
	fmt.Println(ui.Success("Added blog: " + b.Name))
	return nil
}

func deleteBookmarkCmd(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: intel-hub bookmarks delete <id>", ExitUsageError)
	}

	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	id := c.Args().First()
	_, removed, err := h.Delete(c.Context, session.New(), id)
	if err != nil {
		return cli.Exit(ui.Error("Delete failed: "+err.Error()), exitCodeFor(err))
	}
	if !removed {
		fmt.Println(ui.DimStyle.Render("No bookmark with id " + id))
		return nil
	}
	fmt.Println(ui.Success("Deleted " + id))
	return nil
}

func exportBookmarksCmd(c *cli.Context) error {
	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	path := c.String("output")
	f, err := os.Create(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error creating %s: %v", path, err), ExitDataError)
	}

	n, err := h.Export(c.Context, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return cli.Exit(ui.Error("Export failed: "+err.Error()), exitCodeFor(err))
	}
	fmt.Println(ui.Success(fmt.Sprintf("Exported %d bookmarks to %s", n, path)))
	return nil
}

func initSheetCmd(c *cli.Context) error {
	h, err := openHub(c)
	if err != nil {
		return err
	}
	defer h.Close()

	result, err := h.InitSheet(c.Context, c.String("share"))
	if err != nil {
		return cli.Exit(ui.Error(err.Error()), exitCodeFor(err))
	}
	fmt.Println(ui.Success("Created spreadsheet " + result.SpreadsheetID))
	fmt.Println(ui.LinkStyle.Render(result.URL))
	fmt.Println(ui.DimStyle.Render("Set bookmarks.backend: sheets in your config to store bookmarks there."))
	return nil
}
