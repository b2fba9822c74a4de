package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/disenocorptpc-dot/wonderwoods/internal/catalog"
	"github.com/disenocorptpc-dot/wonderwoods/internal/config"
	"github.com/disenocorptpc-dot/wonderwoods/internal/fallback"
	"github.com/disenocorptpc-dot/wonderwoods/internal/imaging"
	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
	"github.com/disenocorptpc-dot/wonderwoods/internal/remote"
)

const usage = `Usage: wonderwoods <command> [flags]

Commands:
  list                 show catalog items
  characters           show character entries
  search <term>        search items by name
  show <id>            show item details and logs
  add [flags]          create an item (see add -h)
  edit <id> [flags]    update an item's fields (see edit -h)
  delete <id>          delete an item
  log <id> [flags]     append a log entry (-author, -text)
  image <id> -file <f> attach an image from a file
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg := config.LoadClient()
	client := remote.NewClient(cfg.ServerURL, cfg.AccessKey)
	repo := catalog.NewRepository(client, fallback.AllItems())
	resolver := catalog.NewResolver(client)
	ctx := context.Background()

	if err := repo.Initialize(ctx); err != nil {
		if errors.Is(err, catalog.ErrConnection) {
			fmt.Fprintln(os.Stderr, "Warning: store unreachable, showing bundled data (read-only)")
		} else {
			fatal(err)
		}
	}

	app := &app{repo: repo, resolver: resolver, ctx: ctx}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "list":
		err = app.list()
	case "characters":
		err = app.characters()
	case "search":
		err = app.search(os.Args[2:])
	case "show":
		err = app.show(os.Args[2:])
	case "add":
		err = app.add(os.Args[2:])
	case "edit":
		err = app.edit(os.Args[2:])
	case "delete":
		err = app.delete(os.Args[2:])
	case "log":
		err = app.appendLog(os.Args[2:])
	case "image":
		err = app.image(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s", cmd, usage)
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

type app struct {
	repo     *catalog.Repository
	resolver *catalog.Resolver
	ctx      context.Context
}

func (a *app) list() error {
	a.printItems(a.repo.CatalogItems(a.ctx))
	return nil
}

func (a *app) characters() error {
	items := a.repo.CharacterItems(a.ctx)
	if len(items) == 0 {
		items = nil
		for _, c := range fallback.Characters() {
			items = append(items, c.AsItem())
		}
	}
	for _, item := range items {
		fmt.Printf("%-20s %s\n", item.ID, item.Name)
	}
	return nil
}

func (a *app) search(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: search <term>")
	}
	a.printItems(a.repo.Search(a.ctx, args[0]))
	return nil
}

func (a *app) printItems(items []model.Item) {
	fmt.Printf("%-20s %-30s %-15s %9s  %s\n", "ID", "NAME", "CATEGORY", "STOCK", "STATUS")
	for _, item := range items {
		fmt.Printf("%-20s %-30s %-15s %4d /%3d  %s\n",
			item.ID, truncate(item.Name, 30), truncate(item.Category, 15),
			item.Stock.Current, item.Stock.MinLevel, item.Stock.Status)
	}
}

func (a *app) show(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: show <id>")
	}
	item, err := a.repo.Get(a.ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", item.Name, item.ID)
	fmt.Printf("Category:     %s\n", item.Category)
	if item.Description != "" {
		fmt.Printf("Description:  %s\n", item.Description)
	}
	if item.IsCharacter() {
		if item.History != "" {
			fmt.Printf("History:      %s\n", item.History)
		}
	} else {
		fmt.Printf("Stock:        %d / %d (%s)\n", item.Stock.Current, item.Stock.MinLevel, item.Stock.Status)
		d := item.Dimensions
		if d.Width != "" || d.Height != "" || d.Depth != "" {
			fmt.Printf("Dimensions:   %s x %s x %s\n", dash(d.Width), dash(d.Height), dash(d.Depth))
		}
		if d.Capacity != "" {
			fmt.Printf("Capacity:     %s\n", d.Capacity)
		}
		if item.Materials != "" {
			fmt.Printf("Materials:    %s\n", item.Materials)
		}
		if item.Manufacturing.Manufacturer != "" {
			fmt.Printf("Manufacturer: %s\n", item.Manufacturing.Manufacturer)
		}
		if item.Manufacturing.ProductionFiles != "" {
			fmt.Printf("Files:        %s\n", item.Manufacturing.ProductionFiles)
		}
	}
	fmt.Printf("Image:        %s\n", truncate(a.resolver.Resolve(a.ctx, &item), 60))

	logs := item.DisplayLogs()
	if len(logs) > 0 {
		fmt.Println("\nLogs:")
		for _, l := range logs {
			fmt.Printf("  [%s] %s: %s\n", l.Date.Format("2006-01-02 15:04"), l.Author, l.Text)
		}
	}
	return nil
}

// itemFlags registers the shared add/edit flags on fs, returning the
// destination item and the stock fields (kept separate so edit can
// tell which flags were actually set).
func itemFlags(fs *flag.FlagSet, item *model.Item) (current, minLevel *int) {
	fs.StringVar(&item.Name, "name", "", "item name")
	fs.StringVar(&item.Category, "category", "", "item category")
	fs.StringVar(&item.Description, "desc", "", "description")
	fs.StringVar(&item.History, "history", "", "character history")
	fs.StringVar(&item.Dimensions.Width, "width", "", "width (unit-annotated)")
	fs.StringVar(&item.Dimensions.Height, "height", "", "height (unit-annotated)")
	fs.StringVar(&item.Dimensions.Depth, "depth", "", "depth (unit-annotated)")
	fs.StringVar(&item.Dimensions.Capacity, "capacity", "", "capacity (unit-annotated)")
	fs.StringVar(&item.Materials, "material", "", "materials")
	fs.StringVar(&item.Manufacturing.Manufacturer, "manufacturer", "", "manufacturer")
	fs.StringVar(&item.Manufacturing.ProductionFiles, "files", "", "production files link")
	current = fs.Int("stock", 0, "current stock")
	minLevel = fs.Int("minlevel", model.DefaultMinLevel, "minimum stock level")
	return current, minLevel
}

func (a *app) add(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	var item model.Item
	current, minLevel := itemFlags(fs, &item)
	character := fs.Bool("character", false, "create a character entry")
	fs.Parse(args)

	if item.Name == "" {
		return fmt.Errorf("name required: %w", catalog.ErrValidation)
	}
	if *character {
		item.Category = model.CategoryCharacters
	} else if item.Category == "" {
		item.Category = "General"
	}
	item.Stock = model.Stock{Current: *current, MinLevel: *minLevel}

	created, err := a.repo.Create(a.ctx, item)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s)\n", created.Name, created.ID)
	return nil
}

func (a *app) edit(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: edit <id> [flags]")
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	var form model.Item
	current, minLevel := itemFlags(fs, &form)
	fs.Parse(args[1:])

	// Start from the stored record so fields the form didn't touch
	// (logs, legacy comments, the image pointer) survive the verbatim
	// replace the repository performs.
	item, err := a.repo.Get(a.ctx, id)
	if err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			item.Name = form.Name
		case "category":
			item.Category = form.Category
		case "desc":
			item.Description = form.Description
		case "history":
			item.History = form.History
		case "width":
			item.Dimensions.Width = form.Dimensions.Width
		case "height":
			item.Dimensions.Height = form.Dimensions.Height
		case "depth":
			item.Dimensions.Depth = form.Dimensions.Depth
		case "capacity":
			item.Dimensions.Capacity = form.Dimensions.Capacity
		case "material":
			item.Materials = form.Materials
		case "manufacturer":
			item.Manufacturing.Manufacturer = form.Manufacturing.Manufacturer
		case "files":
			item.Manufacturing.ProductionFiles = form.Manufacturing.ProductionFiles
		case "stock":
			item.Stock.Current = *current
		case "minlevel":
			item.Stock.MinLevel = *minLevel
		}
	})

	if err := a.repo.Update(a.ctx, item); err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", id)
	return nil
}

func (a *app) delete(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: delete <id>")
	}
	if err := a.repo.Delete(a.ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func (a *app) appendLog(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: log <id> -author <name> -text <message>")
	}
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	author := fs.String("author", "", "log author")
	text := fs.String("text", "", "log message")
	fs.Parse(args[1:])

	if err := a.repo.AppendLog(a.ctx, args[0], *author, *text); err != nil {
		return err
	}
	fmt.Printf("Log added to %s\n", args[0])
	return nil
}

func (a *app) image(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: image <id> -file <path>")
	}
	fs := flag.NewFlagSet("image", flag.ExitOnError)
	file := fs.String("file", "", "path to a JPEG or PNG file")
	fs.Parse(args[1:])

	if *file == "" {
		return errors.New("image file required (-file)")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	payload, err := imaging.Encode(f)
	if err != nil {
		return err
	}

	if err := a.repo.AttachImage(a.ctx, args[0], payload); err != nil {
		return err
	}
	fmt.Printf("Image attached to %s (%s bytes encoded)\n", args[0], strconv.Itoa(len(payload)))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
