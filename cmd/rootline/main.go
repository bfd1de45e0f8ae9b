// Command rootline is the CLI for the Rootline GEDCOM lineage toolkit.
// It parses GEDCOM sources into the canonical model, computes bounded
// ancestor/descendant graphs, filters persons, re-emits GEDCOM text, and
// manages the SQLite dataset store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/lindenrow/rootline/core/gedcom"
	"github.com/lindenrow/rootline/core/lineage"
	"github.com/lindenrow/rootline/core/search"
	"github.com/lindenrow/rootline/internal/api"
	"github.com/lindenrow/rootline/internal/fetch"
	"github.com/lindenrow/rootline/internal/formats"
	"github.com/lindenrow/rootline/internal/formats/ged"
	"github.com/lindenrow/rootline/internal/logging"
	"github.com/lindenrow/rootline/internal/store"

	// Register the shipped format handlers.
	_ "github.com/lindenrow/rootline/internal/formats/gedcomx"
)

const version = "0.1.0"

// CLI defines the command-line interface for rootline.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"json,text" help:"Log format"`

	Parse       ParseCmd       `cmd:"" help:"Parse a GEDCOM source and print the canonical model"`
	Ancestors   AncestorsCmd   `cmd:"" help:"Compute a generation-bounded ancestor graph"`
	Descendants DescendantsCmd `cmd:"" help:"Compute a generation-bounded descendant graph"`
	Search      SearchCmd      `cmd:"" help:"Filter persons with a free-text query"`
	Emit        EmitCmd        `cmd:"" help:"Re-serialize a source as canonical GEDCOM text"`
	Dataset     DatasetGroup   `cmd:"" help:"Dataset store operations (import, list, show, export, delete)"`
	Serve       ServeCmd       `cmd:"" help:"Start the REST API server"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

// sourceFlags are shared by every command that reads a GEDCOM source.
type sourceFlags struct {
	Path   string `arg:"" optional:"" help:"Path to GEDCOM file" type:"existingfile"`
	URL    string `help:"Fetch the GEDCOM source via HTTP GET instead of a file"`
	Format string `default:"auto" help:"Source format (auto, ged, gedcomx)"`
}

// load acquires and parses the source selected by the flags.
func (s *sourceFlags) load(ctx context.Context) (*gedcom.ParseResult, []byte, error) {
	var data []byte
	var err error
	switch {
	case s.URL != "":
		data, err = fetch.FromURL(ctx, s.URL, nil)
	case s.Path != "":
		data, err = fetch.FromFile(s.Path)
	default:
		return nil, nil, fmt.Errorf("either a path argument or --url is required")
	}
	if err != nil {
		return nil, nil, err
	}

	var h formats.Handler
	if s.Format == "" || s.Format == "auto" {
		h, err = formats.DetectHandler(data)
	} else {
		h, err = formats.Lookup(s.Format)
	}
	if err != nil {
		return nil, nil, err
	}
	res, err := h.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return res, data, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ParseCmd parses one or more sources and prints the canonical model.
type ParseCmd struct {
	Paths          []string `arg:"" optional:"" help:"Paths to GEDCOM files" type:"existingfile"`
	URL            string   `help:"Fetch the GEDCOM source via HTTP GET instead of a file"`
	Format         string   `default:"auto" help:"Source format (auto, ged, gedcomx)"`
	ContinueOnFail bool     `name:"continue-on-fail" help:"Keep going when one input fails to parse"`
}

func (c *ParseCmd) Run() error {
	if len(c.Paths) == 0 && c.URL == "" {
		return fmt.Errorf("either a path argument or --url is required")
	}

	sources := c.Paths
	if c.URL != "" {
		sources = append(sources, c.URL)
	}
	failed := 0
	for _, src := range sources {
		flags := sourceFlags{Format: c.Format}
		if src == c.URL {
			flags.URL = src
		} else {
			flags.Path = src
		}
		res, _, err := flags.load(context.Background())
		if err != nil {
			if c.ContinueOnFail {
				fmt.Fprintf(os.Stderr, "%s: %v\n", src, err)
				failed++
				continue
			}
			return err
		}
		if err := printJSON(res); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(sources))
	}
	return nil
}

// traversalFlags are shared by the ancestors and descendants commands.
type traversalFlags struct {
	sourceFlags
	Root        string `required:"" help:"Root person id (raw or canonical, e.g. I1 or @I1@)"`
	Generations int    `default:"5" help:"Maximum generations to walk (1-15)"`
}

func (t *traversalFlags) run(walk func(*gedcom.ParseResult, string, int) (*lineage.Result, error)) error {
	res, _, err := t.load(context.Background())
	if err != nil {
		return err
	}
	maxGen := t.Generations
	if maxGen < 1 {
		maxGen = 1
	}
	if maxGen > lineage.MaxGenerations {
		maxGen = lineage.MaxGenerations
	}
	result, err := walk(res, t.Root, maxGen)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// AncestorsCmd computes a bounded ancestor graph.
type AncestorsCmd struct {
	traversalFlags
}

func (c *AncestorsCmd) Run() error {
	return c.run(lineage.Ancestors)
}

// DescendantsCmd computes a bounded descendant graph.
type DescendantsCmd struct {
	traversalFlags
}

func (c *DescendantsCmd) Run() error {
	return c.run(lineage.Descendants)
}

// SearchCmd filters persons with a query.
type SearchCmd struct {
	sourceFlags
	Query string `arg:"" help:"Query, e.g. 'surname:doe birth:1900'"`
}

func (c *SearchCmd) Run() error {
	res, _, err := c.load(context.Background())
	if err != nil {
		return err
	}
	matches, err := search.Filter(res, c.Query)
	if err != nil {
		return err
	}
	return printJSON(matches)
}

// EmitCmd re-serializes a source as canonical GEDCOM text.
type EmitCmd struct {
	sourceFlags
	Out string `help:"Output path (default stdout)" type:"path"`
}

func (c *EmitCmd) Run() error {
	res, _, err := c.load(context.Background())
	if err != nil {
		return err
	}
	text, err := ged.Emit(res)
	if err != nil {
		return err
	}
	if c.Out == "" {
		fmt.Print(text)
		return nil
	}
	return os.WriteFile(c.Out, []byte(text), 0644)
}

// DatasetGroup contains dataset store operations.
type DatasetGroup struct {
	DB string `default:"rootline.db" help:"Path to the dataset store" type:"path"`

	Import DatasetImportCmd `cmd:"" help:"Parse a source and save it as a dataset"`
	List   DatasetListCmd   `cmd:"" help:"List stored datasets"`
	Show   DatasetShowCmd   `cmd:"" help:"Print one dataset's canonical model"`
	Export DatasetExportCmd `cmd:"" help:"Emit one dataset as GEDCOM text"`
	Delete DatasetDeleteCmd `cmd:"" help:"Delete a dataset"`
}

func (g *DatasetGroup) openStore() (*store.Store, error) {
	return store.Open(g.DB)
}

// DatasetImportCmd parses a source and saves it.
type DatasetImportCmd struct {
	sourceFlags
	Name string `help:"Dataset name (defaults to the source path or URL)"`
}

func (c *DatasetImportCmd) Run(g *DatasetGroup) error {
	res, data, err := c.load(context.Background())
	if err != nil {
		return err
	}
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	name := c.Name
	if name == "" {
		name = c.Path
		if name == "" {
			name = c.URL
		}
	}
	ds, err := st.Save(context.Background(), name, data, res)
	if err != nil {
		return err
	}
	fmt.Printf("Imported: %s\n", name)
	fmt.Printf("  Dataset ID: %s\n", ds.ID)
	fmt.Printf("  BLAKE3: %s\n", ds.SourceHash)
	fmt.Printf("  Individuals: %d\n", ds.Individuals)
	fmt.Printf("  Families: %d\n", ds.Families)
	return nil
}

// DatasetListCmd lists stored datasets.
type DatasetListCmd struct{}

func (c *DatasetListCmd) Run(g *DatasetGroup) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	datasets, err := st.List(context.Background())
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		fmt.Println("No datasets.")
		return nil
	}
	for _, ds := range datasets {
		fmt.Printf("%s  %s  (%d individuals, %d families)  %s\n",
			ds.ID, ds.Name, ds.Individuals, ds.Families, ds.CreatedAt)
	}
	return nil
}

// DatasetShowCmd prints one dataset's canonical model.
type DatasetShowCmd struct {
	ID string `arg:"" help:"Dataset ID"`
}

func (c *DatasetShowCmd) Run(g *DatasetGroup) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	ds, res, err := st.Get(context.Background(), c.ID)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"dataset": ds,
		"result":  res,
	})
}

// DatasetExportCmd emits one dataset as GEDCOM text.
type DatasetExportCmd struct {
	ID  string `arg:"" help:"Dataset ID"`
	Out string `help:"Output path (default stdout)" type:"path"`
}

func (c *DatasetExportCmd) Run(g *DatasetGroup) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	_, res, err := st.Get(context.Background(), c.ID)
	if err != nil {
		return err
	}
	text, err := ged.Emit(res)
	if err != nil {
		return err
	}
	if c.Out == "" {
		fmt.Print(text)
		return nil
	}
	return os.WriteFile(c.Out, []byte(text), 0644)
}

// DatasetDeleteCmd deletes a dataset.
type DatasetDeleteCmd struct {
	ID string `arg:"" help:"Dataset ID"`
}

func (c *DatasetDeleteCmd) Run(g *DatasetGroup) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Delete(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted: %s\n", c.ID)
	return nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Port    int      `default:"8080" help:"Listen port"`
	DB      string   `default:"rootline.db" help:"Path to the dataset store" type:"path"`
	Origins []string `help:"CORS allowed origins (default: allow all)"`
}

func (c *ServeCmd) Run() error {
	return api.Start(api.Config{
		Port:           c.Port,
		DBPath:         c.DB,
		AllowedOrigins: c.Origins,
	})
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("rootline %s (sqlite driver: %s)\n", version, store.DriverName())
	return nil
}

func initLogging() {
	level := logging.LevelInfo
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("rootline"),
		kong.Description("Rootline - GEDCOM parsing and lineage traversal toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
