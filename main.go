// i18nkit — key/value localization editor with multi-provider machine translation.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i18nkit/i18nkit/config"
	"github.com/i18nkit/i18nkit/editor"
	"github.com/i18nkit/i18nkit/filecache"
	"github.com/i18nkit/i18nkit/i18n"
	"github.com/i18nkit/i18nkit/localestore"
	"github.com/i18nkit/i18nkit/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir   string
	assumeYes bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18nkit",
		Short: i18n.T("Edit localization key/value files across locales"),
		Long: `i18nkit — key/value localization editor with machine translation.

Operates on locale roots holding one JSON/YAML file per locale (en.json,
ru.json) or one directory of namespace files per locale (en/common.json).
Structure and format are auto-detected. Keys are dotted paths; a literal
key containing dots is always preferred over a nested lookup, so flat and
nested files are both addressable.

Commands:
  get         Show a key's value in every locale
  set         Write a key's value to every locale
  rm          Remove a key from every locale
  translate   Fill a key in every locale from the source locale using AI
  locales     List detected locales, structure, and format
  watch       Keep the file cache coherent with filesystem changes

Configuration lives in .i18nkit.yaml at the project root (source locale,
locale roots, include/exclude globs, translation providers). API keys are
read from the environment variables the config names, never from the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Assume yes for all confirmation prompts")

	root.AddCommand(
		newGetCmd(),
		newSetCmd(),
		newRmCmd(),
		newTranslateCmd(),
		newLocalesCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// workspace (config + one store per locale root, sharing one cache)
// ---------------------------------------------------------------------------

type workspace struct {
	cfg    *config.File
	cache  *filecache.Cache
	stores []*localestore.Store
}

func openWorkspace() (*workspace, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}

	roots, err := cfg.ResolvedRoots(rootDir)
	if err != nil {
		return nil, err
	}

	ws := &workspace{
		cfg:   cfg,
		cache: filecache.New(filecache.Options{OnError: logWarning}),
	}

	for _, root := range roots {
		store, err := localestore.New(root, localestore.Options{
			SourceLocale: cfg.SourceLocale,
			Include:      cfg.Include,
			Exclude:      cfg.Exclude,
			OnError:      logWarning,
		})
		if err != nil {
			logWarning("skipping locale root %s: %v", root, err)
			continue
		}
		if len(store.ListLocales()) == 0 {
			continue
		}
		ws.stores = append(ws.stores, store)
	}

	if len(ws.stores) == 0 {
		return nil, fmt.Errorf(i18n.T("no locales found under %s"), strings.Join(roots, ", "))
	}
	return ws, nil
}

// editorFor builds an editor over one locale root. The translator chain is
// optional: only the translate command pays for backend construction.
func (w *workspace) editorFor(store *localestore.Store, chain *translate.Chain) *editor.Editor {
	opts := editor.Options{
		Confirm: confirmPrompt,
		OnError: logWarning,
	}
	if chain != nil {
		opts.Translator = chain
	}
	return editor.New(store, w.cache, opts)
}

// confirmPrompt asks a yes/no question on stderr and reads the answer from
// stdin. --yes short-circuits to an unconditional yes.
func confirmPrompt(message string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", message)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printRecords renders per-locale values on stdout, one line per locale.
// Subtrees are rendered as compact JSON so output stays one line per locale.
func printRecords(records []editor.Record) {
	for _, rec := range records {
		switch v := rec.Value.(type) {
		case nil:
			fmt.Printf("%-8s %s-%s\n", rec.Code, colorYellow, colorReset)
		case string:
			fmt.Printf("%-8s %s\n", rec.Code, v)
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				fmt.Printf("%-8s %v\n", rec.Code, v)
				continue
			}
			fmt.Printf("%-8s %s\n", rec.Code, raw)
		}
	}
}

// ---------------------------------------------------------------------------
// get
// ---------------------------------------------------------------------------

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show a key's value in every locale",
		Long: `Show the value of a dotted key in every detected locale.

The source locale is listed first. A dash marks locales where the key is
not defined. Subtree values are printed as compact JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			key := args[0]
			defined := false
			for _, store := range ws.stores {
				ed := ws.editorFor(store, nil)
				records := ed.GetI18n(key)
				for _, rec := range records {
					if rec.Value != nil {
						defined = true
					}
				}
				printRecords(records)
			}

			if !defined {
				logWarning(i18n.T("key %q is not defined in %s"), key, rootDir)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// set
// ---------------------------------------------------------------------------

func newSetCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a key's value to every locale",
		Long: `Write a value under a dotted key in every detected locale.

The key is stored as a single literal key (set "a.b.c" writes the top-level
key "a.b.c", it does not create nested objects). Before writing, the source
locale is checked for a conflicting value at the key or any ancestor; a
conflict asks for confirmation unless --yes is given.

With --json the value is parsed as JSON, so objects, arrays, numbers, and
booleans can be written. Without it the value is stored as a plain string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var value any = args[1]
			if asJSON {
				if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
					return fmt.Errorf("parsing --json value: %w", err)
				}
			}

			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			for _, store := range ws.stores {
				ed := ws.editorFor(store, nil)
				if !ed.CheckOverride(key) {
					logWarning(i18n.T("write aborted"))
					continue
				}

				records := ed.GetI18n(key)
				for i := range records {
					records[i].Value = value
				}
				if err := ed.WriteI18n(records); err != nil {
					return err
				}
				logSuccess("%s: wrote %q to %d locale(s)", store.Root(), key, len(records))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Parse the value as JSON instead of a plain string")

	return cmd
}

// ---------------------------------------------------------------------------
// rm
// ---------------------------------------------------------------------------

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove a key from every locale",
		Long: `Remove a dotted key from every detected locale.

Sibling keys are preserved. Locales where the key is absent are left
untouched. Asks for confirmation unless --yes is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if !confirmPrompt(fmt.Sprintf(i18n.T("remove key %q from every locale?"), key)) {
				logWarning(i18n.T("write aborted"))
				return nil
			}

			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			for _, store := range ws.stores {
				ed := ws.editorFor(store, nil)
				if err := ed.RemoveI18n(key); err != nil {
					return err
				}
				logSuccess("%s: removed %q", store.Root(), key)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <key>",
		Short: "Fill a key in every locale from the source locale using AI",
		Long: `Translate the source-locale value of a dotted key into every other
locale and persist the results.

Providers come from .i18nkit.yaml (or the built-in defaults) and are tried
in order per locale; the first usable result wins. Locales whose providers
all fail keep their previous value — one bad locale never aborts the rest.
API keys are read from the environment variables the config names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			backends := ws.cfg.Backends()
			if len(backends) == 0 {
				return fmt.Errorf("no translation providers configured")
			}
			chain := translate.NewChain(backends...)
			chain.OnLog = logInfo

			names := make([]string, len(backends))
			for i, b := range backends {
				names[i] = b.Name()
			}
			logInfo("Providers: %s", strings.Join(names, ", "))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			key := args[0]
			for _, store := range ws.stores {
				ed := ws.editorFor(store, chain)
				records, err := ed.TransI18n(ctx, key)
				if err != nil {
					return err
				}
				printRecords(records)
			}

			logSuccess("Translation complete!")
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// locales
// ---------------------------------------------------------------------------

func newLocalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List detected locales, structure, and format",
		Run: func(cmd *cobra.Command, args []string) {
			ws, err := openWorkspace()
			if err != nil {
				logError("%v", err)
				os.Exit(1)
			}

			total := 0
			for _, store := range ws.stores {
				structDesc := "file per locale"
				if store.Structure() == localestore.DirectoryStructure {
					structDesc = "directory per locale"
				}
				fmt.Fprintf(os.Stderr, "\n%s%s%s (%s, %s)\n", colorBlue, store.Root(), colorReset, structDesc, store.Format())
				fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

				for _, entry := range store.ListLocales() {
					marker := " "
					if entry.Code == store.SourceLocale() {
						marker = "*"
					}
					fmt.Fprintf(os.Stderr, "  %s %-8s %s\n", marker, entry.Code, entry.RawName)
					total++
				}
			}

			fmt.Fprintln(os.Stderr)
			logInfo(i18n.N("Found %d locale", "Found %d locales", total), total)
		},
	}
}

// ---------------------------------------------------------------------------
// watch
// ---------------------------------------------------------------------------

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the file cache coherent with filesystem changes",
		Long: `Watch every locale root and refresh cached file content on change.

Create, write, remove, and rename events on JSON/YAML files invalidate or
refresh the cache; everything else is ignored. Mostly useful when i18nkit
runs as a long-lived process embedding the library.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			for _, store := range ws.stores {
				if err := ws.cache.Watch(ctx, store.Root()); err != nil {
					return fmt.Errorf("watching %s: %w", store.Root(), err)
				}
				logInfo(i18n.T("watching %s for changes, press Ctrl+C to stop"), store.Root())
			}

			<-ctx.Done()
			logInfo("Watch stopped")
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("i18nkit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}
