// Package localestore enumerates the locales under a locale root directory
// and resolves abstract dotted keys to concrete files.
//
// A locale root holds one entry per locale in one of two layouts:
//
//	file-structured:       locales/en.json, locales/zh-CN.json
//	directory-structured:  locales/en/common.json, locales/en/buttons.json
//
// Structure and serialization format are detected once at construction and
// assumed stable for the Store's lifetime; construct a new Store after
// structural changes.
package localestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Structure indicates how a locale root is laid out.
type Structure int

const (
	// FileStructure: one file per locale.
	FileStructure Structure = iota
	// DirectoryStructure: one directory of namespace files per locale.
	DirectoryStructure
)

// Format is the serialization format of a locale root, stored as the
// file extension without the leading dot ("json", "yml", "yaml").
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yml"
)

// LocaleEntry is one discovered locale under a root.
type LocaleEntry struct {
	// RootPath is the absolute path of the locale root.
	RootPath string
	// EntryPath is the absolute path of this locale's file or directory.
	EntryPath string
	// IsDirectory reports whether the locale is a directory of namespace files.
	IsDirectory bool
	// RawName is the original file/directory name before normalization.
	RawName string
	// Code is the normalized locale identifier (e.g. "en", "zh-CN").
	Code string
}

// Options configures a Store.
type Options struct {
	// SourceLocale is the locale treated as the origin of truth.
	// Its entry is ordered first by ListLocales.
	SourceLocale string
	// Normalize converts a raw file/directory name into a locale code.
	// Entries normalizing to "" are dropped. Defaults to Normalize.
	Normalize func(raw string) string
	// Include and Exclude are glob patterns matched against raw entry
	// names. When Include is non-empty, only matching entries are kept.
	Include []string
	Exclude []string
	// OnError receives non-fatal diagnostics.
	OnError func(format string, args ...any)
}

// Store binds a locale root to its detected structure and format.
type Store struct {
	root string
	opts Options

	structure Structure
	format    Format
}

// New constructs a Store for rootPath and detects its structure and format.
func New(rootPath string, opts Options) (*Store, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolving locale root %s: %w", rootPath, err)
	}
	if opts.Normalize == nil {
		opts.Normalize = Normalize
	}
	if opts.SourceLocale == "" {
		opts.SourceLocale = "en"
	}
	s := &Store{root: abs, opts: opts}

	entries := s.ListLocales()
	s.structure = classifyStructure(entries)
	s.format = detectFormat(entries)
	return s, nil
}

// Root returns the absolute locale root path.
func (s *Store) Root() string { return s.root }

// SourceLocale returns the configured source locale code.
func (s *Store) SourceLocale() string { return s.opts.SourceLocale }

// Structure returns the layout detected at construction.
func (s *Store) Structure() Structure { return s.structure }

// Format returns the serialization format detected at construction.
func (s *Store) Format() Format { return s.format }

// ListLocales enumerates the immediate children of the root and returns one
// LocaleEntry per recognized locale, source locale first. An unrecognizable
// root yields a diagnostic and an empty list, never an error.
func (s *Store) ListLocales() []LocaleEntry {
	children, err := os.ReadDir(s.root)
	if err != nil {
		s.reportf("could not recognize locale directory %s: %v", s.root, err)
		return nil
	}

	var entries []LocaleEntry
	for _, child := range children {
		raw := child.Name()
		if !child.IsDir() {
			raw = strings.TrimSuffix(raw, filepath.Ext(raw))
		}
		if !s.matches(raw) {
			continue
		}
		code := s.opts.Normalize(raw)
		if code == "" {
			continue
		}
		entries = append(entries, LocaleEntry{
			RootPath:    s.root,
			EntryPath:   filepath.Join(s.root, child.Name()),
			IsDirectory: child.IsDir(),
			RawName:     raw,
			Code:        code,
		})
	}

	// Source locale first, everything else in enumeration order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Code == s.opts.SourceLocale && entries[j].Code != s.opts.SourceLocale
	})

	if len(entries) == 0 {
		s.reportf("could not recognize locale directory %s", s.root)
	}
	return entries
}

// SourceEntry returns the entry matching the source locale, if present.
func (s *Store) SourceEntry() (LocaleEntry, bool) {
	for _, e := range s.ListLocales() {
		if e.Code == s.opts.SourceLocale {
			return e, true
		}
	}
	return LocaleEntry{}, false
}

// Resolve maps a full dotted key to the concrete file and in-file key path
// for one locale entry.
//
// File-structured roots address the locale file with the key unchanged.
// Directory-structured roots treat the first key segment as the namespace
// file name; the remaining segments form the in-file path, which may be
// empty ("the whole file is the value").
func (s *Store) Resolve(entry LocaleEntry, fullKey string) (filePath, keyPath string) {
	if s.structure == FileStructure {
		return entry.EntryPath, fullKey
	}
	ns, rest, _ := strings.Cut(fullKey, ".")
	return filepath.Join(entry.EntryPath, ns+"."+string(s.format)), rest
}

func (s *Store) matches(raw string) bool {
	for _, pat := range s.opts.Exclude {
		if ok, _ := filepath.Match(pat, raw); ok {
			return false
		}
	}
	if len(s.opts.Include) == 0 {
		return true
	}
	for _, pat := range s.opts.Include {
		if ok, _ := filepath.Match(pat, raw); ok {
			return true
		}
	}
	return false
}

func (s *Store) reportf(format string, args ...any) {
	if s.opts.OnError != nil {
		s.opts.OnError(format, args...)
	}
}

// classifyStructure: the root is directory-structured if any entry is a
// directory.
func classifyStructure(entries []LocaleEntry) Structure {
	for _, e := range entries {
		if e.IsDirectory {
			return DirectoryStructure
		}
	}
	return FileStructure
}

// detectFormat inspects the first entry. A file's own extension decides;
// a directory is scanned and YAML is preferred when at least one .yml file
// is present, JSON otherwise.
func detectFormat(entries []LocaleEntry) Format {
	if len(entries) == 0 {
		return FormatJSON
	}
	first := entries[0]
	if !first.IsDirectory {
		ext := strings.TrimPrefix(filepath.Ext(first.EntryPath), ".")
		if ext != "" {
			return Format(ext)
		}
		return FormatJSON
	}
	children, err := os.ReadDir(first.EntryPath)
	if err != nil {
		return FormatJSON
	}
	for _, c := range children {
		if !c.IsDir() && filepath.Ext(c.Name()) == ".yml" {
			return FormatYAML
		}
	}
	return FormatJSON
}

// Normalize converts a raw file or directory name into a canonical BCP 47
// locale code ("zh_cn" -> "zh-CN"). Names that do not parse as a known
// language tag yield "".
func Normalize(raw string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if cleaned == "" {
		return ""
	}
	tag, err := language.Parse(cleaned)
	if err != nil {
		return ""
	}
	if _, conf := tag.Base(); conf == language.No {
		return ""
	}
	return tag.String()
}
