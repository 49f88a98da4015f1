package tagrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"tagres/internal/faults"
	"tagres/internal/fileutil"
	"tagres/internal/index"
	"tagres/internal/logging"
	"tagres/internal/resources"
	"tagres/internal/tagging"
)

// DefaultIndexFilename is used when Options.IndexFilename is empty.
const DefaultIndexFilename = "tagged-index.properties"

// RootRegistrar receives the output directory once per processed group so a
// host build can add it to its resource roots.
type RootRegistrar interface {
	AddResourceRoot(dir string)
}

// Options configures a tagging run.
type Options struct {
	OutputDir     string
	IndexFilename string
	// Encoding of the index file. Nil selects ISO-8859-1.
	Encoding encoding.Encoding
	Tagger   *tagging.Tagger
	// Include filters descriptors before they are fingerprinted. Nil selects
	// resources.NotHidden.
	Include   func(resources.Descriptor) bool
	Registrar RootRegistrar
	// Observer sees every entry once it has been indexed and copied.
	Observer func(Entry)
	Logger   *slog.Logger
}

// Entry describes one tagged resource.
type Entry struct {
	BaseDir     string
	Original    string
	Tagged      string
	Fingerprint uint64
	ID          string
	Bytes       int64
}

// Result summarizes a run.
type Result struct {
	Entries   []Entry
	Skipped   int
	IndexPath string
	Roots     []string
	// Replaced counts characters the index encoding could not represent.
	Replaced int
}

// Run fingerprints, indexes and copies every included resource of every
// group, in order. The first failure stops the run; entries already written
// stay on disk. When the run fails and closing the index also fails, both
// errors are returned.
func Run(ctx context.Context, opts Options, groups []resources.Enumerated) (*Result, error) {
	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger

	writer, err := index.Open(opts.OutputDir, opts.IndexFilename, opts.Encoding)
	if err != nil {
		return nil, err
	}
	result := &Result{IndexPath: writer.Path()}

	runErr := walk(ctx, opts, groups, result, func(desc resources.Descriptor, tag tagging.Tag) (Entry, error) {
		if err := writer.Record(desc.Path, tag.Name); err != nil {
			return Entry{}, err
		}
		source := desc.Source()
		target := filepath.Join(opts.OutputDir, filepath.FromSlash(tag.Name))
		written, err := fileutil.CopyFile(source, target)
		if err != nil {
			return Entry{}, faults.Wrap(faults.ErrIO, "tagrun", "copy", fmt.Sprintf("%s to %s", source, target), err)
		}
		return Entry{
			BaseDir:     desc.BaseDir,
			Original:    desc.Path,
			Tagged:      tag.Name,
			Fingerprint: tag.Fingerprint,
			ID:          tag.ID,
			Bytes:       written,
		}, nil
	})

	closeErr := writer.Close()
	result.Replaced = writer.Replaced()
	if result.Replaced > 0 {
		logging.WarnWithContext(logger, "index encoding could not represent some characters", "index_replacement",
			logging.String("index", writer.Path()),
			logging.Int("replaced", result.Replaced),
			logging.String(logging.FieldErrorHint, "set tagging.index_encoding to UTF-8"),
		)
	}
	if err := errors.Join(runErr, closeErr); err != nil {
		return result, err
	}

	logger.Info("tagging complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("tagged", len(result.Entries)),
		logging.Int("skipped", result.Skipped),
		logging.String("index", result.IndexPath),
	)
	return result, nil
}

// Plan resolves tagged names without writing the index or copying files.
func Plan(ctx context.Context, opts Options, groups []resources.Enumerated) (*Result, error) {
	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	opts.Registrar = nil
	result := &Result{IndexPath: filepath.Join(opts.OutputDir, opts.IndexFilename)}
	err = walk(ctx, opts, groups, result, func(desc resources.Descriptor, tag tagging.Tag) (Entry, error) {
		return Entry{
			BaseDir:     desc.BaseDir,
			Original:    desc.Path,
			Tagged:      tag.Name,
			Fingerprint: tag.Fingerprint,
			ID:          tag.ID,
		}, nil
	})
	return result, err
}

type emitFunc func(resources.Descriptor, tagging.Tag) (Entry, error)

func walk(ctx context.Context, opts Options, groups []resources.Enumerated, result *Result, emit emitFunc) error {
	logger := opts.Logger
	claimed := make(map[string]string)

	for _, group := range groups {
		groupLogger := logger.With(logging.String(logging.FieldGroup, group.Group.Directory))
		for _, desc := range group.Descriptors {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("tagging canceled before %s: %w", desc.Path, err)
			}
			if generated(desc.Source(), opts.OutputDir) || !opts.Include(desc) {
				result.Skipped++
				groupLogger.Debug("resource skipped", logging.String("path", desc.Path))
				continue
			}

			tag, err := opts.Tagger.Tag(desc.BaseDir, desc.Path)
			if err != nil {
				return err
			}
			if previous, ok := claimed[tag.Name]; ok {
				logging.WarnWithContext(groupLogger, "tagged name collision; later resource overwrites earlier copy", "tag_collision",
					logging.String("tagged", tag.Name),
					logging.String("previous", previous),
					logging.String("current", desc.Source()),
					logging.String(logging.FieldImpact, "the earlier resource is no longer present in the output"),
				)
			}
			claimed[tag.Name] = desc.Source()

			entry, err := emit(desc, tag)
			if err != nil {
				return err
			}
			result.Entries = append(result.Entries, entry)
			if opts.Observer != nil {
				opts.Observer(entry)
			}
			groupLogger.Debug("resource tagged",
				logging.String("path", entry.Original),
				logging.String("tagged", entry.Tagged),
				logging.String("checksum", entry.ID),
			)
		}
		if opts.Registrar != nil {
			opts.Registrar.AddResourceRoot(opts.OutputDir)
		}
		result.Roots = appendUnique(result.Roots, opts.OutputDir)
	}
	return nil
}

func normalize(opts Options) (Options, error) {
	if opts.Tagger == nil {
		return opts, faults.Wrap(faults.ErrConfiguration, "tagrun", "configure", "tagger is required", nil)
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return opts, faults.Wrap(faults.ErrConfiguration, "tagrun", "configure", "output directory is required", nil)
	}
	output, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return opts, faults.Wrap(faults.ErrConfiguration, "tagrun", "configure", opts.OutputDir, err)
	}
	opts.OutputDir = output
	if strings.TrimSpace(opts.IndexFilename) == "" {
		opts.IndexFilename = DefaultIndexFilename
	}
	if opts.Include == nil {
		opts.Include = resources.NotHidden
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	opts.Logger = logging.NewComponentLogger(opts.Logger, "tagrun")
	return opts, nil
}

// generated reports whether path is run output: a file below the output
// directory or the output lock beside it.
func generated(path, outputDir string) bool {
	if insideDir(path, outputDir) {
		return true
	}
	abs, err := filepath.Abs(path)
	return err == nil && abs == LockPath(outputDir)
}

// insideDir reports whether path is dir or lies below it.
func insideDir(path, dir string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}
