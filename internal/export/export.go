// Package export turns cart contents into a self-contained GEDCOM document
// and bundles the media files it references.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/gedcart/internal/gedcom"
	"github.com/rcliao/gedcart/internal/graph"
	"github.com/rcliao/gedcart/internal/model"
)

// Options configures an Exporter.
type Options struct {
	Tree string
	Tier model.AccessTier
	// Media is the tree's media file store. Nil disables media copying.
	Media fs.FS
	// MediaPrefix is prepended to media file paths inside the archive and
	// in the exported FILE lines.
	MediaPrefix string
	Source      string
	Logger      *zap.Logger
}

// Entry is one exportable cart member.
type Entry struct {
	ID       string
	Kind     model.RecordKind
	SortName string
}

// Result summarizes an export run.
type Result struct {
	ID         string
	Records    int
	MediaFiles int
}

// Exporter reads records through a graph and filters them for export.
type Exporter struct {
	graph  graph.Graph
	opts   Options
	logger *zap.Logger
}

// New returns an Exporter reading from g.
func New(g graph.Graph, opts Options) *Exporter {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Source == "" {
		opts.Source = "gedcart"
	}
	return &Exporter{graph: g, opts: opts, logger: opts.Logger}
}

// Entries resolves ids and returns them ordered by kind tag, then sort
// name, then id. Ids that no longer name a record, or that the export tier
// may not see, are dropped.
func (x *Exporter) Entries(ctx context.Context, ids []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		kind, err := x.graph.KindOf(ctx, id)
		if errors.Is(err, graph.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", id, err)
		}
		ok, err := x.graph.CanView(ctx, id, x.opts.Tier)
		if err != nil {
			return nil, fmt.Errorf("visibility %s: %w", id, err)
		}
		if !ok {
			continue
		}
		name, err := x.graph.SortName(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("sort name %s: %w", id, err)
		}
		entries = append(entries, Entry{ID: id, Kind: kind, SortName: name})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.SortName != b.SortName {
			return a.SortName < b.SortName
		}
		return a.ID < b.ID
	})
	return entries, nil
}

// Records returns the privatized, reference-pruned text of every member in
// export order. When sink is not nil the files of media records are copied
// into it.
func (x *Exporter) Records(ctx context.Context, ids []string, sink Sink) ([]string, int, error) {
	entries, err := x.Entries(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	keep := make(map[string]bool, len(entries))
	for _, e := range entries {
		keep[e.ID] = true
	}

	texts := make([]string, 0, len(entries))
	copied := 0
	for _, e := range entries {
		text, err := x.graph.PrivatizedText(ctx, e.ID, x.opts.Tier)
		if errors.Is(err, graph.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("privatize %s: %w", e.ID, err)
		}
		text = PruneReferences(text, keep)

		if e.Kind == model.KindMedia {
			text = gedcom.PrefixFiles(text, x.opts.MediaPrefix)
			if sink != nil {
				n, err := x.copyMedia(ctx, e.ID, sink)
				if err != nil {
					return nil, 0, err
				}
				copied += n
			}
		}
		texts = append(texts, text)
	}
	return texts, copied, nil
}

// copyMedia copies the local files of a media record into sink. Files that
// are external, missing from the store, or already in the archive are
// skipped.
func (x *Exporter) copyMedia(ctx context.Context, id string, sink Sink) (int, error) {
	if x.opts.Media == nil {
		return 0, nil
	}
	files, err := x.graph.MediaFiles(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("media files %s: %w", id, err)
	}

	n := 0
	for _, mf := range files {
		if mf.External {
			continue
		}
		to := x.opts.MediaPrefix + mf.Path
		if sink.Has(to) {
			continue
		}
		info, err := fs.Stat(x.opts.Media, mf.Path)
		if err != nil || info.IsDir() {
			x.logger.Debug("media file missing", zap.String("media", id), zap.String("path", mf.Path))
			continue
		}
		f, err := x.opts.Media.Open(mf.Path)
		if err != nil {
			continue
		}
		err = sink.Write(to, f, info.Size())
		f.Close()
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// WriteDocument writes a complete GEDCOM document for ids to w.
func (x *Exporter) WriteDocument(ctx context.Context, w io.Writer, filename string, ids []string, sink Sink) (Result, error) {
	res := Result{ID: ulid.Make().String()}
	texts, copied, err := x.Records(ctx, ids, sink)
	if err != nil {
		return res, err
	}

	gw := gedcom.NewWriter(w)
	if err := gw.WriteHeader(gedcom.Header{
		Source:   x.opts.Source,
		Filename: filename,
		Date:     time.Now(),
		Tree:     x.opts.Tree,
	}); err != nil {
		return res, err
	}
	for _, t := range texts {
		if err := gw.WriteRecord(t); err != nil {
			return res, err
		}
	}
	if err := gw.Close(); err != nil {
		return res, fmt.Errorf("write document: %w", err)
	}

	res.Records = len(texts)
	res.MediaFiles = copied
	x.logger.Info("export written",
		zap.String("export_id", res.ID),
		zap.String("tree", x.opts.Tree),
		zap.String("tier", x.opts.Tier.String()),
		zap.Int("records", res.Records),
		zap.Int("media_files", res.MediaFiles))
	return res, nil
}

// Archive writes the GEDCOM document and the media files of ids into sink.
// The document is stored as filename at the archive root.
func (x *Exporter) Archive(ctx context.Context, sink Sink, filename string, ids []string) (Result, error) {
	var buf bytes.Buffer
	res, err := x.WriteDocument(ctx, &buf, filename, ids, sink)
	if err != nil {
		return res, err
	}
	if err := sink.Write(filename, &buf, int64(buf.Len())); err != nil {
		return res, err
	}
	return res, nil
}

// Download writes the archive to dest. On failure nothing is left at dest.
func (x *Exporter) Download(ctx context.Context, dest string, f Format, ids []string) (Result, error) {
	a, err := CreateArchive(dest, f)
	if err != nil {
		return Result{}, err
	}
	res, err := x.Archive(ctx, a, x.opts.Tree+".ged", ids)
	if err != nil {
		a.Abort()
		return res, err
	}
	if err := a.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

// TAM writes a document holding only the individuals and families among
// ids, without media, for node-link diagram tools.
func (x *Exporter) TAM(ctx context.Context, w io.Writer, filename string, ids []string) (Result, error) {
	var kept []string
	for _, id := range ids {
		kind, err := x.graph.KindOf(ctx, id)
		if errors.Is(err, graph.ErrNotFound) {
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("resolve %s: %w", id, err)
		}
		if kind == model.KindIndividual || kind == model.KindFamily {
			kept = append(kept, id)
		}
	}
	return x.WriteDocument(ctx, w, filename, kept, nil)
}
