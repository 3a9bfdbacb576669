// Package graph defines the read-only access port to a genealogical record
// graph and its in-memory and Neo4j adapters.
package graph

import (
	"context"
	"errors"

	"github.com/rcliao/gedcart/internal/model"
)

// ErrNotFound is returned for ids that do not name a record, for example
// records deleted after they were added to a cart.
var ErrNotFound = errors.New("record not found")

// Graph is the capability the closure engine and export filter need from
// the host's tree.
type Graph interface {
	// KindOf returns the kind of a record.
	KindOf(ctx context.Context, id string) (model.RecordKind, error)

	// Relatives returns the ids a record links to under rel, in document
	// order, without duplicates. Links to missing records are dropped.
	Relatives(ctx context.Context, id string, rel model.Relation) ([]string, error)

	// CanView reports whether a viewer browsing at tier may see the record.
	CanView(ctx context.Context, id string, tier model.AccessTier) (bool, error)

	// PrivatizedText returns the record's GEDCOM text with facts tier may
	// not see removed.
	PrivatizedText(ctx context.Context, id string, tier model.AccessTier) (string, error)

	// MediaFiles returns the files attached to a media record.
	MediaFiles(ctx context.Context, id string) ([]model.MediaFile, error)

	// SortName returns the key records of the same kind are ordered by.
	SortName(ctx context.Context, id string) (string, error)

	// IDs lists every record of a kind.
	IDs(ctx context.Context, kind model.RecordKind) ([]string, error)

	Close() error
}
