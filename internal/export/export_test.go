package export

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/gedcart/internal/graph"
	"github.com/rcliao/gedcart/internal/model"
)

func TestResolveTier(t *testing.T) {
	tests := []struct {
		req  string
		role model.Role
		want model.AccessTier
	}{
		{"", model.RoleAdmin, model.TierHidden},
		{"none", model.RoleAdmin, model.TierFullAdmin},
		{"none", model.RoleMember, model.TierMember},
		{"none", model.RoleVisitor, model.TierVisitor},
		{"gedadmin", model.RoleManager, model.TierGedcomAdmin},
		{"gedadmin", model.RoleMember, model.TierMember},
		{"user", model.RoleMember, model.TierMember},
		{"user", model.RoleVisitor, model.TierVisitor},
		{"visitor", model.RoleVisitor, model.TierVisitor},
		{"bogus", model.RoleAdmin, model.TierHidden},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveTier(tt.req, tt.role), "%q as %s", tt.req, tt.role)
	}
}

func TestPruneReferences(t *testing.T) {
	text := strings.Join([]string{
		"0 @I1@ INDI",
		"1 FAMS @A@",
		"1 FAMS @C@",
		"2 NOTE nested under C",
		"1 BIRT",
		"2 SOUR @C@",
		"3 PAGE 12",
		"2 SOUR @B@",
		"3 NOTE @C@",
		"4 CONT deep",
		"3 PAGE 4",
		"1 NOTE @C@",
	}, "\n")

	got := PruneReferences(text, map[string]bool{"A": true, "B": true})
	assert.Equal(t, strings.Join([]string{
		"0 @I1@ INDI",
		"1 FAMS @A@",
		"1 BIRT",
		"2 SOUR @B@",
		"3 PAGE 4",
	}, "\n"), got)
	assert.NotContains(t, got, "@C@")
}

func TestPruneReferencesLeavesDeeperLevels(t *testing.T) {
	text := "0 @I1@ INDI\n1 BIRT\n2 SOUR @B@\n3 DATA\n4 NOTE @C@"
	assert.Equal(t, text, PruneReferences(text, map[string]bool{"B": true}))
}

const tree = `0 @I1@ INDI
1 NAME Zed /Able/
1 FAMS @F1@
1 OBJE @M1@
1 NOTE @N9@
0 @I2@ INDI
1 NAME Amy /Baker/
1 FAMS @F1@
1 OBJE @M2@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 NOTE @N1@
0 @M1@ OBJE
1 FILE photos/zed.jpg
1 FILE https://example.org/z.jpg
1 FILE photos/missing.jpg
0 @M2@ OBJE
1 FILE photos/zed.jpg
0 @N1@ NOTE Wedding
0 @N9@ NOTE Private
`

var cartIDs = []string{"M2", "I2", "GONE", "N1", "I1", "F1", "M1"}

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	g, err := graph.LoadMemory(strings.NewReader(tree))
	require.NoError(t, err)
	return New(g, Options{
		Tree:        "main",
		Tier:        model.TierVisitor,
		Media:       fstest.MapFS{"photos/zed.jpg": {Data: []byte("jpeg bytes")}},
		MediaPrefix: "media/",
	})
}

func TestEntriesOrder(t *testing.T) {
	entries, err := newTestExporter(t).Entries(context.Background(), cartIDs)
	require.NoError(t, err)

	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"F1", "I1", "I2", "N1", "M1", "M2"}, ids)
}

const restricted = `0 @I1@ INDI
1 NAME Open /Person/
1 FAMS @F1@
0 @I9@ INDI
1 NAME Secret /Person/
1 RESN confidential
1 FAMS @F1@
1 BIRT
2 DATE 1 JAN 1990
2 PLAC Hometown
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I9@
`

func TestRecordsSkipsRecordsHiddenAtTier(t *testing.T) {
	g, err := graph.LoadMemory(strings.NewReader(restricted))
	require.NoError(t, err)
	ctx := context.Background()

	x := New(g, Options{Tree: "main", Tier: model.TierVisitor})
	texts, _, err := x.Records(ctx, []string{"I1", "I9", "F1"}, nil)
	require.NoError(t, err)
	require.Len(t, texts, 2)

	doc := strings.Join(texts, "\n")
	assert.NotContains(t, doc, "@I9@")
	assert.NotContains(t, doc, "Secret")
	assert.Contains(t, doc, "1 HUSB @I1@")

	x = New(g, Options{Tree: "main", Tier: model.TierGedcomAdmin})
	texts, _, err = x.Records(ctx, []string{"I1", "I9", "F1"}, nil)
	require.NoError(t, err)
	assert.Len(t, texts, 3)
	assert.Contains(t, strings.Join(texts, "\n"), "1 WIFE @I9@")
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(b)
	}
	return files
}

func TestArchive(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewSink(&buf, FormatZip)
	require.NoError(t, err)

	res, err := newTestExporter(t).Archive(context.Background(), sink, "main.ged", cartIDs)
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	assert.Equal(t, 6, res.Records)
	assert.Equal(t, 1, res.MediaFiles)

	files := readZip(t, buf.Bytes())
	assert.Len(t, files, 2)
	assert.Equal(t, "jpeg bytes", files["media/photos/zed.jpg"])

	doc := files["main.ged"]
	assert.True(t, strings.HasPrefix(doc, "0 HEAD\n"))
	assert.True(t, strings.HasSuffix(doc, "0 TRLR\n"))
	assert.Contains(t, doc, "0 @I1@ INDI\n1 NAME Zed /Able/\n1 FAMS @F1@\n1 OBJE @M1@\n0 @I2@ INDI")
	assert.NotContains(t, doc, "@N9@")
	assert.Contains(t, doc, "1 FILE media/photos/zed.jpg\n1 FILE https://example.org/z.jpg\n")
	assert.Less(t, strings.Index(doc, "0 @F1@ FAM"), strings.Index(doc, "0 @I1@ INDI"))
}

func TestDownloadTar(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "cart.tar")

	res, err := newTestExporter(t).Download(context.Background(), dest, FormatTar, cartIDs)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Records)
	assert.NotEmpty(t, res.ID)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	var names []string
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	assert.ElementsMatch(t, []string{"media/photos/zed.jpg", "main.ged"}, names)
}

func TestDownloadUnwritableDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "cart.zip")

	_, err := newTestExporter(t).Download(context.Background(), dest, FormatZip, cartIDs)
	assert.ErrorIs(t, err, ErrArchive)
	assert.NoFileExists(t, dest)
}

// brokenGraph fails to privatize one record.
type brokenGraph struct {
	graph.Graph
}

func (b brokenGraph) PrivatizedText(ctx context.Context, id string, tier model.AccessTier) (string, error) {
	if id == "M2" {
		return "", errors.New("disk on fire")
	}
	return b.Graph.PrivatizedText(ctx, id, tier)
}

func TestDownloadFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "cart.zip")
	g, err := graph.LoadMemory(strings.NewReader(tree))
	require.NoError(t, err)

	x := New(brokenGraph{g}, Options{Tree: "main", MediaPrefix: "media/"})
	_, err = x.Download(context.Background(), dest, FormatZip, cartIDs)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTAM(t *testing.T) {
	var buf bytes.Buffer
	res, err := newTestExporter(t).TAM(context.Background(), &buf, "wt2TAM.ged", cartIDs)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 0, res.MediaFiles)

	doc := buf.String()
	assert.Contains(t, doc, "0 @F1@ FAM\n1 HUSB @I1@\n1 WIFE @I2@\n0 @I1@ INDI")
	assert.NotContains(t, doc, "OBJE")
	assert.NotContains(t, doc, "NOTE")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("tar")
	require.NoError(t, err)
	assert.Equal(t, FormatTar, f)

	_, err = ParseFormat("rar")
	assert.Error(t, err)
}
