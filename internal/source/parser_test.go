package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

// writeExport creates a JSONL file under dir/rel and returns its path.
func writeExport(t *testing.T, dir, rel string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestScanDir_KindsAndUsers(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "alice/shifts.jsonl", `{}`)
	writeExport(t, dir, "alice/habits-2025.jsonl", `{}`)
	writeExport(t, dir, "bob/ledger_march.jsonl", `{}`)
	writeExport(t, dir, "cards.jsonl", `{}`)
	writeExport(t, dir, "alice/notes.jsonl", `{}`)
	writeExport(t, dir, "alice/shifts.json", `{}`)

	files, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)

	byKind := map[Kind]DiscoveredFile{}
	for _, f := range files {
		byKind[f.Kind] = f
	}
	assert.Equal(t, "alice", byKind[KindShifts].User)
	assert.Equal(t, "alice", byKind[KindHabits].User)
	assert.Equal(t, "bob", byKind[KindLedger].User)
	assert.Equal(t, "", byKind[KindCards].User)
	assert.Equal(t, 2, CountUsers(files))
}

func TestScanDir_MissingDir(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestKindOf(t *testing.T) {
	k, ok := KindOf("Completions.jsonl")
	assert.True(t, ok)
	assert.Equal(t, KindCompletions, k)

	_, ok = KindOf("random.jsonl")
	assert.False(t, ok)
}

func TestParseFile_CountsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "alice/shifts.jsonl",
		`{"id":"s1","title":"Day","start":"2025-03-02T07:00:00Z"}`,
		``,
		`{not json`,
		`{"id":"s2","title":"No start"}`,
		`{"id":"s3","user_id":"carol","title":"Night","start":"2025-03-02T19:00:00Z"}`,
	)

	res := ParseFile(DiscoveredFile{Path: path, Kind: KindShifts, User: "alice"})
	require.NoError(t, res.Err)
	assert.Equal(t, 4, res.Lines)
	assert.Equal(t, 2, res.ParseErrors)
	require.Len(t, res.Batch.Shifts, 2)
	assert.Equal(t, "alice", res.Batch.Shifts[0].UserID)
	assert.Equal(t, "carol", res.Batch.Shifts[1].UserID)
}

func TestParseFile_PurchasesDecodeMoneyAndDates(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "purchases.jsonl",
		`{"id":"p1","card_id":"visa","description":"Laptop","total_amount":"1200.50","installment_count":12,"purchase_date":"2024-11-20"}`,
		`{"id":"p2","card_id":"visa","total_amount":99.9,"installment_count":1,"purchase_date":"2024-11-21"}`,
		`{"id":"p3","card_id":"visa","total_amount":"10","installment_count":1,"purchase_date":"11/21/2024"}`,
	)

	res := ParseFile(DiscoveredFile{Path: path, Kind: KindPurchases})
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.ParseErrors)
	require.Len(t, res.Batch.Purchases, 2)

	p := res.Batch.Purchases[0]
	assert.Equal(t, "1200.5", p.TotalAmount.String())
	assert.Equal(t, 12, p.InstallmentCount)
	assert.Equal(t, calendar.MustParse("2024-11-20"), p.PurchaseDate)
	assert.Equal(t, "99.9", res.Batch.Purchases[1].TotalAmount.String())
}

func TestParseFile_TrackableKindFollowsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "bob/devotionals.jsonl",
		`{"id":"d1","label":"Psalms","kind":"habit","completions":[{"day":"2025-03-01","completed":true,"value":1}]}`,
		`{"id":"d2"}`,
	)

	res := ParseFile(DiscoveredFile{Path: path, Kind: KindDevotionals, User: "bob"})
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.ParseErrors)
	require.Len(t, res.Batch.Trackables, 1)
	tr := res.Batch.Trackables[0]
	assert.Equal(t, model.KindDevotional, tr.Kind)
	assert.Equal(t, "bob", tr.UserID)
	require.Len(t, tr.Completions, 1)
	assert.True(t, tr.Completions[0].Completed)
}

func TestParseFile_EventIDsAreStableAcrossParses(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "events.jsonl",
		`{"title":"Dinner","start":"2025-03-03T18:00:00Z","end":"2025-03-03T20:00:00Z"}`,
		`{"id":"keep","title":"Named","start":"2025-03-04T18:00:00Z"}`,
	)
	df := DiscoveredFile{Path: path, Kind: KindEvents}

	first := ParseFile(df)
	second := ParseFile(df)
	require.Len(t, first.Batch.ManualEvents, 2)
	assert.Len(t, first.Batch.ManualEvents[0].ID, 36)
	assert.Equal(t, first.Batch.ManualEvents[0].ID, second.Batch.ManualEvents[0].ID)
	assert.Equal(t, "keep", first.Batch.ManualEvents[1].ID)
}

func TestParseFile_MissingFile(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "gone.jsonl"), Kind: KindTasks})
	assert.Error(t, res.Err)
}
