package artifact

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/order"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

var cat = stage.Hunting()

func fixedOrdering(t *testing.T) order.Ordering {
	t.Helper()
	ord, err := order.Generate(cat, []string{"Wild Canyon", "Pumpkin Hill"}, rand.New(rand.NewPCG(5, 6)))
	require.NoError(t, err)
	return ord
}

func TestConfig_Layout(t *testing.T) {
	ord := order.Ordering{Ranks: map[string]int{
		"Wild Canyon": 0, "Pumpkin Hill": 0, "Death Chamber": 3, "Aquatic Mine": 1, "Meteor Herd": 7,
		"Dry Lagoon": 2, "Egg Quarters": 5, "Security Hall": 4, "Mad Space": 6,
	}}

	want := strings.Join([]string{
		"[set]", "seed=12345", "ups=True", "",
		"[order]", "wc=0", "ph=0", "dc=3", "am=1", "mh=7", "dl=2", "eq=5", "sh=4", "ms=6", "",
		"[number]", "wc=5", "ph=5", "dc=5", "am=5", "mh=5", "dl=5", "eq=5", "sh=5", "ms=5", "",
		"",
	}, "\n")
	assert.Equal(t, want, string(Config(cat, ord, 12345)))
}

func TestConfig_RoundTrip(t *testing.T) {
	ord := fixedOrdering(t)
	seed, err := NewSeed()
	require.NoError(t, err)

	parsed, err := ParseConfig(Config(cat, ord, seed))
	require.NoError(t, err)

	assert.Equal(t, seed, parsed.Seed)
	assert.True(t, parsed.UPS)
	for _, s := range cat.Stages() {
		assert.Equal(t, ord.Ranks[s.Name], parsed.Order[s.Key()], s.Name)
		assert.Equal(t, order.SplitsPerStage, parsed.Number[s.Key()], s.Name)
	}
	assert.Equal(t, []string{"wc", "ph", "dc", "am", "mh", "dl", "eq", "sh", "ms"}, parsed.Keys)
}

func TestConfig_ASCIIAndNewlineTerminated(t *testing.T) {
	out := Config(cat, fixedOrdering(t), MaxSeed)
	for _, c := range out {
		if c > 127 {
			t.Fatalf("non-ASCII byte %q in config", c)
		}
	}
	assert.True(t, bytes.HasSuffix(out, []byte("\n")))
}

func TestParseConfig_RejectsBadValues(t *testing.T) {
	_, err := ParseConfig([]byte("[set]\nseed=abc\nups=True\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("[set]\nseed=1\nups=True\n[order]\nwc=first\n"))
	assert.Error(t, err)
}

func TestNewSeed_InRange(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 200; i++ {
		seed, err := NewSeed()
		require.NoError(t, err)
		if seed < 1 || seed > MaxSeed {
			t.Fatalf("seed %d out of range", seed)
		}
		seen[seed] = true
	}
	assert.Greater(t, len(seen), 1, "seed is not fresh per call")
}

func TestSplits_Document(t *testing.T) {
	ord := fixedOrdering(t)
	out, err := Splits(ord, SplitsOptions{})
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, []byte(xml.Header)))
	assert.Contains(t, string(out), "\n  <GameName>"+GameName+"</GameName>\n")

	var run lssRun
	require.NoError(t, xml.Unmarshal(out, &run))

	assert.Equal(t, "1.7.0", run.Version)
	assert.Equal(t, GameName, run.GameName)
	assert.Equal(t, CategoryName, run.CategoryName)
	assert.Equal(t, "False", run.Metadata.Platform.UsesEmulator)
	assert.Equal(t, "00:00:00", run.Offset)

	require.Len(t, run.Segments.Segment, 35)
	for i, seg := range run.Segments.Segment {
		assert.Equal(t, ord.SplitLabels[i], seg.Name)
		assert.Equal(t, "Personal Best", seg.SplitTimes.SplitTime.Name)
		assert.Empty(t, seg.BestSegmentTime)
		assert.Empty(t, seg.SegmentHistory)
	}

	as := run.AutoSplitter
	assert.Equal(t, "1.5", as.Version)
	assert.Equal(t, DefaultScriptPath, as.ScriptPath)
	assert.Equal(t, []string{"True", "True", "True"}, []string{as.Start, as.Reset, as.Split})

	var got []string
	for _, s := range as.CustomSettings.Setting {
		assert.Equal(t, "bool", s.Type)
		got = append(got, s.ID+"="+s.Value)
	}
	assert.Equal(t, []string{
		"storyStart=False", "NG+=False", "huntingTimer=True", "timeIGT=False",
		"combinedHunting=False", "no280=False", "fileReset=True", "stageExit=False",
		"resetIL=False", "stageEntry=False", "chaoRace=False", "backRing=False",
		"cannonsCore=False", "bossRush=False",
	}, got)
}

func TestSplits_Deterministic(t *testing.T) {
	ord := fixedOrdering(t)
	a, err := Splits(ord, SplitsOptions{ScriptPath: "/opt/LiveSplit.SA2.asl"})
	require.NoError(t, err)
	b, err := Splits(ord, SplitsOptions{ScriptPath: "/opt/LiveSplit.SA2.asl"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, string(a), "<ScriptPath>/opt/LiveSplit.SA2.asl</ScriptPath>")
}

func TestSplitsFileName(t *testing.T) {
	assert.Equal(t, "SA2B - Hunting Tourney - Alice vs Bob.lss", SplitsFileName("Alice", "Bob"))
	assert.Equal(t, "SA2B - Hunting Tourney - a_b vs c_d.lss", SplitsFileName("a/b", `c\d`))
}

func TestWriter_WritesBothFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".output")
	b, err := Build(cat, fixedOrdering(t), "Alice", "Bob", 77, SplitsOptions{})
	require.NoError(t, err)

	files, err := NewWriter(dir, nil).Write(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.ini"), files.ConfigPath)
	assert.Equal(t, filepath.Join(dir, "SA2B - Hunting Tourney - Alice vs Bob.lss"), files.SplitsPath)

	cfg, err := os.ReadFile(files.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, b.Config, cfg)
	splits, err := os.ReadFile(files.SplitsPath)
	require.NoError(t, err)
	assert.Equal(t, b.Splits, splits)
}

func TestWriter_ReportsPathOnFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	b, err := Build(cat, fixedOrdering(t), "Alice", "Bob", 1, SplitsOptions{})
	require.NoError(t, err)

	_, err = NewWriter(blocker, nil).Write(context.Background(), b)
	var werr *WriteError
	require.True(t, errors.As(err, &werr), "got %v", err)
	assert.Equal(t, blocker, werr.Path)
}
