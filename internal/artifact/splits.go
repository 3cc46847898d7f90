package artifact

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/order"
)

const (
	GameName     = "Sonic Adventure 2: Battle - Category Extensions"
	CategoryName = "Hunting Tourney!"

	DefaultScriptPath = `C:\Users\PC\Downloads\LiveSplit_1.8.16\Components\LiveSplit.SA2.asl`
)

// AutoSplitterFlags is the static CustomSettings block the SA2 autosplitter
// reads. Order and values are part of the file format.
var AutoSplitterFlags = []Flag{
	{ID: "storyStart", Value: false},
	{ID: "NG+", Value: false},
	{ID: "huntingTimer", Value: true},
	{ID: "timeIGT", Value: false},
	{ID: "combinedHunting", Value: false},
	{ID: "no280", Value: false},
	{ID: "fileReset", Value: true},
	{ID: "stageExit", Value: false},
	{ID: "resetIL", Value: false},
	{ID: "stageEntry", Value: false},
	{ID: "chaoRace", Value: false},
	{ID: "backRing", Value: false},
	{ID: "cannonsCore", Value: false},
	{ID: "bossRush", Value: false},
}

type Flag struct {
	ID    string
	Value bool
}

type SplitsOptions struct {
	// ScriptPath is the autosplitter script location; DefaultScriptPath if empty.
	ScriptPath string
}

// LiveSplit .lss layout, version 1.7.0.
type lssRun struct {
	XMLName        xml.Name        `xml:"Run"`
	Version        string          `xml:"version,attr"`
	GameIcon       string          `xml:"GameIcon"`
	GameName       string          `xml:"GameName"`
	CategoryName   string          `xml:"CategoryName"`
	LayoutPath     string          `xml:"LayoutPath"`
	Metadata       lssMetadata     `xml:"Metadata"`
	Offset         string          `xml:"Offset"`
	AttemptCount   int             `xml:"AttemptCount"`
	AttemptHistory string          `xml:"AttemptHistory"`
	Segments       lssSegments     `xml:"Segments"`
	AutoSplitter   lssAutoSplitter `xml:"AutoSplitterSettings"`
}

type lssMetadata struct {
	Run struct {
		ID string `xml:"id,attr"`
	} `xml:"Run"`
	Platform struct {
		UsesEmulator string `xml:"usesEmulator,attr"`
	} `xml:"Platform"`
	Region    string `xml:"Region"`
	Variables string `xml:"Variables"`
}

type lssSegments struct {
	Segment []lssSegment `xml:"Segment"`
}

type lssSegment struct {
	Name       string `xml:"Name"`
	Icon       string `xml:"Icon"`
	SplitTimes struct {
		SplitTime struct {
			Name string `xml:"name,attr"`
		} `xml:"SplitTime"`
	} `xml:"SplitTimes"`
	BestSegmentTime string `xml:"BestSegmentTime"`
	SegmentHistory  string `xml:"SegmentHistory"`
}

type lssAutoSplitter struct {
	Version        string `xml:"Version"`
	ScriptPath     string `xml:"ScriptPath"`
	Start          string `xml:"Start"`
	Reset          string `xml:"Reset"`
	Split          string `xml:"Split"`
	CustomSettings struct {
		Setting []lssSetting `xml:"Setting"`
	} `xml:"CustomSettings"`
}

type lssSetting struct {
	ID    string `xml:"id,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Splits renders the LiveSplit file: one empty segment per split label.
func Splits(ord order.Ordering, opts SplitsOptions) ([]byte, error) {
	run := lssRun{
		Version:      "1.7.0",
		GameName:     GameName,
		CategoryName: CategoryName,
		Offset:       "00:00:00",
		AttemptCount: 0,
	}
	run.Metadata.Platform.UsesEmulator = titleBool(false)

	run.Segments.Segment = make([]lssSegment, 0, len(ord.SplitLabels))
	for _, label := range ord.SplitLabels {
		seg := lssSegment{Name: label}
		seg.SplitTimes.SplitTime.Name = "Personal Best"
		run.Segments.Segment = append(run.Segments.Segment, seg)
	}

	run.AutoSplitter = lssAutoSplitter{
		Version:    "1.5",
		ScriptPath: opts.ScriptPath,
		Start:      titleBool(true),
		Reset:      titleBool(true),
		Split:      titleBool(true),
	}
	if run.AutoSplitter.ScriptPath == "" {
		run.AutoSplitter.ScriptPath = DefaultScriptPath
	}
	for _, f := range AutoSplitterFlags {
		run.AutoSplitter.CustomSettings.Setting = append(run.AutoSplitter.CustomSettings.Setting,
			lssSetting{ID: f.ID, Type: "bool", Value: titleBool(f.Value)})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(run); err != nil {
		return nil, fmt.Errorf("encode splits: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode splits: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// SplitsFileName is safe to use as a single path element.
func SplitsFileName(runnerA, runnerB string) string {
	clean := strings.NewReplacer(`/`, "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_")
	return fmt.Sprintf("SA2B - Hunting Tourney - %s vs %s.lss", clean.Replace(runnerA), clean.Replace(runnerB))
}

// LiveSplit expects "True"/"False".
func titleBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
