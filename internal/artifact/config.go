package artifact

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/order"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

// MaxSeed is the largest seed the tourney mod accepts (signed 32-bit).
const MaxSeed = 1<<31 - 1

const ConfigFileName = "config.ini"

const (
	sectionSet    = "set"
	sectionOrder  = "order"
	sectionNumber = "number"
)

// NewSeed draws from crypto/rand so it never shares a stream with the
// stage ordering.
func NewSeed() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxSeed))
	if err != nil {
		return 0, fmt.Errorf("draw seed: %w", err)
	}
	return n.Int64() + 1, nil
}

// Config renders the mod's config.ini. Keys follow catalog order.
func Config(cat *stage.Catalog, ord order.Ordering, seed int64) []byte {
	var b strings.Builder

	b.WriteString("[" + sectionSet + "]\n")
	fmt.Fprintf(&b, "seed=%d\n", seed)
	b.WriteString("ups=True\n\n")

	b.WriteString("[" + sectionOrder + "]\n")
	for _, s := range cat.Stages() {
		fmt.Fprintf(&b, "%s=%d\n", s.Key(), ord.Ranks[s.Name])
	}
	b.WriteString("\n")

	b.WriteString("[" + sectionNumber + "]\n")
	for _, s := range cat.Stages() {
		fmt.Fprintf(&b, "%s=%d\n", s.Key(), order.SplitsPerStage)
	}
	b.WriteString("\n")

	return []byte(b.String())
}

type ConfigFile struct {
	Seed   int64
	UPS    bool
	Order  map[string]int
	Number map[string]int
	// Keys is the [order] key sequence as written.
	Keys []string
}

func ParseConfig(data []byte) (ConfigFile, error) {
	f, err := ini.Load(data)
	if err != nil {
		return ConfigFile{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg ConfigFile
	set := f.Section(sectionSet)
	if cfg.Seed, err = set.Key("seed").Int64(); err != nil {
		return ConfigFile{}, fmt.Errorf("parse config: seed: %w", err)
	}
	if cfg.UPS, err = set.Key("ups").Bool(); err != nil {
		return ConfigFile{}, fmt.Errorf("parse config: ups: %w", err)
	}
	if cfg.Order, cfg.Keys, err = intSection(f.Section(sectionOrder)); err != nil {
		return ConfigFile{}, err
	}
	if cfg.Number, _, err = intSection(f.Section(sectionNumber)); err != nil {
		return ConfigFile{}, err
	}
	return cfg, nil
}

func intSection(sec *ini.Section) (map[string]int, []string, error) {
	out := make(map[string]int)
	var keys []string
	for _, k := range sec.Keys() {
		v, err := strconv.Atoi(k.Value())
		if err != nil {
			return nil, nil, fmt.Errorf("parse config: [%s] %s: %w", sec.Name(), k.Name(), err)
		}
		out[k.Name()] = v
		keys = append(keys, k.Name())
	}
	return out, keys, nil
}
