// Package feedsim serves synthetic regulator feeds for local development
// and end-to-end testing. The payloads match the upstream wire shapes,
// including the minguo date forms and the positional disposition rows.
package feedsim

import (
	"fmt"
	"math/rand"
	"time"
)

// security is one listed instrument in the simulated universe.
type security struct {
	code string
	name string
}

// universe is the fixed set of simulated securities. The first few get
// dense attention histories so risk tiers show up quickly.
var universe = []security{
	{"2330", "台積電"},
	{"1101", "台泥"},
	{"6488", "環球晶"},
	{"2603", "長榮"},
	{"3008", "大立光"},
	{"2412", "中華電"},
}

// attentionReasons cycles through plausible flag reasons.
var attentionReasons = []string{
	"成交量異常",
	"週轉率過高",
	"價格波動異常",
	"本益比異常",
}

// dispositionMeasures cycles through plausible measures texts.
var dispositionMeasures = []string{
	"人工管制撮合，約每五分鐘撮合一次",
	"預收款券",
	"人工管制撮合，約每二十分鐘撮合一次",
}

// Generator produces deterministic feed batches anchored on a base date.
type Generator struct {
	rng  *rand.Rand
	base time.Time

	historyDays int
	noise       bool
}

// GeneratorOption applies a configuration option to the Generator.
type GeneratorOption func(*Generator)

// WithSeed fixes the random source so runs are reproducible.
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithBaseDate anchors the generated histories to end at date.
func WithBaseDate(date time.Time) GeneratorOption {
	return func(g *Generator) {
		g.base = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// WithHistoryDays sets how many days of history each batch spans.
func WithHistoryDays(days int) GeneratorOption {
	return func(g *Generator) {
		if days > 0 {
			g.historyDays = days
		}
	}
}

// WithNoise adds malformed rows (short rows, numeric cells) to the
// disposition payload so consumers exercise their skip paths.
func WithNoise(on bool) GeneratorOption {
	return func(g *Generator) {
		g.noise = on
	}
}

// NewGenerator creates a generator with a time-seeded random source.
func NewGenerator(opts ...GeneratorOption) *Generator {
	now := time.Now().UTC()
	g := &Generator{
		rng:         rand.New(rand.NewSource(now.UnixNano())),
		base:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		historyDays: 45,
	}

	// Apply all options
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// attentionRow mirrors the upstream attention record shape.
type attentionRow struct {
	Code   string `json:"Code"`
	Name   string `json:"Name"`
	Date   string `json:"Date"`
	Reason string `json:"TradingInfoForAttention"`
}

// Attention generates the attention batch. Earlier securities in the
// universe are flagged more densely, so the first one or two typically
// carry an unbroken recent run.
func (g *Generator) Attention() []attentionRow {
	rows := make([]attentionRow, 0, len(universe)*g.historyDays/4)
	for i, sec := range universe {
		// Flag probability falls off with position in the universe.
		probability := 0.8 / float64(i+1)
		for d := 0; d < g.historyDays; d++ {
			if g.rng.Float64() > probability {
				continue
			}
			date := g.base.AddDate(0, 0, -d)
			rows = append(rows, attentionRow{
				Code:   sec.code,
				Name:   sec.name,
				Date:   minguoCompact(date),
				Reason: attentionReasons[d%len(attentionReasons)],
			})
		}
	}
	return rows
}

// Disposition generates the positional disposition rows. Roughly one in
// three securities is under disposition.
func (g *Generator) Disposition() [][]any {
	rows := make([][]any, 0, len(universe)/3+2)
	n := 1
	for i, sec := range universe {
		if i%3 != 0 {
			continue
		}
		start := g.base.AddDate(0, 0, -g.rng.Intn(10))
		end := start.AddDate(0, 0, 13)
		announced := start.AddDate(0, 0, -1)

		rows = append(rows, []any{
			n,
			minguoSlash(announced),
			sec.code,
			sec.name,
			"注意累計次數異常",
			"",
			minguoSlash(start) + "～" + minguoSlash(end),
			"第一次處置",
			dispositionMeasures[i%len(dispositionMeasures)],
			"",
		})
		n++
	}

	if g.noise {
		// A truncated row and a row with numeric code/name cells, as seen
		// in the wild.
		rows = append(rows,
			[]any{n, minguoSlash(g.base), "9999"},
			[]any{
				n + 1, minguoSlash(g.base), 2888, 2888, "注意累計次數異常", "",
				minguoSlash(g.base) + "～" + minguoSlash(g.base.AddDate(0, 0, 13)),
				"第一次處置", dispositionMeasures[0], "",
			},
		)
	}
	return rows
}

// minguoCompact renders date as YYYMMDD in the minguo calendar.
func minguoCompact(date time.Time) string {
	return fmt.Sprintf("%03d%02d%02d", date.Year()-1911, int(date.Month()), date.Day())
}

// minguoSlash renders date as YYY/MM/DD in the minguo calendar.
func minguoSlash(date time.Time) string {
	return fmt.Sprintf("%03d/%02d/%02d", date.Year()-1911, int(date.Month()), date.Day())
}
