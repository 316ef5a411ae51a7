package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/dataset"
)

type category struct {
	name string
	subs []string
}

// Titles and categories mix Arabic and Persian letter forms
// (ي/ی, ك/ک).
var categories = []category{
	{"پوشاك", []string{"کفش", "کلاه", "شال"}},
	{"لوازم خانگي", []string{"آشپزخانه", "نظافت"}},
	{"كتاب", []string{"رمان", "تاريخ", "کودک"}},
	{"ديجيتال", []string{"موبايل", "لپ تاپ", "جانبی"}},
}

var adjectives = []string{"قرمز", "آبي", "سبز", "مشكي", "سفید", "بزرگ", "كوچک", "ارزان"}

var nouns = map[string][]string{
	"کفش":      {"کفش ورزشي", "كفش راحتي", "صندل"},
	"کلاه":     {"کلاه زمستاني", "کلاه كپ"},
	"شال":      {"شال گردن", "روسري"},
	"آشپزخانه": {"قابلمه", "ماهيتابه", "ليوان"},
	"نظافت":    {"جارو", "دستمال"},
	"رمان":     {"رمان عاشقانه", "رمان پليسي"},
	"تاريخ":    {"تاریخ ایران", "تاريخ جهان"},
	"کودک":     {"کتاب داستان", "کتاب رنگ آميزي"},
	"موبايل":   {"گوشي", "قاب گوشي"},
	"لپ تاپ":   {"لپ تاپ", "كيف لپ تاپ"},
	"جانبی":    {"هدفون", "شارژر", "كابل"},
}

var (
	outFile   = flag.String("out", "", "output file (default stdout)")
	count     = flag.Int("n", 1000, "number of distinct products")
	dupRatio  = flag.Float64("dup", 0.05, "fraction of rows repeated with an existing id")
	seed      = flag.Uint64("seed", 1, "random seed")
	delimiter = flag.String("delimiter", ",", "field delimiter")
)

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// products yields n distinct products followed, at random positions, by
// repeats of earlier ids with a different title. A repeat never precedes
// the row it duplicates, so the first occurrence keeps the original title.
func products(rng *rand.Rand, n int, dupRatio float64) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for i := 1; i <= n; i++ {
			c := categories[rng.IntN(len(categories))]
			sub := c.subs[rng.IntN(len(c.subs))]
			row := []string{strconv.Itoa(i), title(rng, sub), c.name, sub}
			if !yield(row) {
				return
			}

			if rng.Float64() < dupRatio {
				dup := []string{strconv.Itoa(1 + rng.IntN(i)), title(rng, sub), c.name, sub}
				if !yield(dup) {
					return
				}
			}
		}
	}
}

func title(rng *rand.Rand, sub string) string {
	candidates := nouns[sub]
	noun := candidates[rng.IntN(len(candidates))]
	return noun + " " + adjectives[rng.IntN(len(adjectives))]
}

func writeCSV(w io.Writer, comma rune, rows iter.Seq[[]string]) (int, error) {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := []string{core.FieldID, dataset.SourceTitleField, core.FieldCategory, core.FieldSubCategory}
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	written := 0
	for row := range rows {
		if err := cw.Write(row); err != nil {
			return written, err
		}
		written++
	}
	cw.Flush()
	return written, cw.Error()
}

func main() {
	flag.Parse()
	if *count < 1 {
		slog.Error("-n must be at least 1")
		os.Exit(1)
	}
	runes := []rune(*delimiter)
	if len(runes) != 1 {
		slog.Error("-delimiter must be a single character")
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		w = f
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	written, err := writeCSV(w, runes[0], products(rng, *count, *dupRatio))
	if err != nil {
		panic(fmt.Errorf("writing products: %w", err))
	}
	slog.Info("seed data written", "rows", written, "distinct", *count)
}
