package normalize

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersian_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "already canonical", input: "کتاب فارسی", want: "کتاب فارسی"},
		{name: "arabic kaf and yeh", input: "كتاب عربي", want: "کتاب عربی"},
		{name: "alef maksura", input: "موسى", want: "موسی"},
		{name: "arabic-indic digits", input: "گوشی ٢٠٢٤", want: "گوشی ۲۰۲۴"},
		{name: "persian digits untouched", input: "۱۲۳", want: "۱۲۳"},
		{name: "diacritics removed", input: "کِتابٌ", want: "کتاب"},
		{name: "tatweel removed", input: "کـــتاب", want: "کتاب"},
		{name: "whitespace collapsed", input: "  گوشی   موبایل \t سامسونگ ", want: "گوشی موبایل سامسونگ"},
		{name: "zero width non-joiner kept", input: "می‌خواهم", want: "می‌خواهم"},
		{name: "presentation forms folded", input: "ﻫﻨﺪ", want: "هند"},
		{name: "full width latin folded", input: "ＡＢＣ １２３", want: "ABC 123"},
		{name: "latin untouched", input: "Samsung Galaxy A54", want: "Samsung Galaxy A54"},
	}

	n := NewPersian()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestPersian_Options(t *testing.T) {
	t.Run("keep diacritics", func(t *testing.T) {
		n := NewPersian(WithKeepDiacritics())
		assert.Equal(t, "کِتاب", n.Normalize("كِتاب"))
	})

	t.Run("without digit unification", func(t *testing.T) {
		n := NewPersian(WithoutDigitUnification())
		assert.Equal(t, "٢٠", n.Normalize("٢٠"))
	})
}

func TestPersian_Idempotent(t *testing.T) {
	n := NewPersian()
	inputs := []string{"كتاب  عربي ٣", "کِتابٌ", "ＡＢＣ", "موسى"}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "normalizing twice should be stable for %q", in)
	}
}

func TestPersian_Concurrent(t *testing.T) {
	n := NewPersian()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "کتاب عربی", n.Normalize("كتاب عربي"))
			}
		}()
	}
	wg.Wait()
}

func TestFunc(t *testing.T) {
	var n Normalizer = Func(func(s string) string { return s + "!" })
	assert.Equal(t, "hi!", n.Normalize("hi"))
	assert.Equal(t, "as is", Identity.Normalize("as is"))
}
