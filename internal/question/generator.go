// Package question builds multiple-choice quiz questions from a vocabulary
// table. The session engine treats it as an opaque supplier: it only relies
// on every question's correct answer being one of its own options.
package question

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/domain"
	"github.com/vocaquiz/vocaquiz/internal/vocab"
)

// Mode selects the prompt/answer direction.
type Mode string

const (
	ModeChineseToEnglish Mode = "chinese_to_english"
	ModeEnglishToChinese Mode = "english_to_chinese"
	ModePinyinToChinese  Mode = "pinyin_to_chinese"
)

type Config struct {
	Rand *rand.Rand
}

type Generator struct {
	rng *rand.Rand
}

func NewGenerator(c Config) *Generator {
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Generator{rng: c.Rand}
}

// Generate produces up to count questions. Words are not repeated until the
// whole table has been used once; an empty table yields no questions.
func (g *Generator) Generate(t *vocab.Table, mode Mode, count int) []domain.Question {
	entries := t.Entries()
	questions := make([]domain.Question, 0, count)
	if len(entries) == 0 || count <= 0 {
		return questions
	}

	used := make(map[string]bool, len(entries))
	for len(questions) < count {
		available := make([]vocab.Entry, 0, len(entries))
		for _, e := range entries {
			if !used[e.Chinese] {
				available = append(available, e)
			}
		}
		if len(available) == 0 {
			// All words used; allow repeats.
			used = make(map[string]bool, len(entries))
			available = entries
		}

		target := available[g.rng.Intn(len(available))]
		used[target.Chinese] = true

		prompt, correct := promptFor(mode, target)
		options := append([]string{correct}, g.distractors(entries, target, correct, mode)...)
		g.rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		questions = append(questions, domain.Question{
			PromptText:    prompt,
			Options:       options,
			CorrectAnswer: correct,
		})
	}

	return questions
}

func promptFor(mode Mode, e vocab.Entry) (prompt, correct string) {
	switch mode {
	case ModeChineseToEnglish:
		return fmt.Sprintf("What is the word in English for: %s (%s)", e.Chinese, e.Pinyin), e.English
	case ModeEnglishToChinese:
		return fmt.Sprintf("What is the word in Chinese for: %s", e.English), e.Chinese
	case ModePinyinToChinese:
		return fmt.Sprintf("What is the word in Chinese for the pinyin: %s", e.Pinyin), e.Chinese
	default:
		return e.Chinese, e.English
	}
}

func answerOf(mode Mode, e vocab.Entry) string {
	if mode == ModeChineseToEnglish {
		return e.English
	}
	return e.Chinese
}

const distractorCount = domain.OptionsPerQuestion - 1

// distractors picks three wrong options, preferring words that are most
// easily confused with the target: same part of speech and semantic type
// first, then same part of speech, then same semantic type, then anything.
func (g *Generator) distractors(entries []vocab.Entry, target vocab.Entry, correct string, mode Mode) []string {
	match := func(preds ...func(vocab.Entry) bool) []string {
		seen := make(map[string]bool)
		var values []string
		for _, e := range entries {
			v := answerOf(mode, e)
			if v == correct || seen[v] {
				continue
			}
			ok := true
			for _, pred := range preds {
				if !pred(e) {
					ok = false
					break
				}
			}
			if ok {
				seen[v] = true
				values = append(values, v)
			}
		}
		return values
	}

	samePOS := func(e vocab.Entry) bool { return e.POS == target.POS }
	sameType := func(e vocab.Entry) bool { return e.SemanticType == target.SemanticType }

	for _, candidates := range [][]string{
		match(samePOS, sameType),
		match(samePOS),
		match(sameType),
		match(),
	} {
		if len(candidates) >= distractorCount {
			return g.sample(candidates, distractorCount)
		}
	}

	// Fewer than three distinct wrong answers exist: fill the remaining
	// slots with repeats, falling back to the correct answer for a table
	// with a single value.
	picked := g.sample(match(), distractorCount)
	if len(picked) == 0 {
		picked = append(picked, correct)
	}
	for len(picked) < distractorCount {
		picked = append(picked, picked[g.rng.Intn(len(picked))])
	}
	return picked
}

// sample returns up to n values drawn without replacement.
func (g *Generator) sample(values []string, n int) []string {
	shuffled := append([]string(nil), values...)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}
