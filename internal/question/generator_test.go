package question_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocaquiz/vocaquiz/internal/domain"
	"github.com/vocaquiz/vocaquiz/internal/question"
	"github.com/vocaquiz/vocaquiz/internal/vocab"
)

func makeGenerator() *question.Generator {
	return question.NewGenerator(question.Config{
		Rand: rand.New(rand.NewSource(42)),
	})
}

func wordTable() *vocab.Table {
	return vocab.NewTable([]vocab.Entry{
		{Chinese: "你好", Pinyin: "nǐ hǎo", English: "hello", POS: "interjection", SemanticType: "greeting"},
		{Chinese: "再见", Pinyin: "zài jiàn", English: "goodbye", POS: "interjection", SemanticType: "greeting"},
		{Chinese: "谢谢", Pinyin: "xiè xie", English: "thanks", POS: "verb", SemanticType: "politeness"},
		{Chinese: "苹果", Pinyin: "píng guǒ", English: "apple", POS: "noun", SemanticType: "food"},
		{Chinese: "米饭", Pinyin: "mǐ fàn", English: "rice", POS: "noun", SemanticType: "food"},
		{Chinese: "面条", Pinyin: "miàn tiáo", English: "noodles", POS: "noun", SemanticType: "food"},
		{Chinese: "水", Pinyin: "shuǐ", English: "water", POS: "noun", SemanticType: "drink"},
		{Chinese: "茶", Pinyin: "chá", English: "tea", POS: "noun", SemanticType: "drink"},
	})
}

// The supplier contract: every generated question has exactly four options,
// one of which is the correct answer.
func TestGenerate_Contract(t *testing.T) {
	modes := []question.Mode{
		question.ModeChineseToEnglish,
		question.ModeEnglishToChinese,
		question.ModePinyinToChinese,
	}

	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			questions := makeGenerator().Generate(wordTable(), mode, 5)
			require.Len(t, questions, 5)

			for _, q := range questions {
				require.Len(t, q.Options, domain.OptionsPerQuestion)
				assert.Contains(t, q.Options, q.CorrectAnswer)
				assert.NotEmpty(t, q.PromptText)
			}
		})
	}
}

func TestGenerate_EmptyTable(t *testing.T) {
	questions := makeGenerator().Generate(vocab.NewTable(nil), question.ModeChineseToEnglish, 5)
	assert.Empty(t, questions)
}

func TestGenerate_NoRepeatsUntilExhausted(t *testing.T) {
	table := wordTable()
	questions := makeGenerator().Generate(table, question.ModeChineseToEnglish, table.Len())
	require.Len(t, questions, table.Len())

	seen := make(map[string]bool)
	for _, q := range questions {
		assert.False(t, seen[q.CorrectAnswer], "word %q repeated before the table was exhausted", q.CorrectAnswer)
		seen[q.CorrectAnswer] = true
	}
}

func TestGenerate_RepeatsAfterExhaustion(t *testing.T) {
	table := wordTable()
	questions := makeGenerator().Generate(table, question.ModeChineseToEnglish, table.Len()+3)
	assert.Len(t, questions, table.Len()+3)
}

func TestGenerate_PromptPhrasing(t *testing.T) {
	table := vocab.NewTable([]vocab.Entry{
		{Chinese: "你好", Pinyin: "nǐ hǎo", English: "hello", POS: "interjection", SemanticType: "greeting"},
		{Chinese: "再见", Pinyin: "zài jiàn", English: "goodbye", POS: "interjection", SemanticType: "greeting"},
	})

	tests := map[question.Mode]struct {
		prompts  []string
		corrects []string
	}{
		question.ModeChineseToEnglish: {
			prompts:  []string{"What is the word in English for: 你好 (nǐ hǎo)", "What is the word in English for: 再见 (zài jiàn)"},
			corrects: []string{"hello", "goodbye"},
		},
		question.ModeEnglishToChinese: {
			prompts:  []string{"What is the word in Chinese for: hello", "What is the word in Chinese for: goodbye"},
			corrects: []string{"你好", "再见"},
		},
		question.ModePinyinToChinese: {
			prompts:  []string{"What is the word in Chinese for the pinyin: nǐ hǎo", "What is the word in Chinese for the pinyin: zài jiàn"},
			corrects: []string{"你好", "再见"},
		},
	}

	for mode, tt := range tests {
		t.Run(string(mode), func(t *testing.T) {
			questions := makeGenerator().Generate(table, mode, 2)
			require.Len(t, questions, 2)
			for _, q := range questions {
				assert.Contains(t, tt.prompts, q.PromptText)
				assert.Contains(t, tt.corrects, q.CorrectAnswer)
			}
		})
	}
}

// Distractors should come from the most confusable words available: same
// part of speech and semantic type when there are enough of them.
func TestGenerate_DistractorPreference(t *testing.T) {
	table := vocab.NewTable([]vocab.Entry{
		{Chinese: "苹果", Pinyin: "píng guǒ", English: "apple", POS: "noun", SemanticType: "food"},
		{Chinese: "米饭", Pinyin: "mǐ fàn", English: "rice", POS: "noun", SemanticType: "food"},
		{Chinese: "面条", Pinyin: "miàn tiáo", English: "noodles", POS: "noun", SemanticType: "food"},
		{Chinese: "饺子", Pinyin: "jiǎo zi", English: "dumpling", POS: "noun", SemanticType: "food"},
		{Chinese: "跑", Pinyin: "pǎo", English: "run", POS: "verb", SemanticType: "motion"},
		{Chinese: "跳", Pinyin: "tiào", English: "jump", POS: "verb", SemanticType: "motion"},
	})

	foodAnswers := map[string]bool{"apple": true, "rice": true, "noodles": true, "dumpling": true}

	// Enough food nouns exist, so a food-noun target must draw all three
	// distractors from food nouns too.
	for i := 0; i < 20; i++ {
		questions := makeGenerator().Generate(table, question.ModeChineseToEnglish, table.Len())
		for _, q := range questions {
			if !foodAnswers[q.CorrectAnswer] {
				continue
			}
			for _, opt := range q.Options {
				assert.True(t, foodAnswers[opt], "distractor %q for food target %q should be a food noun", opt, q.CorrectAnswer)
			}
		}
	}
}

// A tiny table cannot produce three distinct wrong answers; the generator
// still always fills four option slots.
func TestGenerate_TinyTable(t *testing.T) {
	table := vocab.NewTable([]vocab.Entry{
		{Chinese: "你好", Pinyin: "nǐ hǎo", English: "hello", POS: "interjection", SemanticType: "greeting"},
		{Chinese: "再见", Pinyin: "zài jiàn", English: "goodbye", POS: "interjection", SemanticType: "greeting"},
	})

	questions := makeGenerator().Generate(table, question.ModeChineseToEnglish, 2)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.Len(t, q.Options, domain.OptionsPerQuestion)
		assert.Contains(t, q.Options, q.CorrectAnswer)
	}
}
