package vocab_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocaquiz/vocaquiz/internal/vocab"
)

const sampleCSV = `chinese,pinyin,english,example_sentence,pos,semantic_type
你好,nǐ hǎo,hello,你好！,interjection,greeting
再见,zài jiàn,goodbye,再见！,interjection,greeting
谢谢,xiè xie,thanks,谢谢你,verb,politeness
`

func TestReadTable(t *testing.T) {
	table, err := vocab.ReadTable(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	first := table.Entries()[0]
	assert.Equal(t, "你好", first.Chinese)
	assert.Equal(t, "nǐ hǎo", first.Pinyin)
	assert.Equal(t, "hello", first.English)
	assert.Equal(t, "interjection", first.POS)
	assert.Equal(t, "greeting", first.SemanticType)
}

func TestReadTable_HeaderCaseInsensitive(t *testing.T) {
	csv := "Chinese,Pinyin,English,Example_Sentence,POS,Semantic_Type\n你好,nǐ hǎo,hello,你好！,interjection,greeting\n"

	table, err := vocab.ReadTable(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestReadTable_MissingColumns(t *testing.T) {
	csv := "chinese,english\n你好,hello\n"

	_, err := vocab.ReadTable(strings.NewReader(csv))
	require.Error(t, err)

	var missing *vocab.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"pinyin", "example_sentence", "pos", "semantic_type"}, missing.Columns)
}

func TestNewTable_DropsIncompleteRows(t *testing.T) {
	table := vocab.NewTable([]vocab.Entry{
		{Chinese: "你好", English: "hello"},
		{Chinese: "", English: "orphan"},
		{Chinese: "孤儿", English: ""},
	})

	assert.Equal(t, 1, table.Len())
}
