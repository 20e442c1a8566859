package models

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordbookAppend(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	cat := &DictionaryResult{
		Word:         "猫",
		Reading:      "ねこ",
		DefinitionCN: "猫；猫咪",
		DefinitionJP: "ネコ科の動物",
		ExampleJP:    "猫がソファで寝ている。",
		ExampleCN:    "猫在沙发上睡觉。",
	}

	wb, inserted := Wordbook{}.Append(cat, now)
	require.True(t, inserted)
	require.Len(t, wb, 1)
	assert.Equal(t, "猫", wb[0].Word)
	assert.Equal(t, "ねこ", wb[0].Reading)
	assert.Equal(t, now.UnixMilli(), wb[0].Timestamp)
	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 10), wb[0].ID)
	assert.Equal(t, now, wb[0].AddedAt().UTC())
}

func TestWordbookAppendNewestFirst(t *testing.T) {
	now := time.Now()

	wb, _ := Wordbook{}.Append(&DictionaryResult{Word: "犬"}, now)
	wb, inserted := wb.Append(&DictionaryResult{Word: "猫"}, now.Add(time.Minute))

	require.True(t, inserted)
	require.Len(t, wb, 2)
	assert.Equal(t, "猫", wb[0].Word)
	assert.Equal(t, "犬", wb[1].Word)
}

func TestWordbookAppendSuppressesDuplicates(t *testing.T) {
	now := time.Now()

	wb, _ := Wordbook{}.Append(&DictionaryResult{Word: "猫", DefinitionCN: "第一次"}, now)
	next, inserted := wb.Append(&DictionaryResult{Word: "猫", DefinitionCN: "第二次"}, now.Add(time.Hour))

	assert.False(t, inserted)
	require.Len(t, next, 1)
	// The original entry survives untouched.
	assert.Equal(t, "第一次", next[0].DefinitionCN)
}

func TestWordbookAppendNilResult(t *testing.T) {
	wb, inserted := Wordbook{}.Append(nil, time.Now())
	assert.False(t, inserted)
	assert.Empty(t, wb)
}

func TestWordbookAppendDoesNotMutateReceiver(t *testing.T) {
	now := time.Now()
	wb, _ := Wordbook{}.Append(&DictionaryResult{Word: "犬"}, now)

	next, inserted := wb.Append(&DictionaryResult{Word: "猫"}, now)
	require.True(t, inserted)
	require.Len(t, wb, 1)
	assert.Equal(t, "犬", wb[0].Word)
	assert.Len(t, next, 2)
}

func TestWordbookContains(t *testing.T) {
	wb, _ := Wordbook{}.Append(&DictionaryResult{Word: "水"}, time.Now())
	assert.True(t, wb.Contains("水"))
	assert.False(t, wb.Contains("火"))
}

func TestWordbookRecent(t *testing.T) {
	now := time.Now()
	var wb Wordbook
	for _, w := range []string{"一", "二", "三", "四", "五"} {
		wb, _ = wb.Append(&DictionaryResult{Word: w}, now)
	}

	recent := wb.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "五", recent[0].Word)
	assert.Equal(t, "三", recent[2].Word)

	assert.Len(t, wb.Recent(10), 5)
	assert.Len(t, wb.Recent(0), 5)
}
