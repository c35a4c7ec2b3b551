package study

import (
	"context"
	"errors"
	"testing"

	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rating struct {
	word     string
	language string
	rating   tolk.Rating
}

type fakeService struct {
	err   error
	calls []rating
}

func (f *fakeService) UpdateRating(_ context.Context, word, language string, r tolk.Rating) error {
	f.calls = append(f.calls, rating{word, language, r})
	return f.err
}

func cards() []tolk.DueCard {
	return []tolk.DueCard{
		{Word: "hund", Language: "SV"},
		{Word: "Katze", Language: "de"},
		{Word: "katt", Language: "sv"},
	}
}

func rate(t *testing.T, c *Cursor, r tolk.Rating) RatedMsg {
	t.Helper()
	cmd := c.Rate(r)
	require.NotNil(t, cmd)
	msg, ok := cmd().(RatedMsg)
	require.True(t, ok)
	c.Apply(msg)
	return msg
}

func TestCursor_WalksCards(t *testing.T) {
	svc := &fakeService{}
	c := NewCursor(svc, zerolog.Nop())
	c.Load(cards())

	card, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "hund", card.Word)

	cur, total := c.Position()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 3, total)

	c.RevealAnswer()
	c.RevealAnswer()
	assert.True(t, c.Revealed())

	rate(t, c, tolk.Good)
	assert.False(t, c.Revealed())
	card, _ = c.Current()
	assert.Equal(t, "Katze", card.Word)
	assert.Equal(t, []rating{{"hund", "sv", tolk.Good}}, svc.calls)

	rate(t, c, tolk.Easy)
	rate(t, c, tolk.Again)
	assert.True(t, c.Done())

	_, ok = c.Current()
	assert.False(t, ok)
	assert.Nil(t, c.Rate(tolk.Good), "no current card")
	cur, total = c.Position()
	assert.Equal(t, 3, cur)
	assert.Equal(t, 3, total)
}

func TestCursor_LanguageFilter(t *testing.T) {
	c := NewCursor(&fakeService{}, zerolog.Nop())
	c.Load(cards())
	rate(t, c, tolk.Good)
	c.RevealAnswer()

	c.SetLanguageFilter("sv")

	assert.Equal(t, "sv", c.LanguageFilter())
	assert.False(t, c.Revealed())
	card, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "hund", card.Word, "filter restarts the session")
	_, total := c.Position()
	assert.Equal(t, 2, total)

	rate(t, c, tolk.Good)
	card, _ = c.Current()
	assert.Equal(t, "katt", card.Word)

	c.SetLanguageFilter("fr")
	assert.True(t, c.Done())

	c.SetLanguageFilter("")
	_, total = c.Position()
	assert.Equal(t, 3, total)
}

func TestCursor_Languages(t *testing.T) {
	c := NewCursor(&fakeService{}, zerolog.Nop())
	c.Load(cards())
	assert.Equal(t, []string{"sv", "de"}, c.Languages())
}

func TestCursor_FailedRatingKeepsPosition(t *testing.T) {
	svc := &fakeService{err: errors.New("boom")}
	c := NewCursor(svc, zerolog.Nop())
	c.Load(cards())
	c.RevealAnswer()

	rate(t, c, tolk.Hard)

	card, _ := c.Current()
	assert.Equal(t, "hund", card.Word)
	assert.True(t, c.Revealed())
	assert.False(t, c.Pending())
	assert.NotNil(t, c.Rate(tolk.Hard), "user can retry")
}

func TestCursor_RateGuards(t *testing.T) {
	c := NewCursor(&fakeService{}, zerolog.Nop())
	assert.Nil(t, c.Rate(tolk.Good), "empty session")

	c.Load(cards())
	assert.Nil(t, c.Rate(tolk.Rating(9)))

	require.NotNil(t, c.Rate(tolk.Good))
	assert.True(t, c.Pending())
	assert.Nil(t, c.Rate(tolk.Good), "rating already in flight")
}

func TestCursor_StaleRatingIgnored(t *testing.T) {
	c := NewCursor(&fakeService{}, zerolog.Nop())
	c.Load(cards())

	cmd := c.Rate(tolk.Good)
	require.NotNil(t, cmd)
	c.SetLanguageFilter("de")

	c.Apply(cmd().(RatedMsg))

	card, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "Katze", card.Word)
	assert.False(t, c.Pending())
}
