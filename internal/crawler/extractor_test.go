package crawler

import (
	"deck-crawler/pkg/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `
	<!DOCTYPE html>
	<html>
	<head><title>Pauper EDH Deck Compendium</title></head>
	<body>
		<div class="panel-body">
			<a class="card-link card-hover" href="/mtg-card/kenrith">
				Kenrith, the Returned King
			</a>
			<ul>
				<li><a href="/mtg-decks/foo">Foo Deck</a></li>
				<li>No link here</li>
				<li><a> <span>Hrefless</span> Deck </a></li>
			</ul>
			<ul>
				<li><a href="/mtg-decks/ignored">Second list is ignored</a></li>
			</ul>
		</div>
		<div class="panel-body">
			<p>This panel has no commander link.</p>
		</div>
		<div class="panel-body">
			<a class="card-link card-hover">Ghave, Guru of Spores</a>
		</div>
	</body>
	</html>
`

const deckHTML = `
	<html>
	<body>
		<ul class="boardlist">
			<li class="member"><a class="qty">3x</a><a class="card">Lightning Bolt</a></li>
			<li class="member"><a class="qty">1x</a></li>
			<li class="other"><a>9x</a><a>Not a member</a></li>
			<li class="member"><a class="qty"> 1 <span>x</span></a><a>Sol Ring</a></li>
		</ul>
		<ul class="boardlist">
			<li class="member"><a>x</a><a>Empty Quantity</a></li>
		</ul>
	</body>
	</html>
`

func mustParse(t *testing.T, content string) Node {
	t.Helper()
	doc, err := ParseDocument(content)
	require.NoError(t, err)
	return doc
}

func TestExtractor_Commanders(t *testing.T) {
	e := NewExtractor(TappedOutSelectors(), "https://tappedout.net")
	containers := e.CommanderContainers(mustParse(t, listingHTML))
	require.Len(t, containers, 3)

	var names []string
	for _, c := range containers {
		if name, ok := e.Commander(c); ok {
			names = append(names, name)
		}
	}

	// Document order, panel without a link contributes nothing.
	assert.Equal(t, []string{"Kenrith, the Returned King", "Ghave, Guru of Spores"}, names)
}

func TestExtractor_Decks(t *testing.T) {
	e := NewExtractor(TappedOutSelectors(), "https://tappedout.net")
	containers := e.CommanderContainers(mustParse(t, listingHTML))

	decks := e.Decks(containers[0])
	assert.Equal(t, []models.Deck{
		{Name: "Foo Deck", URL: "https://tappedout.net/mtg-decks/foo"},
		{Name: "HreflessDeck", URL: ""},
	}, decks)

	assert.Empty(t, e.Decks(containers[2]), "no list means no decks")
}

func TestExtractor_Cards(t *testing.T) {
	e := NewExtractor(TappedOutSelectors(), "https://tappedout.net")
	boards := e.BoardLists(mustParse(t, deckHTML))
	require.Len(t, boards, 2)

	assert.Equal(t, []models.CardEntry{
		{Name: "Lightning Bolt", Quantity: "3"},
		{Name: "Sol Ring", Quantity: "1"},
	}, e.Cards(boards[0]))

	assert.Equal(t, []models.CardEntry{
		{Name: "Empty Quantity", Quantity: ""},
	}, e.Cards(boards[1]))
}

func TestExtractor_CustomSelectors(t *testing.T) {
	selectors := TappedOutSelectors()
	selectors.CommanderContainer = "section.commander"
	selectors.CommanderLink = "h2 a"

	e := NewExtractor(selectors, "https://example.com")
	doc := mustParse(t, `<section class="commander"><h2><a>Atraxa</a></h2><ul><li><a href="/d/1">One</a></li></ul></section>`)

	containers := e.CommanderContainers(doc)
	require.Len(t, containers, 1)

	name, ok := e.Commander(containers[0])
	require.True(t, ok)
	assert.Equal(t, "Atraxa", name)
	assert.Equal(t, []models.Deck{{Name: "One", URL: "https://example.com/d/1"}}, e.Decks(containers[0]))
}

func TestExtractor_EmptyDocument(t *testing.T) {
	e := NewExtractor(TappedOutSelectors(), "https://tappedout.net")
	doc := mustParse(t, "")

	assert.Empty(t, e.CommanderContainers(doc))
	assert.Empty(t, e.BoardLists(doc))
	_, ok := e.Commander(doc)
	assert.False(t, ok)
	assert.Empty(t, e.Decks(doc))
	assert.Empty(t, e.Cards(doc))
}

func TestTrimSuffixChar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3x", "3"},
		{"12x", "12"},
		{"x", ""},
		{"", ""},
		{"4×", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimSuffixChar(tt.in))
		})
	}
}
