package crawler

import (
	"deck-crawler/pkg/models"
	"unicode/utf8"
)

// Selectors names every CSS selector the extractor depends on, so markup
// changes on the site are a configuration change.
type Selectors struct {
	// Listing page.
	CommanderContainer string
	CommanderLink      string
	DeckList           string
	DeckItem           string
	DeckLink           string

	// Deck page.
	BoardList string
	CardItem  string
	CardLink  string
}

// TappedOutSelectors matches the tappedout.net deck compendium markup.
func TappedOutSelectors() Selectors {
	return Selectors{
		CommanderContainer: "div.panel-body",
		CommanderLink:      "a.card-link.card-hover",
		DeckList:           "ul",
		DeckItem:           "li",
		DeckLink:           "a",
		BoardList:          "ul.boardlist",
		CardItem:           "li.member",
		CardLink:           "a",
	}
}

// Extractor turns parsed listing and deck pages into typed records.
// Missing markup yields empty results, never errors.
type Extractor struct {
	Selectors Selectors
	// Origin is prepended verbatim to deck hrefs.
	Origin string
}

func NewExtractor(selectors Selectors, origin string) *Extractor {
	return &Extractor{Selectors: selectors, Origin: origin}
}

// CommanderContainers returns the per-commander blocks of a listing page.
func (e *Extractor) CommanderContainers(doc Node) []Node {
	return doc.FindAll(e.Selectors.CommanderContainer)
}

// BoardLists returns the card-list blocks of a deck page.
func (e *Extractor) BoardLists(doc Node) []Node {
	return doc.FindAll(e.Selectors.BoardList)
}

// Commander returns the text of the first commander link, or ok=false if there is none.
func (e *Extractor) Commander(container Node) (string, bool) {
	link, ok := container.Find(e.Selectors.CommanderLink)
	if !ok {
		return "", false
	}
	return link.Text(), true
}

// Decks reads the first deck list in container. Items without a link are skipped;
// a link without href yields a Deck with an empty URL.
func (e *Extractor) Decks(container Node) []models.Deck {
	list, ok := container.Find(e.Selectors.DeckList)
	if !ok {
		return nil
	}

	var decks []models.Deck
	for _, item := range list.FindAll(e.Selectors.DeckItem) {
		link, ok := item.Find(e.Selectors.DeckLink)
		if !ok {
			continue
		}
		deck := models.Deck{Name: link.Text()}
		if href, ok := link.Attr("href"); ok {
			deck.URL = e.Origin + href
		}
		decks = append(decks, deck)
	}
	return decks
}

// Cards reads every member item of a board list. The first link holds the
// quantity with a one-character suffix ("3x"), the second the card name.
// Items with fewer than two links are skipped.
func (e *Extractor) Cards(container Node) []models.CardEntry {
	var cards []models.CardEntry
	for _, item := range container.FindAll(e.Selectors.CardItem) {
		links := item.FindAll(e.Selectors.CardLink)
		if len(links) < 2 {
			continue
		}
		cards = append(cards, models.CardEntry{
			Name:     links[1].Text(),
			Quantity: TrimSuffixChar(links[0].Text()),
		})
	}
	return cards
}

// TrimSuffixChar drops the last character of s. It returns "" for an empty string.
func TrimSuffixChar(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
