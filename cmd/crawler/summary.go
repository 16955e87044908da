package main

import (
	"deck-crawler/internal/crawler/engine"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

func renderSummary(w io.Writer, summary engine.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Commander", "Decks", "Cards", "Incomplete"})

	decks, cards, incomplete := 0, 0, 0
	for _, c := range summary.Commanders {
		t.AppendRow(table.Row{c.Name, c.Decks, c.Cards, c.Placeholders})
		decks += c.Decks
		cards += c.Cards
		incomplete += c.Placeholders
	}
	t.AppendFooter(table.Row{"Total", decks, cards, incomplete})

	t.SetStyle(table.StyleRounded)
	t.Render()
}
