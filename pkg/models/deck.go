package models

// Deck belongs to one Commander. An empty URL means the anchor had no href.
type Deck struct {
	Name string
	URL  string
}

type CardEntry struct {
	Name     string
	Quantity string
}

// Row is the flattened output unit. Commander is always set; the other
// fields are empty when their source data was missing or the fetch failed.
type Row struct {
	Commander string
	DeckName  string
	Card      string
	Quantity  string
}

// Complete reports whether every field carries a value.
func (r Row) Complete() bool {
	return r.Commander != "" && r.DeckName != "" && r.Card != "" && r.Quantity != ""
}

// Record returns the row in output column order.
func (r Row) Record() []string {
	return []string{r.Commander, r.DeckName, r.Card, r.Quantity}
}

// Header is the fixed column header of the output artifact.
var Header = []string{"Commander", "Deck Name", "Card", "Number of Cards"}
