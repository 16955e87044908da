package crawler

import (
	"context"
	"deck-crawler/internal/logging"
	"deck-crawler/pkg/models"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/rs/zerolog"
)

// ErrListingUnavailable ends a run when the top-level listing cannot be fetched.
var ErrListingUnavailable = errors.New("listing page unavailable")

// PageFetcher returns a page body, or ok=false when the page could not be fetched.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, bool)
}

// PageExtractor reads commander, deck and card records out of parsed pages.
type PageExtractor interface {
	CommanderContainers(doc Node) []Node
	BoardLists(doc Node) []Node
	Commander(container Node) (string, bool)
	Decks(container Node) []models.Deck
	Cards(container Node) []models.CardEntry
}

// Traversal walks listing -> commander -> deck -> card and yields flattened rows.
type Traversal struct {
	fetcher   PageFetcher
	extractor PageExtractor
	domains   *DomainManager
	logger    zerolog.Logger

	// OnProgress, when set, is called after each commander whose decks were all visited.
	OnProgress func(processed, total int)
}

func NewTraversal(fetcher PageFetcher, extractor PageExtractor, domains *DomainManager) *Traversal {
	return &Traversal{
		fetcher:   fetcher,
		extractor: extractor,
		domains:   domains,
		logger:    logging.NewLogger("traversal"),
	}
}

// Rows returns a lazy sequence over the rows of one crawl of listingURL.
// Pages are fetched only as rows are pulled; every range over the sequence
// starts a fresh crawl. A non-nil error is always the final element.
func (t *Traversal) Rows(ctx context.Context, listingURL string) iter.Seq2[models.Row, error] {
	return func(yield func(models.Row, error) bool) {
		// 1. Top-level fetch
		content, ok := t.fetcher.Fetch(ctx, listingURL)
		if !ok {
			if err := ctx.Err(); err != nil {
				yield(models.Row{}, err)
				return
			}
			yield(models.Row{}, fmt.Errorf("%w: %s", ErrListingUnavailable, listingURL))
			return
		}
		doc, err := ParseDocument(content)
		if err != nil {
			yield(models.Row{}, fmt.Errorf("%w: %v", ErrListingUnavailable, err))
			return
		}

		// 2. Commander level
		containers := t.extractor.CommanderContainers(doc)
		total := len(containers)
		processed := 0
		commandersProcessed.Set(0)
		t.logger.Info().Int("containers", total).Str("url", listingURL).Msg("Listing fetched")

		for _, container := range containers {
			commander, ok := t.extractor.Commander(container)
			if !ok || commander == "" {
				continue
			}

			decks := t.extractor.Decks(container)
			if len(decks) == 0 {
				if !emit(yield, models.Row{Commander: commander}) {
					return
				}
				continue
			}

			// 3. Deck level
			for _, deck := range decks {
				if err := t.visitDeck(ctx, commander, deck, yield); err != nil {
					if !errors.Is(err, errStopped) {
						yield(models.Row{}, err)
					}
					return
				}
			}

			// 5. Progress
			processed++
			commandersProcessed.Set(float64(processed))
			t.logger.Info().Msgf("Processed %d commanders out of %d commanders.", processed, total)
			if t.OnProgress != nil {
				t.OnProgress(processed, total)
			}
		}
	}
}

// errStopped signals that the consumer stopped pulling rows.
var errStopped = errors.New("consumer stopped")

func (t *Traversal) visitDeck(ctx context.Context, commander string, deck models.Deck, yield func(models.Row, error) bool) error {
	placeholder := models.Row{Commander: commander, DeckName: deck.Name}

	if deck.URL == "" {
		if !emit(yield, placeholder) {
			return errStopped
		}
		return nil
	}

	if err := t.domains.Wait(ctx, deck.URL); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// An unparseable URL only loses its rate limiting; the fetch decides its fate.
		t.logger.Warn().Err(err).Str("deck", deck.Name).Msg("Could not rate limit deck URL")
	}

	content, ok := t.fetcher.Fetch(ctx, deck.URL)
	if !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !emit(yield, placeholder) {
			return errStopped
		}
	} else if !t.emitCards(content, placeholder, yield) {
		return errStopped
	}

	// 4. Rate limiting, applied after every fetched deck.
	return t.domains.Pause(ctx)
}

func (t *Traversal) emitCards(content string, placeholder models.Row, yield func(models.Row, error) bool) bool {
	doc, err := ParseDocument(content)
	if err != nil {
		t.logger.Warn().Err(err).Str("deck", placeholder.DeckName).Msg("Could not parse deck page")
		return emit(yield, placeholder)
	}

	cards := 0
	for _, board := range t.extractor.BoardLists(doc) {
		for _, card := range t.extractor.Cards(board) {
			cards++
			row := placeholder
			row.Card = card.Name
			row.Quantity = card.Quantity
			if !emit(yield, row) {
				return false
			}
		}
	}
	if cards == 0 {
		t.logger.Debug().Str("deck", placeholder.DeckName).Msg("Deck page has no cards")
		return emit(yield, placeholder)
	}
	return true
}

func emit(yield func(models.Row, error) bool, row models.Row) bool {
	rowsEmittedTotal.WithLabelValues(strconv.FormatBool(row.Complete())).Inc()
	return yield(row, nil)
}
