package engine

import (
	"context"
	"deck-crawler/internal/logging"
	"deck-crawler/pkg/models"
	"fmt"
	"iter"

	"github.com/rs/zerolog"
)

// Sink defines how to persist rows.
type Sink interface {
	Save(batch []models.Row) error
}

// Config holds engine settings.
type Config struct {
	BatchSize int
}

// CommanderSummary counts what one commander contributed to a run.
type CommanderSummary struct {
	Name         string
	Decks        int
	Cards        int
	Placeholders int
}

// Summary describes a finished run, commanders in first-seen order.
type Summary struct {
	Rows       int
	Commanders []CommanderSummary
}

// Engine drains a row sequence into a Sink in batches.
type Engine struct {
	config Config
	sink   Sink
	logger zerolog.Logger
}

func NewEngine(cfg Config, sink Sink) *Engine {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &Engine{
		config: cfg,
		sink:   sink,
		logger: logging.NewLogger("engine"),
	}
}

// Run pulls every row from rows, saving them in batches. It stops at the
// first error in the sequence or from the sink; rows already saved stay saved.
func (engine *Engine) Run(ctx context.Context, rows iter.Seq2[models.Row, error]) (Summary, error) {
	var summary Summary
	index := make(map[string]int)
	decks := make(map[[2]string]bool)
	buffer := make([]models.Row, 0, engine.config.BatchSize)

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := engine.sink.Save(buffer); err != nil {
			return fmt.Errorf("save batch: %w", err)
		}
		engine.logger.Debug().Int("rows", len(buffer)).Msg("Saved batch")
		buffer = buffer[:0]
		return nil
	}

	for row, err := range rows {
		if err != nil {
			return summary, err
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Rows++
		i, seen := index[row.Commander]
		if !seen {
			i = len(summary.Commanders)
			index[row.Commander] = i
			summary.Commanders = append(summary.Commanders, CommanderSummary{Name: row.Commander})
		}
		stats := &summary.Commanders[i]
		if row.DeckName != "" && !decks[[2]string{row.Commander, row.DeckName}] {
			decks[[2]string{row.Commander, row.DeckName}] = true
			stats.Decks++
		}
		if row.Complete() {
			stats.Cards++
		} else {
			stats.Placeholders++
		}

		buffer = append(buffer, row)
		if len(buffer) >= engine.config.BatchSize {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}

	if err := flush(); err != nil {
		return summary, err
	}
	return summary, nil
}
