package diff_collector

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

const (
	DefaultBatchSize = 80
	DefaultMaxChars  = 20000
)

// DiffSource produces the zero-context diff of the index against HEAD for a subset of paths.
type DiffSource interface {
	CachedDiff(ctx context.Context, paths []string) (string, error)
}

// Messages are the fixed texts the collector inserts into its output.
type Messages struct {
	TruncationMarker  string
	NoDiffPlaceholder string
}

var (
	SwedishMessages = Messages{
		TruncationMarker:  "\n…[diff truncerad]",
		NoDiffPlaceholder: "Inga diff-rader (kan vara binära filer eller endast metadata).",
	}
	EnglishMessages = Messages{
		TruncationMarker:  "\n…[diff truncated]",
		NoDiffPlaceholder: "No diff lines (binary files or metadata only).",
	}
)

// DiffCollector turns a list of staged paths into one bounded diff text.
type DiffCollector struct {
	source    DiffSource
	batchSize int
	maxChars  int
	messages  Messages
	logger    zerolog.Logger
}

type Option func(*DiffCollector)

// WithMaxChars sets the character budget. Values below 1 keep the default.
func WithMaxChars(maxChars int) Option {
	return func(c *DiffCollector) {
		if maxChars > 0 {
			c.maxChars = maxChars
		}
	}
}

func WithBatchSize(batchSize int) Option {
	return func(c *DiffCollector) {
		if batchSize > 0 {
			c.batchSize = batchSize
		}
	}
}

func WithMessages(messages Messages) Option {
	return func(c *DiffCollector) {
		c.messages = messages
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *DiffCollector) {
		c.logger = logger
	}
}

func NewDiffCollector(source DiffSource, opts ...Option) *DiffCollector {
	collector := &DiffCollector{
		source:    source,
		batchSize: DefaultBatchSize,
		maxChars:  DefaultMaxChars,
		messages:  SwedishMessages,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(collector)
	}
	return collector
}

func (c *DiffCollector) MaxChars() int {
	return c.maxChars
}

// Collect requests the diff batch by batch and stops as soon as the joined
// output exceeds the budget. The result is cut to the budget plus the
// truncation marker. A cut may land inside a hunk or a multi-byte character.
func (c *DiffCollector) Collect(ctx context.Context, files []string) (string, error) {
	var chunks []string
	joinedLen := 0
	batches := 0

	for start := 0; start < len(files); start += c.batchSize {
		end := min(start+c.batchSize, len(files))

		out, err := c.source.CachedDiff(ctx, files[start:end])
		if err != nil {
			return "", err
		}
		batches++

		if len(chunks) > 0 {
			joinedLen++ // "\n" separator
		}
		chunks = append(chunks, out)
		joinedLen += len(out)

		if joinedLen > c.maxChars {
			c.logger.Debug().
				Int("batches", batches).
				Int("files_seen", end).
				Int("files_total", len(files)).
				Msg("diff budget exceeded, skipping remaining batches")
			break
		}
	}

	diff := strings.Join(chunks, "\n")
	truncated := false
	if len(diff) > c.maxChars {
		diff = diff[:c.maxChars] + c.messages.TruncationMarker
		truncated = true
	}
	// Empty batches still join to separators. The placeholder is returned whole
	// even when it is longer than the budget.
	if strings.TrimSpace(diff) == "" {
		diff = c.messages.NoDiffPlaceholder
	}

	c.logger.Debug().
		Int("batches", batches).
		Int("chars", len(diff)).
		Bool("truncated", truncated).
		Msg("collected staged diff")

	return diff, nil
}
