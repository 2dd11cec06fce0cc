package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Sequencer hands out the per-type, per-year sequence behind document numbers.
// Next is called inside the store transaction that inserts the document.
type Sequencer interface {
	Next(ctx context.Context, repo Repository, docType DocumentType, year int) (int, error)
	Peek(ctx context.Context, repo Repository, docType DocumentType, year int) (int, error)
}

// FormatDocumentNumber renders {PREFIX}-{year}-{seq} with the sequence
// zero padded to four digits.
func FormatDocumentNumber(docType DocumentType, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", docType.Prefix(), year, seq)
}

// CountSequencer derives the sequence from the number of stored documents of
// the type. When a delete has left count + 1 in use, it continues one past the
// highest sequence issued for the year instead.
type CountSequencer struct{}

// Next returns count + 1 unless that number is taken.
func (CountSequencer) Next(ctx context.Context, repo Repository, docType DocumentType, year int) (int, error) {
	return nextFreeSequence(ctx, repo, docType, year)
}

// Peek is identical to Next because counting reserves nothing.
func (s CountSequencer) Peek(ctx context.Context, repo Repository, docType DocumentType, year int) (int, error) {
	return s.Next(ctx, repo, docType, year)
}

func nextFreeSequence(ctx context.Context, repo Repository, docType DocumentType, year int) (int, error) {
	docs, err := repo.List(ctx, ListFilter{Type: docType})
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}
	candidate := FormatDocumentNumber(docType, year, len(docs)+1)
	prefix := fmt.Sprintf("%s-%d-", docType.Prefix(), year)

	taken := false
	highest := 0
	for _, doc := range docs {
		if doc.Number == candidate {
			taken = true
		}
		if seq, ok := parseSequence(doc.Number, prefix); ok && seq > highest {
			highest = seq
		}
	}
	if taken {
		return highest + 1, nil
	}
	return len(docs) + 1, nil
}

func parseSequence(number, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(number, prefix)
	if !ok {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

const sequenceKeyPrefix = "billing:seq"

// RedisSequencer keeps an atomic counter per document type and year. A
// missing counter is seeded from the stored documents so numbering continues
// after the last free sequence.
type RedisSequencer struct {
	client *redis.Client
}

// NewRedisSequencer constructs a Redis backed sequencer.
func NewRedisSequencer(client *redis.Client) *RedisSequencer {
	return &RedisSequencer{client: client}
}

// Next atomically increments and returns the counter.
func (s *RedisSequencer) Next(ctx context.Context, repo Repository, docType DocumentType, year int) (int, error) {
	key := sequenceKey(docType, year)
	if err := s.seed(ctx, repo, key, docType, year); err != nil {
		return 0, err
	}
	seq, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr sequence: %w", err)
	}
	return int(seq), nil
}

// Peek returns the value Next would hand out without reserving it.
func (s *RedisSequencer) Peek(ctx context.Context, repo Repository, docType DocumentType, year int) (int, error) {
	current, err := s.client.Get(ctx, sequenceKey(docType, year)).Int()
	if err == redis.Nil {
		return nextFreeSequence(ctx, repo, docType, year)
	}
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	return current + 1, nil
}

func (s *RedisSequencer) seed(ctx context.Context, repo Repository, key string, docType DocumentType, year int) error {
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check sequence: %w", err)
	}
	if exists > 0 {
		return nil
	}
	next, err := nextFreeSequence(ctx, repo, docType, year)
	if err != nil {
		return err
	}
	// SetNX so a concurrent seeder cannot rewind a counter already in use.
	if err := s.client.SetNX(ctx, key, next-1, 0).Err(); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

func sequenceKey(docType DocumentType, year int) string {
	return fmt.Sprintf("%s:%s:%d", sequenceKeyPrefix, strings.ToLower(docType.Prefix()), year)
}
