// Package numbering hands out human-readable, day-scoped batch numbers.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/cache"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Kind describes one numbering series: PREFIX + day + "-" + zero padded sequence.
type Kind struct {
	Name       string
	Prefix     string
	DateLayout string
	Width      int
	Table      string
	Column     string
}

var (
	Outgoing = Kind{
		Name:       "outgoing",
		Prefix:     "OUT-",
		DateLayout: "20060102",
		Width:      4,
		Table:      "outgoings",
		Column:     "outgoing_number",
	}
	ReceivingInhouse = Kind{
		Name:       "receiving_inhouse",
		Prefix:     "REC-",
		DateLayout: "060102",
		Width:      3,
		Table:      "receivings",
		Column:     "receiving_number",
	}
)

// DayPrefix is the part shared by every number issued for day.
func (k Kind) DayPrefix(day time.Time) string {
	return k.Prefix + day.Format(k.DateLayout) + "-"
}

// Capacity is the highest sequence that fits in Width digits.
func (k Kind) Capacity() int64 {
	c := int64(1)
	for i := 0; i < k.Width; i++ {
		c *= 10
	}
	return c - 1
}

func (k Kind) Format(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%0*d", k.DayPrefix(day), k.Width, seq)
}

// Parse returns the day and sequence encoded in number.
func (k Kind) Parse(number string) (time.Time, int64, error) {
	if !strings.HasPrefix(number, k.Prefix) {
		return time.Time{}, 0, fmt.Errorf("missing %q prefix", k.Prefix)
	}
	rest := strings.TrimPrefix(number, k.Prefix)
	datePart, seqPart, ok := strings.Cut(rest, "-")
	if !ok || len(datePart) != len(k.DateLayout) || len(seqPart) != k.Width {
		return time.Time{}, 0, fmt.Errorf("expected %s<%s>-<%d digits>", k.Prefix, k.DateLayout, k.Width)
	}
	day, err := time.Parse(k.DateLayout, datePart)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("bad date %q", datePart)
	}
	seq, err := strconv.ParseInt(seqPart, 10, 64)
	if err != nil || seq <= 0 {
		return time.Time{}, 0, fmt.Errorf("bad sequence %q", seqPart)
	}
	return day, seq, nil
}

type Generator struct {
	cache  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

// NewGenerator builds a generator. redis may be nil, in which case every number is
// derived from the highest one already stored.
func NewGenerator(redis *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *Generator {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Generator{cache: redis, ttl: ttl, logger: log}
}

// ErrExhausted is returned when no unused number is left for the day.
var ErrExhausted = errors.New("numbering: no free number left")

// maxAttempts bounds how many counter values NextFree skips before giving up.
const maxAttempts = 16

// Next issues the next number of kind for day. q should be the caller's transaction so
// the fallback sees rows it has already written.
//
// The SQL fallback can hand the same number to two writers that commit concurrently, and a
// counter lost from Redis is re-seeded from stored rows only.
func (g *Generator) Next(ctx context.Context, q sqlx.ExtContext, kind Kind, day time.Time) (string, error) {
	var seq int64
	if g.cache != nil {
		n, err := g.nextFromCounter(ctx, q, kind, day)
		if err == nil {
			seq = n
		} else {
			g.logger.Warn("batch counter unavailable, deriving from stored numbers",
				zap.String("kind", kind.Name), zap.Error(err))
		}
	}
	if seq == 0 {
		last, err := MaxExisting(ctx, q, kind, day)
		if err != nil {
			return "", err
		}
		seq = last + 1
	}
	if seq > kind.Capacity() {
		return "", fmt.Errorf("%s %s: %w", kind.Name, day.Format("2006-01-02"), ErrExhausted)
	}
	return kind.Format(day, seq), nil
}

// NextFree issues numbers until taken reports one as unused. The Redis counter only knows
// the numbers it handed out itself, so a caller supplied number ahead of it is skipped here.
func (g *Generator) NextFree(ctx context.Context, q sqlx.ExtContext, kind Kind, day time.Time, taken func(number string) (bool, error)) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		number, err := g.Next(ctx, q, kind, day)
		if err != nil {
			return "", err
		}
		used, err := taken(number)
		if err != nil {
			return "", err
		}
		if !used {
			return number, nil
		}
		g.logger.Warn("issued batch number already in use, skipping",
			zap.String("kind", kind.Name), zap.String("number", number))
	}
	return "", fmt.Errorf("%s after %d attempts: %w", kind.Name, maxAttempts, ErrExhausted)
}

func counterKey(kind Kind, day time.Time) string {
	return fmt.Sprintf("batchseq:%s:%s", kind.Name, day.Format("20060102"))
}

func (g *Generator) nextFromCounter(ctx context.Context, q sqlx.ExtContext, kind Kind, day time.Time) (int64, error) {
	key := counterKey(kind, day)
	rdb := g.cache.Client

	exists, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		if err := g.seed(ctx, q, kind, day, key); err != nil {
			return 0, err
		}
	}

	seq, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if seq == 1 {
		rdb.Expire(ctx, key, g.ttl)
	}
	return seq, nil
}

// seed initializes a missing day counter from stored numbers. Only the lock holder writes it.
func (g *Generator) seed(ctx context.Context, q sqlx.ExtContext, kind Kind, day time.Time, key string) error {
	lock, err := g.cache.AcquireLock(ctx, "lock:"+key, 5*time.Second)
	if err != nil {
		return fmt.Errorf("seed lock: %w", err)
	}
	defer g.cache.ReleaseLock(ctx, lock)

	last, err := MaxExisting(ctx, q, kind, day)
	if err != nil {
		return err
	}
	return g.cache.Client.SetNX(ctx, key, last, g.ttl).Err()
}

// MaxExisting returns the highest sequence of kind already stored for day, or 0. Stored
// values that share the day prefix but do not parse as a kind number are ignored.
func MaxExisting(ctx context.Context, q sqlx.ExtContext, kind Kind, day time.Time) (int64, error) {
	prefix := kind.DayPrefix(day)
	query := q.Rebind(fmt.Sprintf(
		`SELECT DISTINCT %[1]s FROM %[2]s WHERE %[1]s LIKE ?`,
		kind.Column, kind.Table))

	var numbers []string
	if err := sqlx.SelectContext(ctx, q, &numbers, query, prefix+"%"); err != nil {
		return 0, fmt.Errorf("max %s: %w", kind.Column, err)
	}

	var last int64
	for _, n := range numbers {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		_, seq, err := kind.Parse(n)
		if err != nil {
			continue
		}
		if seq > last {
			last = seq
		}
	}
	return last, nil
}
