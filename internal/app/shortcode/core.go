package shortcode

import (
	"context"
	"fmt"
	"time"

	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
)

const codeByteLength = 32

// Repository stores one pending code per (usage, target) pair. Save
// overwrites any previous code for the pair, so only the latest issued
// code can ever be redeemed.
type Repository interface {
	Save(ctx context.Context, usage Usage, target string, codeHash string, data string, ttl time.Duration) error
	Get(ctx context.Context, usage Usage, target string) (codeHash string, data string, err error)
	Delete(ctx context.Context, usage Usage, target string) error
}

type CodeHasher interface {
	HashShortCode(code []byte) ([]byte, error)
	CheckPasswordHash(code []byte, hash string) error
}

type RNDGenerator interface {
	New(n int) (string, error)
}

type TimeGenerator interface {
	Now() time.Time
}

type Config struct {
	TTLMinutes int `mapstructure:"ttl_minutes" json:"ttl_minutes"`
}

func (c Config) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

type core struct {
	repo          Repository
	hasher        CodeHasher
	rndGenerator  RNDGenerator
	timeGenerator TimeGenerator
	cfg           Config
}

func NewCore(repo Repository, hasher CodeHasher, rndGenerator RNDGenerator, timeGenerator TimeGenerator, cfg Config) *core {
	if cfg.TTLMinutes <= 0 {
		panic("shortcode.core: ttl must be positive")
	}
	if repo == nil || hasher == nil || rndGenerator == nil || timeGenerator == nil {
		panic("shortcode.core: nil dependency")
	}

	return &core{repo: repo, hasher: hasher, rndGenerator: rndGenerator, timeGenerator: timeGenerator, cfg: cfg}
}

// Create issues a new code for the pair and returns its plain form, the
// only place it is ever visible. Any code previously issued for the same
// pair stops working.
func (c *core) Create(ctx context.Context, usage Usage, target string, data string) (string, ShortCode, error) {
	if err := usage.Validate(); err != nil {
		return "", ShortCode{}, fmt.Errorf("shortcode.core.Create: %w", err)
	}
	if target == "" {
		return "", ShortCode{}, fmt.Errorf("shortcode.core.Create: %w", ErrEmptyTarget())
	}

	plainCode, err := c.rndGenerator.New(codeByteLength)
	if err != nil {
		return "", ShortCode{}, fmt.Errorf("shortcode.core.Create: %w", err)
	}

	codeHash, err := c.hasher.HashShortCode([]byte(plainCode))
	if err != nil {
		return "", ShortCode{}, fmt.Errorf("shortcode.core.Create: %w", err)
	}

	ttl := c.cfg.TTL()
	if err = c.repo.Save(ctx, usage, target, string(codeHash), data, ttl); err != nil {
		return "", ShortCode{}, fmt.Errorf("shortcode.core.Create: %w", err)
	}

	return plainCode, ShortCode{
		Usage:     usage,
		Target:    target,
		Data:      data,
		ExpiresAt: c.timeGenerator.Now().Add(ttl),
	}, nil
}

// Consume redeems a code exactly once and returns the payload attached at
// issuance. The stored hash is deleted on success, a second redemption of
// the same code fails like any other invalid attempt.
func (c *core) Consume(ctx context.Context, usage Usage, target string, code string) (string, error) {
	if err := usage.Validate(); err != nil {
		return "", fmt.Errorf("shortcode.core.Consume: %w", err)
	}
	if target == "" || code == "" {
		return "", fmt.Errorf("shortcode.core.Consume: %w", ErrInvalidShortCode())
	}

	codeHash, data, err := c.repo.Get(ctx, usage, target)
	if err != nil {
		if apperr.ClassOf(err) == apperr.ClassNotFound {
			err = ErrInvalidShortCode()
		}
		return "", fmt.Errorf("shortcode.core.Consume: %w", err)
	}

	if err = c.hasher.CheckPasswordHash([]byte(code), codeHash); err != nil {
		return "", fmt.Errorf("shortcode.core.Consume: %w", ErrInvalidShortCode())
	}

	if err = c.repo.Delete(ctx, usage, target); err != nil {
		return "", fmt.Errorf("shortcode.core.Consume: %w", err)
	}

	return data, nil
}
