// cards/dealer.go
package cards

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Dealer 负责生成三张底牌，由调用方注入以便测试时固定结果
type Dealer interface {
	DealHole() [3]Card
}

// 发牌器名称，对应配置 tables.dealer
const (
	DealerRand  = "rand"
	DealerClock = "clock"
)

// NewDealer builds the dealer named by kind; an empty kind means DealerRand.
func NewDealer(kind string) (Dealer, error) {
	switch kind {
	case "", DealerRand:
		return NewRandDealer(nil), nil
	case DealerClock:
		return ClockDealer{}, nil
	default:
		return nil, fmt.Errorf("unknown dealer %q", kind)
	}
}

// RandDealer draws three distinct hole cards from a math/rand source.
// It is not cryptographically unpredictable. One RandDealer may be shared by
// tables dealing concurrently.
type RandDealer struct {
	mu  sync.Mutex // rand.Rand 不是并发安全的
	rng *rand.Rand
}

// NewRandDealer constructs a RandDealer with the provided rng or a time-seeded default.
func NewRandDealer(rng *rand.Rand) *RandDealer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandDealer{rng: rng}
}

func (d *RandDealer) DealHole() [3]Card {
	d.mu.Lock()
	perm := d.rng.Perm(DeckSize)
	d.mu.Unlock()
	return [3]Card{Card(perm[0]), Card(perm[1]), Card(perm[2])}
}

// SeedDealer derives the hole cards from successive bytes of a single seed.
// The three cards are not guaranteed to be distinct.
type SeedDealer struct {
	Seed uint64
}

func (d SeedDealer) DealHole() [3]Card {
	return [3]Card{
		Card((d.Seed >> 0) % DeckSize),
		Card((d.Seed >> 8) % DeckSize),
		Card((d.Seed >> 16) % DeckSize),
	}
}

// ClockDealer seeds a SeedDealer from the wall clock at deal time.
type ClockDealer struct {
	Now func() time.Time
}

func (d ClockDealer) DealHole() [3]Card {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return SeedDealer{Seed: uint64(now().Unix())}.DealHole()
}
