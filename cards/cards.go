// cards/cards.go
package cards

import (
	"fmt"
	"strconv"
)

// Card 是一张牌的编码，取值范围 [0, DeckSize)
//
// 0..51 编码为 rank*4 + suit，rank 从 3 开始依次到 K、A、2；
// 52 为小王，53 为大王。
type Card uint8

const (
	DeckSize = 54

	SmallJoker Card = 52
	BigJoker   Card = 53
)

var (
	rankNames = [13]string{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2"}
	suitNames = [4]string{"♠", "♥", "♣", "♦"}
)

// Valid reports whether the code is inside the deck domain.
func (c Card) Valid() bool {
	return int(c) < DeckSize
}

// IsJoker reports whether the card is one of the two jokers.
func (c Card) IsJoker() bool {
	return c == SmallJoker || c == BigJoker
}

// Rank returns the ordering rank of the card: 0 for "3" up to 12 for "2",
// 13 for the small joker and 14 for the big joker.
func (c Card) Rank() int {
	switch c {
	case SmallJoker:
		return 13
	case BigJoker:
		return 14
	}
	return int(c) / 4
}

// Suit returns the suit index in [0,4), or -1 for jokers.
func (c Card) Suit() int {
	if c.IsJoker() {
		return -1
	}
	return int(c) % 4
}

func (c Card) String() string {
	switch {
	case c == SmallJoker:
		return "SJ"
	case c == BigJoker:
		return "BJ"
	case !c.Valid():
		return fmt.Sprintf("?%d", uint8(c))
	}
	return rankNames[c.Rank()] + suitNames[c.Suit()]
}

// MarshalJSON encodes the card as its numeric code, so []Card becomes a JSON
// array instead of a base64 string.
func (c Card) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(c), 10), nil
}

// Parse 把一组原始编码转换为 Card，超出牌域的编码返回错误
func Parse(codes []uint8) ([]Card, error) {
	out := make([]Card, len(codes))
	for i, code := range codes {
		out[i] = Card(code)
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate reports the first card outside the 54-card deck.
func Validate(cs []Card) error {
	for _, c := range cs {
		if !c.Valid() {
			return fmt.Errorf("card code %d out of range", uint8(c))
		}
	}
	return nil
}

// Codes converts cards back into their raw codes.
func Codes(cs []Card) []uint8 {
	out := make([]uint8, len(cs))
	for i, c := range cs {
		out[i] = uint8(c)
	}
	return out
}
