package event

import "math/bits"

const setWords = (int(kindCount) + 63) / 64

// Set — битовый набор над каталогом видов. Нулевое значение — пустой набор.
// Все операции O(1); виды вне каталога игнорируются.
type Set struct {
	words [setWords]uint64
}

func (s *Set) Add(k Kind) {
	if !k.Valid() {
		return
	}
	s.words[k/64] |= 1 << (k % 64)
}

func (s *Set) Remove(k Kind) {
	if !k.Valid() {
		return
	}
	s.words[k/64] &^= 1 << (k % 64)
}

func (s *Set) Has(k Kind) bool {
	if !k.Valid() {
		return false
	}
	return s.words[k/64]&(1<<(k%64)) != 0
}

// Len — количество видов в наборе.
func (s *Set) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Kinds возвращает виды набора по возрастанию.
func (s *Set) Kinds() []Kind {
	kinds := make([]Kind, 0, s.Len())
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			kinds = append(kinds, Kind(i*64+b))
			w &= w - 1
		}
	}
	return kinds
}

// Clear очищает набор.
func (s *Set) Clear() {
	s.words = [setWords]uint64{}
}
