// Package refcode генерирует референс-коды оформленных заказов.
package refcode

import (
	"math/rand/v2"
	"strings"
)

// Length — длина кода
const Length = 20

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewSource возвращает детерминированный источник для заданного зерна
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed)
}

// Generate строит код из символов [a-z0-9], беря случайность из src.
// Один и тот же src с одинаковым зерном даёт один и тот же код.
// src не потокобезопасен, его нельзя делить между горутинами.
func Generate(src rand.Source) string {
	r := rand.New(src)

	var sb strings.Builder
	sb.Grow(Length)
	for range Length {
		sb.WriteByte(alphabet[r.IntN(len(alphabet))])
	}
	return sb.String()
}

// Random генерирует код из источника, инициализированного случайным зерном.
// Безопасна для конкурентного вызова.
func Random() string {
	return Generate(rand.NewChaCha8(seed()))
}

func seed() [32]byte {
	var s [32]byte
	for i := 0; i < len(s); i += 8 {
		v := rand.Uint64()
		for j := range 8 {
			s[i+j] = byte(v >> (8 * j))
		}
	}
	return s
}
