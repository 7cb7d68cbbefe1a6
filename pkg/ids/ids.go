// Package ids generates short URL-safe identifiers for rooms and matches.
package ids

import (
	gonanoid "github.com/jaevor/go-nanoid"
)

// без похожих глифов (0/O, 1/l/I), чтобы код комнаты можно было диктовать
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz"

const Length = 9

type Generator func() string

// New возвращает генератор коротких id. Ошибка возможна только при
// некорректном алфавите/длине, то есть на старте процесса.
func New() (Generator, error) {
	gen, err := gonanoid.CustomASCII(alphabet, Length)
	if err != nil {
		return nil, err
	}
	return Generator(gen), nil
}

// MustNew — для main и тестов.
func MustNew() Generator {
	gen, err := New()
	if err != nil {
		panic(err)
	}
	return gen
}
