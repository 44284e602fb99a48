package utils

type Pair[A any, B any] struct {
	First  A
	Second B
}
