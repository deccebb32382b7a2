package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimhashEmptyIsZero(t *testing.T) {
	assert.Equal(t, int64(0), Simhash(""))
	assert.Equal(t, int64(0), Simhash("   "))
}

func TestSimhashDeterministic(t *testing.T) {
	a := Simhash("the quick brown fox")
	b := Simhash("the quick brown fox")
	assert.Equal(t, a, b)
}

func TestSimhashWhitespaceInsensitive(t *testing.T) {
	a := Simhash("A    choice reasoning")
	b := Simhash("A choice reasoning")
	assert.Equal(t, a, b)
	assert.Equal(t, 0, HammingDistance(a, b))
}

func TestHammingDistanceSelf(t *testing.T) {
	assert.Equal(t, 0, HammingDistance(0, 0))
	h := Simhash("some answer text")
	assert.Equal(t, 0, HammingDistance(h, h))
}

func TestHammingDistanceDifferent(t *testing.T) {
	a := Simhash("completely different content here")
	b := Simhash("totally unrelated words appear")
	assert.GreaterOrEqual(t, HammingDistance(a, b), 0)
	assert.LessOrEqual(t, HammingDistance(a, b), 64)
}

func TestSimhashBucket(t *testing.T) {
	h := Simhash("answer text for bucketing")
	bucket := SimhashBucket(h)
	want := int32((uint64(h) >> 48) & 0xFFFF)
	assert.Equal(t, want, bucket)
}
