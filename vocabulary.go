package hikmeans

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"
)

// Vocabulary returns the number of distinct words a full tree can produce,
// K^depth, saturating at math.MaxUint64.
func (t *Tree) Vocabulary() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return vocabularySize(t.k, t.depth)
}

func vocabularySize(k, depth int) uint64 {
	if k < 1 || depth < 1 {
		return 0
	}
	v := uint64(1)
	for i := 0; i < depth; i++ {
		hi, lo := bits.Mul64(v, uint64(k))
		if hi != 0 {
			return math.MaxUint64
		}
		v = lo
	}
	return v
}

// Word maps a full-depth path code to its word id, reading the labels as
// digits of a base-K number with the root label most significant. It
// reports false if the code has the wrong length, contains NoLabel or a
// label >= K, or the vocabulary does not fit in 64 bits.
func (t *Tree) Word(code []uint32) (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return word(code, t.k, t.depth)
}

func word(code []uint32, k, depth int) (uint64, bool) {
	if len(code) != depth || vocabularySize(k, depth) == math.MaxUint64 {
		return 0, false
	}
	var w uint64
	for _, l := range code {
		if l == NoLabel || int(l) >= k {
			return 0, false
		}
		w = w*uint64(k) + uint64(l)
	}
	return w, true
}

// InvertedFile maps vocabulary words to the ids of the vectors that fell
// into them. Vectors pushed to the same word are candidate neighbors.
//
// InvertedFile is safe for concurrent use.
type InvertedFile struct {
	mu       sync.RWMutex
	k        int
	depth    int
	postings map[uint64]*roaring.Bitmap
}

// NewInvertedFile creates an empty inverted file for the shape of t.
func NewInvertedFile(t *Tree) *InvertedFile {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &InvertedFile{
		k:        t.k,
		depth:    t.depth,
		postings: make(map[uint64]*roaring.Bitmap),
	}
}

// Word returns the word id of code, see Tree.Word.
func (f *InvertedFile) Word(code []uint32) (uint64, bool) {
	return word(code, f.k, f.depth)
}

// Add indexes id under the word of code.
// It returns ErrIncompleteCode if code does not map to a word.
func (f *InvertedFile) Add(id uint32, code []uint32) error {
	w, ok := f.Word(code)
	if !ok {
		return fmt.Errorf("%w: %v", ErrIncompleteCode, code)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(w, id)
	return nil
}

func (f *InvertedFile) add(w uint64, id uint32) {
	bm, ok := f.postings[w]
	if !ok {
		bm = roaring.New()
		f.postings[w] = bm
	}
	bm.Add(id)
}

// AddBatch indexes n path codes as produced by Push, giving vector i the id
// firstID+i. Codes that do not map to a word are skipped. It returns the
// number of vectors indexed.
func (f *InvertedFile) AddBatch(codes []uint32, n int, firstID uint32) (int, error) {
	if n < 0 || len(codes) < n*f.depth {
		return 0, &ErrDimensionMismatch{Expected: n * f.depth, Actual: len(codes)}
	}
	if uint64(firstID)+uint64(n) > math.MaxUint32+1 {
		return 0, fmt.Errorf("%w: ids %d..%d exceed uint32", ErrInvalidArgument, firstID, uint64(firstID)+uint64(n)-1)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	added := 0
	for i := 0; i < n; i++ {
		w, ok := f.Word(codes[i*f.depth : (i+1)*f.depth])
		if !ok {
			continue
		}
		f.add(w, firstID+uint32(i))
		added++
	}
	return added, nil
}

// Postings returns a copy of the ids indexed under w, or an empty bitmap.
func (f *InvertedFile) Postings(w uint64) *roaring.Bitmap {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if bm, ok := f.postings[w]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// Lookup returns the ids sharing the word of code.
func (f *InvertedFile) Lookup(code []uint32) (*roaring.Bitmap, error) {
	w, ok := f.Word(code)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteCode, code)
	}
	return f.Postings(w), nil
}

// Words returns the non-empty words in ascending order.
func (f *InvertedFile) Words() []uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	words := make([]uint64, 0, len(f.postings))
	for w := range f.postings {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

// Len returns the total number of indexed ids.
func (f *InvertedFile) Len() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var total uint64
	for _, bm := range f.postings {
		total += bm.GetCardinality()
	}
	return total
}

// Balance returns the mean and population standard deviation of the posting
// list sizes over the non-empty words. A well balanced vocabulary has a small
// deviation relative to the mean.
func (f *InvertedFile) Balance() (mean, stddev float64) {
	f.mu.RLock()
	sizes := make([]float64, 0, len(f.postings))
	for _, bm := range f.postings {
		sizes = append(sizes, float64(bm.GetCardinality()))
	}
	f.mu.RUnlock()

	if len(sizes) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(sizes, nil)
}
