package hikmeans_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/hikmeans"
	"github.com/hupe1980/hikmeans/blobstore"
	"github.com/hupe1980/hikmeans/ikmeans"
	"github.com/hupe1980/hikmeans/persistence"
)

// Example demonstrates training a two level tree and quantizing vectors.
func Example() {
	data := []uint8{
		0, 0, 0, 1,
		20, 20, 20, 21,
		200, 200, 200, 201,
		220, 220, 220, 221,
	}

	tree := hikmeans.New(ikmeans.Lloyd)
	defer tree.Close()

	if err := tree.Init(2, 2, 2); err != nil {
		log.Fatal(err)
	}
	if err := tree.Train(context.Background(), data, 8); err != nil {
		log.Fatal(err)
	}

	a, _ := tree.PushOne([]uint8{1, 1})
	b, _ := tree.PushOne([]uint8{0, 2})
	c, _ := tree.PushOne([]uint8{210, 215})

	fmt.Println("vocabulary:", tree.Vocabulary())
	fmt.Println("nodes:", tree.Stats().Nodes)
	fmt.Println("same word:", a[0] == b[0] && a[1] == b[1])
	fmt.Println("same root branch:", a[0] == c[0])
	// Output:
	// vocabulary: 4
	// nodes: 7
	// same word: true
	// same root branch: false
}

// ExampleInvertedFile demonstrates grouping vectors by vocabulary word.
func ExampleInvertedFile() {
	data := []uint8{
		0, 0, 0, 1,
		20, 20, 20, 21,
		200, 200, 200, 201,
		220, 220, 220, 221,
	}

	tree := hikmeans.New(ikmeans.Elkan)
	defer tree.Close()

	if err := tree.Init(2, 2, 2); err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	if err := tree.Train(ctx, data, 8); err != nil {
		log.Fatal(err)
	}
	codes, err := tree.Push(ctx, data, 8)
	if err != nil {
		log.Fatal(err)
	}

	inv := hikmeans.NewInvertedFile(tree)
	if _, err := inv.AddBatch(codes, 8, 0); err != nil {
		log.Fatal(err)
	}

	neighbors, _ := inv.Lookup(codes[4*2 : 5*2])
	fmt.Println("words:", len(inv.Words()))
	fmt.Println("neighbors of 4:", neighbors.ToArray())
	// Output:
	// words: 4
	// neighbors of 4: [4 5]
}

// ExampleTree_Save demonstrates persisting a tree to a blob store.
func ExampleTree_Save() {
	data := []uint8{0, 0, 10, 10, 100, 100, 110, 110}

	tree := hikmeans.New(ikmeans.Lloyd, hikmeans.WithCompression(persistence.CompressionZSTD))
	defer tree.Close()

	ctx := context.Background()
	if err := tree.Init(2, 2, 1); err != nil {
		log.Fatal(err)
	}
	if err := tree.Train(ctx, data, 4); err != nil {
		log.Fatal(err)
	}

	store := blobstore.NewMemoryStore()
	if err := tree.Save(ctx, store, "vocab.hkm"); err != nil {
		log.Fatal(err)
	}

	loaded, err := hikmeans.Load(ctx, store, "vocab.hkm")
	if err != nil {
		log.Fatal(err)
	}
	defer loaded.Close()

	want, _ := tree.PushOne([]uint8{105, 100})
	got, _ := loaded.PushOne([]uint8{105, 100})
	fmt.Println("depth:", loaded.Depth())
	fmt.Println("same code:", want[0] == got[0])
	// Output:
	// depth: 1
	// same code: true
}
