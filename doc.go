// Package hikmeans provides a hierarchical integer k-means vocabulary tree.
//
// A Tree recursively partitions a set of uint8 vectors: the root clusters
// all of them into K groups, every group is clustered again into K, and so
// on down to a fixed depth. Pushing a vector down the trained tree yields a
// path code with one branch label per level, which maps to a word of a
// K^depth vocabulary. Vectors sharing a word are approximate neighbors.
//
// # Quick Start
//
//	tree := hikmeans.New(ikmeans.Lloyd)
//	defer tree.Close()
//
//	if err := tree.Init(128, 10, 3); err != nil { // dim, K, depth
//	    log.Fatal(err)
//	}
//	if err := tree.Train(ctx, data, n); err != nil { // n*128 bytes, row-major
//	    log.Fatal(err)
//	}
//
//	codes, _ := tree.Push(ctx, queries, m) // m*3 labels
//
// # K-Shrinkage
//
// A node never forms more clusters than it has points, so branches fed with
// fewer than K points have a smaller fan-out, and a branch with no points at
// all has no centers. Vectors reaching such a branch stop early. The slots
// of their path code below that point are filled according to FillPolicy:
// NoLabel by default, or the last written label with FillRepeatLast.
//
// # Parallelism and Limits
//
//	tree := hikmeans.New(ikmeans.Elkan,
//	    hikmeans.WithConcurrency(runtime.GOMAXPROCS(0)), // sibling subtrees + push chunks
//	    hikmeans.WithMemoryLimit(512<<20),               // training scratch memory
//	)
//
// # Persistence
//
// Trained trees can be written to any io.Writer or saved to a blob store:
//
//	store := blobstore.NewLocalStore("./trees")
//	_ = tree.Save(ctx, store, "vocab.hkm")
//	loaded, _ := hikmeans.Load(ctx, store, "vocab.hkm")
//
// # Inverted File
//
//	inv := hikmeans.NewInvertedFile(tree)
//	_, _ = inv.AddBatch(codes, n, 0)
//	candidates, _ := inv.Lookup(queryCode)
package hikmeans
