// Package resource bounds the scratch memory, worker goroutines and IO
// bandwidth used while building, saving and loading trees.
package resource
