// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("trees/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = tree.Save(ctx, store, "vocab-0001.hkm")
//
// VersionedStore adds an atomic CURRENT pointer kept in DynamoDB, so readers
// always find the latest complete tree even while a new one is uploading.
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large trees
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
