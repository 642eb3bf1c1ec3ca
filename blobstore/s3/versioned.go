package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/hikmeans/blobstore"
)

// CurrentName is the virtual blob holding the name of the latest saved tree.
const CurrentName = "CURRENT"

// ErrConcurrentModification is returned when another writer committed the same version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// VersionedStore implements blobstore.Store backed by S3, with DynamoDB
// holding an atomic CURRENT pointer to the latest saved tree.
//
// Tree blobs go to S3. Writing CURRENT appends a new version row using a
// conditional put, so two writers can never both claim the same version.
// Reading CURRENT returns the blob name of the highest version.
//
// Table schema:
//   - Partition key: base_uri (string)
//   - Sort key: version (number)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name hikmeans-versions \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type VersionedStore struct {
	store     *Store
	ddb       DDBClient
	tableName string
	baseURI   string
}

var _ blobstore.Store = (*VersionedStore)(nil)

// NewVersioned creates a VersionedStore with S3 and DynamoDB clients from the
// default AWS credential chain.
func NewVersioned(ctx context.Context, bucket, tableName string, opts ...Option) (*VersionedStore, error) {
	o := applyOptions(opts)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	o.configure(&cfg)

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})
	store := newStore(client, bucket, o)

	return NewVersionedStore(store, dynamodb.NewFromConfig(cfg), tableName, "s3://"+bucket+"/"+o.prefix), nil
}

// NewVersionedStore wraps store. baseURI partitions the version history,
// usually "s3://bucket/prefix".
func NewVersionedStore(store *Store, ddb DDBClient, tableName, baseURI string) *VersionedStore {
	return &VersionedStore{
		store:     store,
		ddb:       ddb,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Open opens a blob. CURRENT resolves to the latest committed name.
func (s *VersionedStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name == CurrentName {
		version, target, err := s.Current(ctx)
		if err != nil {
			return nil, err
		}
		if version == 0 {
			return nil, blobstore.ErrNotFound
		}
		return &currentBlob{content: []byte(target)}, nil
	}
	return s.store.Open(ctx, name)
}

// Put writes a blob. Writing CURRENT commits a new version.
func (s *VersionedStore) Put(ctx context.Context, name string, data []byte) error {
	if name == CurrentName {
		_, err := s.Commit(ctx, string(data))
		return err
	}
	return s.store.Put(ctx, name, data)
}

// Delete removes a blob. The version history is never deleted.
func (s *VersionedStore) Delete(ctx context.Context, name string) error {
	if name == CurrentName {
		return nil
	}
	return s.store.Delete(ctx, name)
}

// List lists blobs with prefix.
func (s *VersionedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.store.List(ctx, prefix)
}

// Current returns the latest committed version and the blob name it points at.
// Version 0 means nothing was committed yet.
func (s *VersionedStore) Current(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in DynamoDB")
	}
	nameAttr, ok := item["blob_name"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid blob_name attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	return version, nameAttr.Value, nil
}

// Commit points CURRENT at name and returns the new version.
// It fails with ErrConcurrentModification if another writer won the race.
func (s *VersionedStore) Commit(ctx context.Context, name string) (uint64, error) {
	current, _, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}

	next := current + 1

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":  &types.AttributeValueMemberS{Value: s.baseURI},
			"version":   &types.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
			"blob_name": &types.AttributeValueMemberS{Value: name},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, ErrConcurrentModification
		}
		return 0, fmt.Errorf("failed to commit version %d: %w", next, err)
	}

	return next, nil
}

// currentBlob is an in-memory blob holding the resolved CURRENT content.
type currentBlob struct {
	content []byte
}

func (b *currentBlob) Close() error {
	return nil
}

func (b *currentBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *currentBlob) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b.content)) {
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
