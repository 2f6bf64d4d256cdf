package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/akashgupta157/tasktracker/internal/config"
	"github.com/akashgupta157/tasktracker/internal/model"
)

// SnapshotStore keeps whole-board JSON documents on any S3-compatible
// service (MinIO included) under boards/<id>.json, for export and restore.
type SnapshotStore struct {
	client *s3.Client
	bucket string
}

// NewSnapshotStore initializes an S3 client from the config section.
func NewSnapshotStore(cfg config.S3Config) (*SnapshotStore, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		return nil, errors.New("S3 endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid S3 endpoint: %w", err)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithEndpointResolver(
			aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint, SigningRegion: cfg.Region}, nil
			}),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &SnapshotStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket verifies the configured bucket exists.
func (s *SnapshotStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return fmt.Errorf("bucket %s does not exist", s.bucket)
		}
		return fmt.Errorf("%w: checking bucket: %v", ErrUnavailable, err)
	}
	return nil
}

// Save uploads the board tree as a snapshot document.
func (s *SnapshotStore) Save(ctx context.Context, tree *model.BoardTree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("error encoding snapshot json: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(snapshotKey(tree.ID)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("%w: saving snapshot: %v", ErrUnavailable, err)
	}
	return nil
}

// Load fetches the snapshot for a board, or ErrSnapshotNotFound.
func (s *SnapshotStore) Load(ctx context.Context, boardID string) (*model.BoardTree, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(snapshotKey(boardID)),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
			return nil, fmt.Errorf("%w: board %s", ErrSnapshotNotFound, boardID)
		}
		return nil, fmt.Errorf("%w: loading snapshot: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot: %v", ErrUnavailable, err)
	}
	var tree model.BoardTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("error decoding snapshot json: %w", err)
	}
	return &tree, nil
}

func snapshotKey(boardID string) string {
	return "boards/" + boardID + ".json"
}
