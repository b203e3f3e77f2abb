package saver

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/acm19/spacesaver/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Archiver defines the interface for keeping a copy of originals before they are deleted
type Archiver interface {
	// ArchiveFiles uploads each file and returns the ones now safely stored.
	// Files that could not be stored are reported in the joined error.
	ArchiveFiles(ctx context.Context, paths []string) ([]string, error)
}

// s3API is the part of the S3 client the archiver uses
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Archiver implements the Archiver interface
type s3Archiver struct {
	client        s3API
	bucket        string
	prefix        string
	maxConcurrent int
}

// NewS3Archiver creates an Archiver storing originals in bucket under prefix
func NewS3Archiver(ctx context.Context, bucket, prefix string, maxConcurrent int) (Archiver, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3Archiver(s3.NewFromConfig(cfg), bucket, prefix, maxConcurrent), nil
}

func newS3Archiver(client s3API, bucket, prefix string, maxConcurrent int) *s3Archiver {
	return &s3Archiver{
		client:        client,
		bucket:        bucket,
		prefix:        strings.Trim(prefix, "/"),
		maxConcurrent: maxConcurrent,
	}
}

// ArchiveFiles uploads files in parallel, skipping objects already stored with the same content
func (a *s3Archiver) ArchiveFiles(ctx context.Context, paths []string) ([]string, error) {
	logger.Info("Archiving originals", "count", len(paths), "bucket", a.bucket, "prefix", a.prefix)

	var mu sync.Mutex
	archived := make(map[string]bool, len(paths))
	err := runWorkerPool(paths, a.maxConcurrent, func(filePath string) error {
		if err := a.archiveFile(ctx, filePath); err != nil {
			logger.Error("Failed to archive original", "path", filePath, "error", err)
			return fmt.Errorf("%s: %w", filePath, err)
		}
		mu.Lock()
		archived[filePath] = true
		mu.Unlock()
		return nil
	})

	// Keep the caller's order
	result := make([]string, 0, len(archived))
	for _, p := range paths {
		if archived[p] {
			result = append(result, p)
		}
	}
	logger.Info("Archiving finished", "archived", len(result), "failed", len(paths)-len(result))
	return result, err
}

// objectKey returns the S3 key an original is stored under
func (a *s3Archiver) objectKey(filePath string) string {
	if a.prefix == "" {
		return filepath.Base(filePath)
	}
	return path.Join(a.prefix, filepath.Base(filePath))
}

// archiveFile uploads one file unless an identical object already exists
func (a *s3Archiver) archiveFile(ctx context.Context, filePath string) error {
	key := a.objectKey(filePath)

	localHash, err := a.calculateMD5(filePath)
	if err != nil {
		return fmt.Errorf("failed to calculate MD5: %w", err)
	}

	headOutput, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		remoteETag := a.extractETag(headOutput.ETag)
		if remoteETag == localHash {
			logger.Info("Object already exists in S3 with matching hash, skipping", "key", key, "hash", localHash)
			return nil
		}
		return fmt.Errorf("hash mismatch for '%s': S3 object exists with different content (local: %s, remote: %s)", key, localHash, remoteETag)
	} else if !isNotFoundError(err) {
		return fmt.Errorf("failed to check S3 object existence: %w", err)
	}

	logger.Debug("Uploading original", "path", filePath, "bucket", a.bucket, "key", key)
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// extractETag strips the quotes S3 wraps ETags in
func (a *s3Archiver) extractETag(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, `"`)
}

// calculateMD5 calculates the MD5 hash of a file
func (a *s3Archiver) calculateMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// isNotFoundError checks if the error is a NotFound error
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if code == "NotFound" || code == "NoSuchKey" {
			return true
		}
	}

	return strings.Contains(err.Error(), "StatusCode: 404")
}
