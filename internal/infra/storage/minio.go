// Package storage archives analysis documents to a MinIO bucket for
// auditing. Only analysis output is archived, never the content that
// was analyzed.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

type Archive struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New connects to MinIO and ensures the bucket exists.
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Archive, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Archive{client: cli, bucketName: bucket, region: region}, nil
}

// Archive stores the record's analysis document as a JSON object under
// <type>/<fingerprint>/<uuid>.json and returns the object URL.
func (a *Archive) Archive(ctx context.Context, rec *analysis.Record) (string, error) {
	key := fmt.Sprintf("%s/%s/%s.json", rec.Type, rec.Hash, uuid.New().String())

	_, err := a.client.PutObject(ctx, a.bucketName, key,
		bytes.NewReader(rec.Analysis), int64(len(rec.Analysis)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://%s/%s/%s", a.client.EndpointURL().Host, a.bucketName, key)
	return url, nil
}
