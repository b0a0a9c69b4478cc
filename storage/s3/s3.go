// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package s3 provides an object store backed by Amazon S3 or an
// S3-compatible service, using the official aws client library.
//
// Public scientific data buckets are frequently readable without
// credentials, so the store supports anonymous access; set
// Parameters.Anonymous or simply leave the keys empty.
package s3

import (
	"context"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/gridpub/gridpub/storage"
)

// listMax is the largest number of objects one S3 list call can return.
const listMax = 1000

// Parameters configures an S3 store.
type Parameters struct {
	// Bucket is the bucket name.  Required.
	Bucket string

	// Prefix is an optional key prefix; the store is rooted under
	// it, the way a file store is rooted under a directory.
	Prefix string

	// Region is the AWS region of the bucket, e.g. "us-west-2".
	Region string

	// RegionEndpoint overrides the S3 endpoint URL, for
	// S3-compatible services like minio.
	RegionEndpoint string

	// ForcePathStyle addresses the bucket in the URL path rather
	// than the hostname.  Most S3-compatible services require it.
	ForcePathStyle bool

	// AccessKey, SecretKey, and SessionToken are static
	// credentials.  If AccessKey is empty the store is anonymous.
	AccessKey    string
	SecretKey    string
	SessionToken string

	// Anonymous forces unsigned requests even if credentials are
	// available in the environment.
	Anonymous bool
}

type s3Store struct {
	client *awss3.S3
	bucket string
	prefix string
}

// New creates an S3-backed store.
func New(params Parameters) (storage.Store, error) {
	config := aws.NewConfig()
	if params.Region != "" {
		config = config.WithRegion(params.Region)
	}
	if params.RegionEndpoint != "" {
		config = config.WithEndpoint(params.RegionEndpoint)
	}
	if params.ForcePathStyle {
		config = config.WithS3ForcePathStyle(true)
	}
	if params.AccessKey != "" {
		config = config.WithCredentials(credentials.NewStaticCredentials(
			params.AccessKey, params.SecretKey, params.SessionToken))
	} else if params.Anonymous {
		config = config.WithCredentials(credentials.AnonymousCredentials)
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, err
	}

	prefix := storage.NormalizeKey(params.Prefix)
	if prefix != "" {
		prefix += "/"
	}
	return &s3Store{
		client: awss3.New(sess),
		bucket: params.Bucket,
		prefix: prefix,
	}, nil
}

func (s *s3Store) Type() string { return "s3" }

func (s *s3Store) Get(ctx context.Context, key string) ([]byte, error) {
	key = storage.NormalizeKey(key)
	out, err := s.client.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		if aerr, isAWS := err.(awserr.Error); isAWS {
			switch aerr.Code() {
			case awss3.ErrCodeNoSuchKey, "NotFound":
				return nil, storage.ErrKeyNotFound{Key: key}
			}
		}
		return nil, err
	}
	defer out.Body.Close()
	return ioutil.ReadAll(out.Body)
}

func (s *s3Store) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = storage.NormalizeKey(prefix)
	full := s.prefix + prefix
	if prefix != "" {
		full += "/"
	}
	keys := []string{}
	err := s.client.ListObjectsV2PagesWithContext(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(full),
		MaxKeys: aws.Int64(listMax),
	}, func(page *awss3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if len(key) > len(s.prefix) {
				keys = append(keys, key[len(s.prefix):])
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
