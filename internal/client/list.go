package client

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// ErrListing is wrapped by all errors returned from listing operations. It
// allows callers to tell a failed listing apart from an empty prefix.
var ErrListing = errors.New("listing objects")

// Object is a single entry of a bucket listing.
type Object struct {
	Key  string
	Size int64
}

var _ slog.LogValuer = (*Object)(nil)

func (o Object) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("key", o.Key),
		slog.Int64("size", o.Size),
	)
}

// ListObjects enumerates all objects below a prefix. The result is sorted
// lexicographically by key. An empty prefix listing returns no objects and no
// error.
func ListObjects(ctx context.Context, c s3.ListObjectsV2APIClient, bucket, prefix string) (_ []Object, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrListing, err)
		}

		AnnotateError(&err, "bucket %q, prefix %q", bucket, prefix)
	}()

	paginator := s3.NewListObjectsV2Paginator(c, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	ch := make(chan *s3.ListObjectsV2Output, 1)

	var result []Object

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case ch <- page:
			}
		}

		return nil
	})
	g.Go(func() error {
		for page := range ch {
			for _, i := range page.Contents {
				result = append(result, Object{
					Key:  aws.ToString(i.Key),
					Size: aws.ToInt64(i.Size),
				})
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b Object) int {
		return cmp.Compare(a.Key, b.Key)
	})

	return result, nil
}
