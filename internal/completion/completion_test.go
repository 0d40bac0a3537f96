package completion

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hansmi/stack-mirror-tools/internal/client"
	"github.com/hansmi/stack-mirror-tools/internal/layout"
	"github.com/hansmi/stack-mirror-tools/internal/stats"
)

const (
	testBucket = "ai2-llm"
	testTable  = "AGS_Script/train-00000-of-00001.parquet"
	testPrefix = "pretraining-data/sources/the-stack-v2/jsonl_data/AGS_Script/AGS_Script-00000"
)

type fakeLister struct {
	objects []client.Object
	err     error

	gotBucket string
	gotPrefix string
}

func (l *fakeLister) ListObjects(_ context.Context, bucket, prefix string) ([]client.Object, error) {
	l.gotBucket = bucket
	l.gotPrefix = prefix

	return l.objects, l.err
}

type listerFunc func(ctx context.Context, bucket, prefix string) ([]client.Object, error)

func (f listerFunc) ListObjects(ctx context.Context, bucket, prefix string) ([]client.Object, error) {
	return f(ctx, bucket, prefix)
}

func archives(total int, names ...string) []client.Object {
	var result []client.Object

	for idx, i := range names {
		result = append(result, client.Object{
			Key:  fmt.Sprintf("%s/%s-of-%d.jsonl.zstd", testPrefix, i, total),
			Size: int64(100 * (idx + 1)),
		})
	}

	return result
}

func newChecker(l Lister) *Checker {
	return &Checker{
		Lister:       l,
		Prefix:       "pretraining-data/sources/the-stack-v2/",
		JSONLSubpath: "jsonl_data",
		Suffix:       ".jsonl.zstd",
	}
}

func TestCheck(t *testing.T) {
	errTest := errors.New("access denied")

	for _, tc := range []struct {
		name    string
		table   string
		objects []client.Object
		listErr error
		want    Result
		wantErr error
	}{
		{
			name:  "empty",
			table: testTable,
			want: Result{
				Table:  testTable,
				Prefix: testPrefix,
			},
		},
		{
			name:  "only other suffixes",
			table: testTable,
			objects: []client.Object{
				{Key: testPrefix + "/AGS_Script-00000-0000-of-1.jsonl.gz", Size: 1},
				{Key: testPrefix + "/_SUCCESS"},
			},
			want: Result{
				Table:  testTable,
				Prefix: testPrefix,
			},
		},
		{
			name:    "complete",
			table:   testTable,
			objects: archives(3, "AGS_Script-00000-0000", "AGS_Script-00000-0001", "AGS_Script-00000-0002"),
			want: Result{
				Table:    testTable,
				Prefix:   testPrefix,
				Found:    3,
				Expected: 3,
				Complete: true,
				Sizes:    stats.Summarize([]int64{100, 200, 300}),
			},
		},
		{
			name:    "incomplete",
			table:   testTable,
			objects: archives(3, "AGS_Script-00000-0000", "AGS_Script-00000-0001"),
			want: Result{
				Table:    testTable,
				Prefix:   testPrefix,
				Found:    2,
				Expected: 3,
				Sizes:    stats.Summarize([]int64{100, 200}),
			},
		},
		{
			name:  "ignores non-archives",
			table: testTable,
			objects: append(
				archives(1, "AGS_Script-00000-0000"),
				client.Object{Key: testPrefix + "/AGS_Script-00000-0000-of-1.jsonl.zstd.tmp"},
			),
			want: Result{
				Table:    testTable,
				Prefix:   testPrefix,
				Found:    1,
				Expected: 1,
				Complete: true,
				Sizes:    stats.Summarize([]int64{100}),
			},
		},
		{
			name:  "naming convention",
			table: testTable,
			objects: []client.Object{
				{Key: testPrefix + "/AGS_Script-00000-0000-3.jsonl.zstd"},
			},
			wantErr: ErrNamingConvention,
		},
		{
			name:    "listing failure",
			table:   testTable,
			listErr: fmt.Errorf("%w: %w", client.ErrListing, errTest),
			wantErr: client.ErrListing,
		},
		{
			name:    "invalid table",
			table:   "train-00000-of-00001.parquet",
			wantErr: layout.ErrInvalidName,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := &fakeLister{
				objects: tc.objects,
				err:     tc.listErr,
			}

			got, err := newChecker(l).Check(context.Background(), testBucket, tc.table)

			if diff := cmp.Diff(tc.wantErr, err, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("Error diff (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Check() diff (-want +got):\n%s", diff)
			}

			if err == nil {
				if l.gotBucket != testBucket {
					t.Errorf("Listed bucket %q, want %q", l.gotBucket, testBucket)
				}

				if l.gotPrefix != testPrefix {
					t.Errorf("Listed prefix %q, want %q", l.gotPrefix, testPrefix)
				}
			}
		})
	}
}

func TestIsComplete(t *testing.T) {
	names := []string{"AGS_Script-00000-0000", "AGS_Script-00000-0001", "AGS_Script-00000-0002"}

	for _, tc := range []struct {
		name    string
		objects []client.Object
		want    bool
	}{
		{name: "none"},
		{
			name:    "three of three",
			objects: archives(3, names...),
			want:    true,
		},
		{
			name:    "two of three",
			objects: archives(3, names[:2]...),
		},
		{
			name:    "more than expected",
			objects: archives(2, names...),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newChecker(listerFunc(func(context.Context, string, string) ([]client.Object, error) {
				return tc.objects, nil
			}))

			got, err := c.IsComplete(context.Background(), testBucket, testTable)
			if err != nil {
				t.Errorf("IsComplete() failed: %v", err)
			}

			if got != tc.want {
				t.Errorf("IsComplete() = %v, want %v", got, tc.want)
			}
		})
	}
}
