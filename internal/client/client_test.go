package client

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestAnnotateError(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want string
	}{
		{name: "nil"},
		{
			name: "listing",
			err:  ErrListing,
			want: `table "Go/train-00000-of-00001.parquet": listing objects`,
		},
		{
			name: "wrapped",
			err:  fmt.Errorf("%w: %w", ErrListing, os.ErrPermission),
			want: `table "Go/train-00000-of-00001.parquet": listing objects: permission denied`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.err

			AnnotateError(&err, "table %q", "Go/train-00000-of-00001.parquet")

			if tc.err == nil {
				if err != nil {
					t.Errorf("AnnotateError(nil) modified error: %v", err)
				}

				return
			}

			if diff := cmp.Diff(tc.want, err.Error()); diff != "" {
				t.Errorf("Message diff (-want +got):\n%s", diff)
			}

			if !errors.Is(err, tc.err) {
				t.Errorf("AnnotateError() result %v does not wrap %v", err, tc.err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		name          string
		input         string
		wantErr       error
		wantEndpoint  string
		wantBucket    string
		wantPrefix    string
		wantKey       string
		wantPathStyle bool
	}{
		{
			name:    "empty",
			wantErr: os.ErrInvalid,
		},
		{
			name:    "unknown scheme",
			input:   "s3://ai2-llm/prefix",
			wantErr: os.ErrInvalid,
		},
		{
			name:          "url",
			input:         "https://localhost/bucket",
			wantBucket:    "bucket",
			wantKey:       "pretraining-data/sources",
			wantEndpoint:  "https://localhost",
			wantPathStyle: true,
		},
		{
			name:          "url ending with slash",
			input:         "https://localhost/bucket/",
			wantBucket:    "bucket",
			wantKey:       "pretraining-data/sources",
			wantEndpoint:  "https://localhost",
			wantPathStyle: true,
		},
		{
			name:          "url with prefix",
			input:         "http://localhost:9000/ai2-llm/pretraining-data/",
			wantBucket:    "ai2-llm",
			wantEndpoint:  "http://localhost:9000",
			wantPrefix:    "pretraining-data/",
			wantKey:       "pretraining-data/pretraining-data/sources",
			wantPathStyle: true,
		},
		{
			name:          "url with nested prefix",
			input:         "https://minio:9000/ai2-llm/staging/run1",
			wantBucket:    "ai2-llm",
			wantEndpoint:  "https://minio:9000",
			wantPrefix:    "staging/run1",
			wantKey:       "staging/run1/pretraining-data/sources",
			wantPathStyle: true,
		},
		{
			name:       "non-url",
			input:      "ai2-llm",
			wantBucket: "ai2-llm",
			wantKey:    "pretraining-data/sources",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var cfg aws.Config

			got, err := New(cfg, tc.input)

			if diff := cmp.Diff(tc.wantErr, err, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("Error diff (-want +got):\n%s", diff)
			}

			if err == nil {
				opts := got.client.Options()

				if diff := cmp.Diff(tc.wantEndpoint, aws.ToString(opts.BaseEndpoint)); diff != "" {
					t.Errorf("Endpoint diff (-want +got):\n%s", diff)
				}

				if diff := cmp.Diff(tc.wantBucket, got.Name()); diff != "" {
					t.Errorf("Bucket diff (-want +got):\n%s", diff)
				}

				if diff := cmp.Diff(tc.wantPrefix, got.prefix); diff != "" {
					t.Errorf("Prefix diff (-want +got):\n%s", diff)
				}

				if diff := cmp.Diff(tc.wantKey, got.Key("pretraining-data/sources")); diff != "" {
					t.Errorf("Key diff (-want +got):\n%s", diff)
				}

				if got, want := opts.UsePathStyle, tc.wantPathStyle; got != want {
					t.Errorf("UsePathStyle = %v, want %v", got, want)
				}
			}
		})
	}
}
