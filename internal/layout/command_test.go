package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommandTemplateLine(t *testing.T) {
	for _, tc := range []struct {
		name        string
		tmpl        CommandTemplate
		commandFile string
		want        string
	}{
		{
			name: "blob",
			tmpl: CommandTemplate{
				SourceBucket:  "softwareheritage",
				ContentPrefix: "content",
				TargetDir:     "/mnt/raid0/",
				DataSubpath:   "the-stack-v2/data",
				Mode:          DestinationBlob,
			},
			want: "cp s3://softwareheritage/content/abc123 /mnt/raid0/the-stack-v2/data/foo/abc123\n",
		},
		{
			name: "legacy",
			tmpl: CommandTemplate{
				SourceBucket:  "softwareheritage",
				ContentPrefix: "content",
				TargetDir:     "/mnt/raid0/",
				DataSubpath:   "the-stack-v2/data",
				Mode:          DestinationLegacy,
			},
			want: "cp s3://softwareheritage/content/abc123 /mnt/raid0/the-stack-v2/data/foo/src/foo/train-00000-of-00001.cmd.txt\n",
		},
		{
			name: "legacy absolute command file",
			tmpl: CommandTemplate{
				SourceBucket:  "softwareheritage",
				ContentPrefix: "content",
				TargetDir:     "/mnt/raid0",
				DataSubpath:   "the-stack-v2/data",
				Mode:          DestinationLegacy,
			},
			commandFile: "/mnt/raid0/the-stack-v2/raw-hf-parquets/Go/train-00000-of-00001.cmd.txt",
			want:        "cp s3://softwareheritage/content/abc123 /mnt/raid0/the-stack-v2/raw-hf-parquets/Go/train-00000-of-00001.cmd.txt\n",
		},
		{
			name: "blob absolute command file",
			tmpl: CommandTemplate{
				SourceBucket:  "softwareheritage",
				ContentPrefix: "content",
				TargetDir:     "/mnt/raid0",
				DataSubpath:   "the-stack-v2/data",
				Mode:          DestinationBlob,
			},
			commandFile: "/mnt/raid0/the-stack-v2/raw-hf-parquets/Go/train-00000-of-00001.cmd.txt",
			want:        "cp s3://softwareheritage/content/abc123 /mnt/raid0/the-stack-v2/data/foo/abc123\n",
		},
		{
			name: "no content prefix",
			tmpl: CommandTemplate{
				SourceBucket: "bucket",
				TargetDir:    "/t",
				Mode:         DestinationBlob,
			},
			want: "cp s3://bucket/abc123 /t/foo/abc123\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			commandFile := tc.commandFile
			if commandFile == "" {
				commandFile = "src/foo/train-00000-of-00001.cmd.txt"
			}

			got := tc.tmpl.Line("foo", commandFile, "abc123")

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Line() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDestinationModeSet(t *testing.T) {
	var m DestinationMode

	for _, value := range []string{"blob", "legacy"} {
		if err := m.Set(value); err != nil {
			t.Errorf("Set(%q) failed: %v", value, err)
		}

		if got := m.String(); got != value {
			t.Errorf("String() = %q, want %q", got, value)
		}
	}

	if err := m.Set("other"); err == nil {
		t.Errorf("Set(%q) succeeded", "other")
	}
}
