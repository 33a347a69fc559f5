package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate flag and value",
			args:    []string{"-a", "127.0.0.1:3001", "-x", "junk"},
			allowed: []string{"-a"},
			want:    []string{"-a", "127.0.0.1:3001"},
		},
		{
			name:    "flag=value form",
			args:    []string{"--config=conf.json", "-a=:3001", "-b=nope"},
			allowed: []string{"--config", "-a"},
			want:    []string{"--config=conf.json", "-a=:3001"},
		},
		{
			name:    "flag without value followed by another flag",
			args:    []string{"-v", "-a", ":3001"},
			allowed: []string{"-v", "-a"},
			want:    []string{"-v", "-a", ":3001"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "x", "-b", "y"},
			allowed: []string{},
			want:    []string{},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterArgs(tc.args, tc.allowed)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "conf.json"}
		assert.Equal(t, "conf.json", JsonConfigFlags())
	})

	t.Run("long flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "other.json"}
		assert.Equal(t, "other.json", JsonConfigFlags())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"testbin", "-a", ":3001"}
		assert.Equal(t, "", JsonConfigFlags())
	})
}
