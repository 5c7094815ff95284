package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveFieldsDefaults(t *testing.T) {
	fields := EffectiveFields(nil, nil)

	for _, name := range []string{"path", "size", "modified", "extension"} {
		assert.True(t, fields.Has(name), "default field %q missing", name)
	}
	assert.False(t, fields.Has("md5"))
}

func TestEffectiveFieldsAdd(t *testing.T) {
	fields := EffectiveFields([]string{"md5", "size_human"}, nil)

	assert.True(t, fields.Has("md5"))
	assert.True(t, fields.Has("size_human"))
	assert.True(t, fields.Has("path"), "defaults survive additions")
}

func TestEffectiveFieldsRemove(t *testing.T) {
	fields := EffectiveFields(nil, []string{"modified", "extension"})

	assert.False(t, fields.Has("modified"))
	assert.False(t, fields.Has("extension"))
	assert.True(t, fields.Has("path"))
	assert.True(t, fields.Has("size"))
}

// Removals apply before additions, so a key in both lists ends up present.
func TestEffectiveFieldsRemoveThenAddRestores(t *testing.T) {
	fields := EffectiveFields([]string{"size"}, []string{"size"})

	assert.True(t, fields.Has("size"))
}

func TestEffectiveFieldsDoesNotMutateDefaults(t *testing.T) {
	_ = EffectiveFields([]string{"md5"}, []string{"path"})

	// A second derivation must start from pristine defaults.
	fields := EffectiveFields(nil, nil)
	assert.True(t, fields.Has("path"))
	assert.False(t, fields.Has("md5"))
}

func TestFieldSetNames(t *testing.T) {
	fields := EffectiveFields([]string{"md5"}, []string{"modified"})
	assert.Equal(t, []string{"extension", "md5", "path", "size"}, fields.Names())
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0.0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes), "FormatSize(%d)", tt.bytes)
	}
}
