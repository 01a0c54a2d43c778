package stack

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pixegami/blog/internal/config"
)

func TestEmptyStack(t *testing.T) {
	s := FromConfig(config.Default().Deploy)
	require.NoError(t, s.Validate())

	data, err := json.Marshal(s.Synth())
	require.NoError(t, err)
	assert.JSONEq(t, `{"Resources": {}}`, string(data))
	assert.Equal(t, "PixegamiBlogStack", s.Name)
	assert.Equal(t, "aws://unknown-account/us-east-1", s.Environment())
}

func TestFullStack(t *testing.T) {
	s := New("BlogStack", Env{Account: "123456789012", Region: "us-east-1"}, Options{
		Bucket:       true,
		CDN:          true,
		Domain:       "blog.example.com",
		HostedZoneID: "Z123",
	})
	require.NoError(t, s.Validate())

	tmpl := s.Synth()
	require.Len(t, tmpl.Resources, 4)
	assert.Equal(t, KindBucket, tmpl.Resources[BucketID].Type)
	assert.Equal(t, KindBucketPolicy, tmpl.Resources[BucketPolicyID].Type)
	assert.Equal(t, KindDistribution, tmpl.Resources[DistributionID].Type)
	assert.Equal(t, KindRecordSet, tmpl.Resources[RecordID].Type)
	assert.Contains(t, tmpl.Outputs, "DistributionDomain")

	record, ok := s.Resource(RecordID)
	require.True(t, ok)
	assert.Equal(t, "blog.example.com", record.Properties["Name"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		stack   *Stack
		wantErr string
	}{
		{"missing name", New("", Env{}, Options{}), "name is required"},
		{"short account", New("S", Env{Account: "1234"}, Options{}), "12 digits"},
		{"bad region", New("S", Env{Region: "moon-1"}, Options{}), "malformed region"},
		{"cdn without bucket", New("S", Env{}, Options{CDN: true}), BucketID},
		{"dns without cdn", New("S", Env{}, Options{Bucket: true, Domain: "a.example.com", HostedZoneID: "Z1"}), DistributionID},
		{"govcloud region", New("S", Env{Region: "us-gov-west-1"}, Options{}), ""},
		{"domain without hosted zone", New("S", Env{}, Options{Bucket: true, CDN: true, Domain: "blog.example.com"}), "needs a hosted zone id"},
		{"hosted zone without domain", New("S", Env{}, Options{Bucket: true, CDN: true, HostedZoneID: "Z1"}), "needs a domain"},
		{"name with path", New("../x", Env{}, Options{}), "stack name"},
		{"name with space", New("My Stack", Env{}, Options{}), "stack name"},
		{"name with digit first", New("1Stack", Env{}, Options{}), "stack name"},
		{"hyphenated name", New("My-Blog-Stack2", Env{}, Options{}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stack.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidStack))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DuplicateLogicalID(t *testing.T) {
	s := New("S", Env{}, Options{Bucket: true})
	s.add(Resource{LogicalID: BucketID, Kind: KindBucket})
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate logical id")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	s := New("BlogStack", Env{Account: "123456789012", Region: "eu-west-2"}, Options{Bucket: true})

	path, err := s.Write(dir, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "BlogStack.template.json"), path)

	var tmpl Template
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &tmpl))
	assert.Contains(t, tmpl.Resources, BucketID)

	var manifest Manifest
	data, err = os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, "aws://123456789012/eu-west-2", manifest.Artifacts["BlogStack"].Environment)
	assert.Equal(t, "BlogStack.template.json", manifest.Artifacts["BlogStack"].Properties.TemplateFile)
}

func TestWrite_YAML(t *testing.T) {
	dir := t.TempDir()
	s := New("BlogStack", Env{}, Options{Bucket: true})

	path, err := s.Write(dir, FormatYAML)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	resources, ok := doc["Resources"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, resources, BucketID)
}

func TestWrite_InvalidStackWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	_, err := New("S", Env{}, Options{CDN: true}).Write(dir, FormatJSON)
	require.Error(t, err)
	assert.NoDirExists(t, dir)
}

func TestWrite_RejectsUnsafeName(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out")
	_, err := New("../escape", Env{}, Options{}).Write(dir, FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStack))
	assert.NoFileExists(t, filepath.Join(root, "escape.template.json"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)
}
