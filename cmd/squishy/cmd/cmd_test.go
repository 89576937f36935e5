package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/bbkr/squishyid/pkg/api"
	"github.com/bbkr/squishyid/pkg/codec"
	"github.com/bbkr/squishyid/pkg/config"
	"github.com/bbkr/squishyid/pkg/di"
	"github.com/bbkr/squishyid/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "2BjLhRduC6Tb8Q5cEk9oxnFaWUDpOlGAgwYzNre7tI4yqPvXm0KSV1fJs3ZiHM"

func testCodec(t *testing.T) *codec.SquishyID {
	t.Helper()
	c, err := codec.New(testKey)
	require.NoError(t, err)
	return c
}

func TestRunEncode(t *testing.T) {
	c := testCodec(t)

	t.Run("numbers", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runEncode(&out, c, []string{"48888851145", "0", "18446744073709551615"}))
		assert.Equal(t, "1FN7Ab\n2\nnH4kNBdTkYc\n", out.String())
	})

	t.Run("not a number", func(t *testing.T) {
		var out bytes.Buffer
		err := runEncode(&out, c, []string{"1", "abc", "2"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid number "abc"`)
		assert.Equal(t, "B\n", out.String(), "values before the bad one are printed")
	})

	t.Run("negative", func(t *testing.T) {
		assert.Error(t, runEncode(&bytes.Buffer{}, c, []string{"-1"}))
	})
}

func TestRunDecode(t *testing.T) {
	c := testCodec(t)

	t.Run("values", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runDecode(&out, c, []string{"1FN7Ab", "2", "nH4kNBdTkYc"}))
		assert.Equal(t, "48888851145\n0\n18446744073709551615\n", out.String())
	})

	t.Run("codec errors are returned as is", func(t *testing.T) {
		err := runDecode(&bytes.Buffer{}, c, []string{"1FN7A!"})
		assert.Equal(t, codec.ErrUnknownCharacter, err)

		err = runDecode(&bytes.Buffer{}, c, []string{""})
		assert.Equal(t, codec.ErrEmptyInput, err)

		err = runDecode(&bytes.Buffer{}, c, []string{"BBBBBBBBBBBB"})
		assert.Equal(t, codec.ErrDecodeOverflow, err)
	})
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("1\n\n  2 \r\n3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, lines)
}

func TestRunKeygen(t *testing.T) {
	t.Run("charset", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runKeygen(&out, config.CharsetDigits, ""))

		key := strings.TrimSpace(out.String())
		digits := strings.Split(key, "")
		sort.Strings(digits)
		assert.Equal(t, "0123456789", strings.Join(digits, ""))
	})

	t.Run("custom characters", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runKeygen(&out, config.CharsetDigits, "xyz"))
		assert.Len(t, strings.TrimSpace(out.String()), 3)
	})

	t.Run("unusable characters", func(t *testing.T) {
		err := runKeygen(&bytes.Buffer{}, "", "xx")
		assert.ErrorIs(t, err, codec.ErrDuplicateKeyCharacters)
	})

	t.Run("unknown charset", func(t *testing.T) {
		assert.Error(t, runKeygen(&bytes.Buffer{}, "runes", ""))
	})
}

func TestRunInit(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "squishy", "config.yaml")
	dataDir := filepath.Join(tmpDir, "data")

	var out bytes.Buffer
	require.NoError(t, runInit(&out, configPath, dataDir, config.CharsetLower, false))

	assert.FileExists(t, configPath)
	assert.DirExists(t, dataDir)
	assert.Contains(t, out.String(), "Configuration created")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Key, 26)
	assert.Contains(t, out.String(), cfg.Key)

	t.Run("refuses to overwrite", func(t *testing.T) {
		err := runInit(&bytes.Buffer{}, configPath, dataDir, config.CharsetLower, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--force")

		again, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, cfg.Key, again.Key)
	})

	t.Run("force", func(t *testing.T) {
		require.NoError(t, runInit(&bytes.Buffer{}, configPath, dataDir, config.CharsetDigits, true))

		again, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Len(t, again.Key, 10)
	})
}

func TestRootCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Key = "01"
	require.NoError(t, config.SaveConfig(cfg, configPath))

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetIn(strings.NewReader(""))
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		return out.String(), err
	}
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	t.Run("key from config", func(t *testing.T) {
		out, err := execute("encode", "--config", configPath, "--key", "", "10")
		require.NoError(t, err)
		assert.Equal(t, "1010\n", out)
	})

	t.Run("key flag overrides config", func(t *testing.T) {
		out, err := execute("encode", "--config", configPath, "--key", testKey, "48888851145")
		require.NoError(t, err)
		assert.Equal(t, "1FN7Ab\n", out)

		out, err = execute("decode", "--config", configPath, "--key", testKey, "1FN7Ab")
		require.NoError(t, err)
		assert.Equal(t, "48888851145\n", out)
	})

	t.Run("codec error printed verbatim", func(t *testing.T) {
		out, err := execute("decode", "--config", configPath, "--key", testKey, "1FN7A!")
		require.Error(t, err)
		assert.Contains(t, out, "Error: Encoded value contains character not present in key.")
	})

	t.Run("invalid key", func(t *testing.T) {
		_, err := execute("encode", "--config", configPath, "--key", "aa", "1")
		require.Error(t, err)
		assert.ErrorIs(t, err, codec.ErrDuplicateKeyCharacters)
	})

	t.Run("missing explicit config", func(t *testing.T) {
		_, err := execute("encode", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "--key", "", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})
}

// memRegistryFactory opens in-memory registries
type memRegistryFactory struct {
	dataDir string
}

func (f *memRegistryFactory) OpenRegistry(dataDir string, logger *slog.Logger) (api.RegistryService, error) {
	f.dataDir = dataDir
	r, err := registry.Open("mem", registry.Options{InMemory: true, Logger: logger})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// recordingStarter records what it was started with and returns at once
type recordingStarter struct {
	started  bool
	config   api.ServerConfig
	radix    int
	registry api.IRegistry
}

func (s *recordingStarter) StartServer(ctx context.Context, c *codec.SquishyID, reg api.IRegistry, config api.ServerConfig, logger *slog.Logger) error {
	s.started = true
	s.config = config
	s.radix = c.Radix()
	s.registry = reg
	return nil
}

type recordingServerFactory struct {
	starter *recordingStarter
}

func (f recordingServerFactory) CreateServerStarter() api.ServerStarter {
	return f.starter
}

func setupContainer(t *testing.T) (*memRegistryFactory, *recordingStarter) {
	t.Helper()
	registries := &memRegistryFactory{}
	starter := &recordingStarter{}

	c := di.NewContainer()
	c.SetRegistryFactory(registries)
	c.SetServerFactory(recordingServerFactory{starter: starter})
	SetContainer(c)
	t.Cleanup(func() { SetContainer(nil) })

	return registries, starter
}

func TestRunServe(t *testing.T) {
	registries, starter := setupContainer(t)

	cfg := config.DefaultConfig()
	cfg.Key = testKey
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Port = 9000
	cfg.Bind = "0.0.0.0"
	cfg.Security.APIKey = "secret"

	var out bytes.Buffer
	require.NoError(t, runServe(context.Background(), &out, &bytes.Buffer{}, cfg))

	assert.True(t, starter.started)
	assert.Equal(t, 9000, starter.config.Port)
	assert.Equal(t, "0.0.0.0", starter.config.Bind)
	assert.Equal(t, "secret", starter.config.APIKey)
	assert.Equal(t, 62, starter.radix)
	assert.NotNil(t, starter.registry)
	assert.Equal(t, cfg.DataDir, registries.dataDir)
	assert.DirExists(t, cfg.DataDir)
	assert.Contains(t, out.String(), "Starting SquishyID server on 0.0.0.0:9000")
}

func TestRunServe_AutoAPIKey(t *testing.T) {
	_, starter := setupContainer(t)

	cfg := config.DefaultConfig()
	cfg.Key = testKey
	cfg.DataDir = t.TempDir()

	var out bytes.Buffer
	require.NoError(t, runServe(context.Background(), &out, &bytes.Buffer{}, cfg))

	assert.Len(t, starter.config.APIKey, 64)
	assert.Contains(t, out.String(), starter.config.APIKey)
}

func TestRunServe_InvalidConfig(t *testing.T) {
	_, starter := setupContainer(t)

	cfg := config.DefaultConfig()
	cfg.Key = "abca"
	cfg.DataDir = t.TempDir()

	err := runServe(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg)
	assert.ErrorIs(t, err, codec.ErrDuplicateKeyCharacters)
	assert.False(t, starter.started)
}

func TestRunServe_NoContainer(t *testing.T) {
	SetContainer(nil)

	cfg := config.DefaultConfig()
	cfg.Key = testKey

	err := runServe(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency container not initialized")
}

func TestRunServe_DataDirIsFile(t *testing.T) {
	setupContainer(t)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	cfg := config.DefaultConfig()
	cfg.Key = testKey
	cfg.DataDir = blocker
	cfg.Security.APIKey = "secret"

	err := runServe(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create data directory")
}
