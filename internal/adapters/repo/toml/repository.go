package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	usagePathKey    = "usage.path"
	usageFileMode   = 0o600
	usageDirMode    = 0o700
	usageConfigDir  = ".codelynx"
	usageConfigFile = "usage.toml"
	tempFilePattern = ".usage-*.toml.tmp"
)

// UsageRepository stores the usage record as a single versioned TOML document.
type UsageRepository struct {
	usagePath string
	mu        *sync.RWMutex
	now       func() time.Time
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.UsageRepository = (*UsageRepository)(nil)

func NewUsageRepository(cfg *viper.Viper) (*UsageRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, usageConfigDir, usageConfigFile)

	if cfg.ConfigFileUsed() == "" {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(filepath.Join(homeDir, usageConfigDir))

		err = cfg.ReadInConfig()
		if err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}
	cfg.SetDefault(usagePathKey, defaultPath)

	usagePath := cfg.GetString(usagePathKey)
	if usagePath == "" {
		return nil, errors.New("usage path is empty")
	}
	usagePath, err = normalizeUsagePath(usagePath, homeDir)
	if err != nil {
		return nil, err
	}

	return &UsageRepository{usagePath: usagePath, mu: lockForPath(usagePath), now: time.Now}, nil
}

func (r *UsageRepository) Path() string {
	return r.usagePath
}

func (r *UsageRepository) Load(ctx context.Context) (domain.UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.UsageRecord{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.UsageRecord{}, err
	}

	return fromSchema(file.Usage), nil
}

func (r *UsageRepository) Save(ctx context.Context, record domain.UsageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	file.Usage = toSchema(record)
	file.UpdatedAt = r.now().UTC().Format(time.RFC3339)

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *UsageRepository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.usagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read usage file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode usage file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeUsagePath(path string, homeDir string) (string, error) {
	if path == "~" || len(path) > 1 && path[0] == '~' && os.IsPathSeparator(path[1]) {
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve usage path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *UsageRepository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.usagePath), usageDirMode); err != nil {
		return fmt.Errorf("create usage directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode usage file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.usagePath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp usage file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp usage file: %w", err)
	}

	if err := tempFile.Chmod(usageFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp usage file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp usage file: %w", err)
	}

	if err := os.Rename(tempName, r.usagePath); err != nil {
		return fmt.Errorf("replace usage file: %w", err)
	}

	cleanup = false
	return nil
}
