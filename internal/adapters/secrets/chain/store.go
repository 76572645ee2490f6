package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/codelynx/internal/adapters/secrets/file"
	passstore "github.com/bnema/codelynx/internal/adapters/secrets/pass"
	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
)

// Backend is one named link of the chain.
type Backend struct {
	Name  string
	Store ports.SecretStore
}

// Store tries each backend in order. Reads return the first hit, writes land in the first backend
// that accepts them and deletes reach every backend so a stale copy cannot shadow a rotated key.
type Store struct {
	backends []Backend
}

var _ ports.SecretStore = (*Store)(nil)

var errNoBackends = errors.New("secret chain has no backends")

func NewStore(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("secret backend %d (%s) is nil", i, backend.Name)
		}
	}

	return &Store{backends: backends}, nil
}

// NewPassFirstWithFileFallback prefers the pass password manager and falls back to files under fileRoot.
func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStore(
		Backend{Name: "pass", Store: passstore.NewStore()},
		Backend{Name: "file", Store: filestore.NewStore(fileRoot)},
	)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if isContextError(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("%s backend: %w", backend.Name, err))
	}

	if allNotFound(errs) {
		return "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}

	return "", fmt.Errorf("get secret %q: %w", key, errors.Join(errs...))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if isContextError(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend: %w", backend.Name, err))
	}

	return fmt.Errorf("put secret %q: %w", key, errors.Join(errs...))
}

// Delete reaches every backend. Backends without the key, or without a usable tool, are skipped;
// any other failure is reported because the copy it kept would shadow the next Get.
func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Delete(ctx, key)
		if err == nil {
			continue
		}
		if isContextError(err) {
			return err
		}
		if allNotFound([]error{err}) {
			continue
		}
		errs = append(errs, fmt.Errorf("%s backend: %w", backend.Name, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("delete secret %q: %w", key, errors.Join(errs...))
	}

	return nil
}

func allNotFound(errs []error) bool {
	for _, err := range errs {
		if !errors.Is(err, domain.ErrSecretNotFound) && !errors.Is(err, passstore.ErrUnavailable) {
			return false
		}
	}
	return true
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
