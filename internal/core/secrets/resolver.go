// Package secrets normalizes the secret-reference shapes a service config
// may carry into one canonical, ordered list of resolved secrets.
// The remote key-discovery side effect is isolated behind the Discoverer
// interface; everything else is pure.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/taskforge/internal/core/spec"
)

// =============================================================================
// Types
// =============================================================================

// ResolvedSecret is the canonical form every reference shape resolves to:
// the exposed environment variable name and the locator the orchestrator
// reads at task start.
type ResolvedSecret struct {
	Name      string
	ValueFrom string
}

// Kind discriminates the secret-reference shapes.
type Kind int

const (
	// KindClassic is a single env name mapped to a locator string.
	KindClassic Kind = iota
	// KindGroupedByLocator is one locator with an explicit key list.
	KindGroupedByLocator
	// KindGroupedByName is a secret name only; keys are discovered remotely.
	KindGroupedByName
	// KindSingleEnv maps the whole secret value to one env name, no key
	// suffix (auto_parse_keys_to_envs: false).
	KindSingleEnv
)

// Reference is one tagged secret reference. Only the fields meaningful for
// its Kind are set.
type Reference struct {
	Kind Kind

	// EnvName is the exposed variable name (Classic, SingleEnv).
	EnvName string
	// Locator is the secret id or ARN (Classic, GroupedByLocator, SingleEnv).
	Locator string
	// Keys lists the secret keys to expose (GroupedByLocator).
	Keys []string
	// SecretName is the remote secret's name (GroupedByName, SingleEnv).
	SecretName string
}

// Discoverer answers the remote questions secret resolution may ask.
// Implementations live in the shell; tests inject fakes.
type Discoverer interface {
	// DiscoverKeys returns the JSON object keys stored in the named secret
	// plus the secret's full locator. A secret whose value is not a JSON
	// object yields zero keys.
	DiscoverKeys(ctx context.Context, secretName string) ([]string, string, error)

	// ResolveARN resolves a secret name to its full locator without
	// exposing the value.
	ResolveARN(ctx context.Context, secretName string) (string, error)
}

// =============================================================================
// Errors
// =============================================================================

var (
	ErrDuplicateSecretName = errors.New("duplicate secret environment variable name")
	ErrNoDiscoverer        = errors.New("no secret discoverer configured")
)

// ResolutionError wraps a remote lookup failure with the secret it was for.
// It is fatal to the generation run: a partially resolved secret list must
// never reach the output document.
type ResolutionError struct {
	SecretName string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving secret %q: %v", e.SecretName, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// =============================================================================
// Reference Parsing
// =============================================================================

// ParseReferences reads the spec's secret declarations into tagged
// references, preserving document order: classic entries first, then
// secrets_envs entries.
func ParseReferences(s *spec.ServiceSpec) ([]Reference, error) {
	var refs []Reference

	for _, pair := range s.Secrets {
		refs = append(refs, Reference{
			Kind:    KindClassic,
			EnvName: pair.Name,
			Locator: pair.Value,
		})
	}

	for i, entry := range s.SecretsEnvs {
		id := strings.TrimSpace(entry.ID)
		name := strings.TrimSpace(entry.Name)

		if !entry.AutoParse() {
			refs = append(refs, Reference{
				Kind:       KindSingleEnv,
				EnvName:    strings.TrimSpace(entry.EnvName),
				Locator:    id,
				SecretName: name,
			})
			continue
		}

		if name != "" && id == "" && len(entry.Values) == 0 {
			refs = append(refs, Reference{
				Kind:       KindGroupedByName,
				SecretName: name,
			})
			continue
		}

		if id == "" {
			return nil, spec.NewConfigError(
				fmt.Sprintf("secrets_envs[%d]", i),
				"entry needs an id with values, a bare name, or auto_parse_keys_to_envs: false",
				spec.ErrInvalidSecretRef,
			)
		}

		refs = append(refs, Reference{
			Kind:    KindGroupedByLocator,
			Locator: id,
			Keys:    entry.Values,
		})
	}

	return refs, nil
}

// =============================================================================
// Resolution
// =============================================================================

// Resolve normalizes references into the canonical ordered list. Grouped-by-
// name references call the discoverer once per secret; discovered keys are
// sorted so the output stays deterministic regardless of remote ordering.
// Returns the resolved list, human-readable warnings, and the first error.
func Resolve(ctx context.Context, refs []Reference, discoverer Discoverer) ([]ResolvedSecret, []string, error) {
	resolved := make([]ResolvedSecret, 0, len(refs))
	var warnings []string
	seen := make(map[string]bool)

	add := func(envName, valueFrom string) error {
		if seen[envName] {
			return spec.NewConfigError(
				"",
				fmt.Sprintf("duplicate secret environment variable name detected: %q", envName),
				ErrDuplicateSecretName,
			)
		}
		seen[envName] = true
		resolved = append(resolved, ResolvedSecret{Name: envName, ValueFrom: valueFrom})
		return nil
	}

	for _, ref := range refs {
		switch ref.Kind {
		case KindClassic:
			if err := add(ref.EnvName, keyedLocator(ref.Locator, ref.EnvName)); err != nil {
				return nil, nil, err
			}

		case KindGroupedByLocator:
			for _, key := range ref.Keys {
				if err := add(key, keyedLocator(ref.Locator, key)); err != nil {
					return nil, nil, err
				}
			}

		case KindGroupedByName:
			if discoverer == nil {
				return nil, nil, &ResolutionError{SecretName: ref.SecretName, Err: ErrNoDiscoverer}
			}
			keys, fullARN, err := discoverer.DiscoverKeys(ctx, ref.SecretName)
			if err != nil {
				return nil, nil, &ResolutionError{SecretName: ref.SecretName, Err: err}
			}
			if len(keys) == 0 {
				warnings = append(warnings, fmt.Sprintf("no keys found in secret %q", ref.SecretName))
				continue
			}
			sorted := append([]string(nil), keys...)
			sort.Strings(sorted)
			for _, key := range sorted {
				if err := add(key, keyedLocator(fullARN, key)); err != nil {
					return nil, nil, err
				}
			}

		case KindSingleEnv:
			valueFrom := ref.Locator
			if valueFrom == "" {
				if discoverer == nil {
					return nil, nil, &ResolutionError{SecretName: ref.SecretName, Err: ErrNoDiscoverer}
				}
				arn, err := discoverer.ResolveARN(ctx, ref.SecretName)
				if err != nil {
					return nil, nil, &ResolutionError{SecretName: ref.SecretName, Err: err}
				}
				valueFrom = arn
			}
			if err := add(ref.EnvName, valueFrom); err != nil {
				return nil, nil, err
			}
		}
	}

	return resolved, warnings, nil
}

// keyedLocator builds the locator-with-key-suffix form the orchestrator
// expects for JSON-object secrets.
func keyedLocator(locator, key string) string {
	return fmt.Sprintf("%s:%s::", locator, key)
}
