package plan

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/pkg/adapters/memory"
	"github.com/aretw0/weaver/pkg/advice"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/avast/retry-go/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrUnknownKind is returned for advice kinds missing from the catalog.
var ErrUnknownKind = errors.New("unknown advice kind")

// Factory builds hooks from an advice entry's params.
type Factory func(params map[string]any) (domain.HookSet, error)

// Catalog maps advice kinds to factories.
type Catalog map[string]Factory

// Kinds returns the registered kinds, sorted.
func (c Catalog) Kinds() []string {
	kinds := make([]string, 0, len(c))
	for k := range c {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build resolves one advice entry.
func (c Catalog) Build(a Advice) (domain.HookSet, error) {
	factory, ok := c[a.Kind]
	if !ok {
		return domain.HookSet{}, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}
	set, err := factory(a.Params)
	if err != nil {
		return domain.HookSet{}, fmt.Errorf("advice %s: %w", a.Kind, err)
	}
	return set, nil
}

// Deps are the shared resources the default advice kinds draw on.
type Deps struct {
	Logger   *slog.Logger
	Observer prometheus.ObserverVec // labels advice.TimeLabels; required by "time"
	Locker   ports.DistributedLocker
}

// DefaultCatalog provides log, time, retry, memoize, suppress, recover and
// exclusive. A nil Logger discards output; a nil Locker serializes within the
// process only.
func DefaultCatalog(deps Deps) Catalog {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.Locker == nil {
		deps.Locker = memory.NewLocker()
	}

	return Catalog{
		"log": func(params map[string]any) (domain.HookSet, error) {
			var p struct {
				Level string `mapstructure:"level"`
			}
			if err := decode(params, &p); err != nil {
				return domain.HookSet{}, err
			}
			level, err := logging.ParseLevel(p.Level)
			if err != nil {
				return domain.HookSet{}, err
			}
			return advice.Log(deps.Logger, level), nil
		},
		"time": func(params map[string]any) (domain.HookSet, error) {
			if err := decode(params, &struct{}{}); err != nil {
				return domain.HookSet{}, err
			}
			if deps.Observer == nil {
				return domain.HookSet{}, errors.New("no observer configured")
			}
			return around(advice.Time(deps.Observer)), nil
		},
		"retry": func(params map[string]any) (domain.HookSet, error) {
			p := struct {
				Attempts uint          `mapstructure:"attempts"`
				Delay    time.Duration `mapstructure:"delay"`
				MaxDelay time.Duration `mapstructure:"max_delay"`
				Backoff  string        `mapstructure:"backoff"`
			}{Attempts: 3, Delay: 100 * time.Millisecond, Backoff: "fixed"}
			if err := decode(params, &p); err != nil {
				return domain.HookSet{}, err
			}
			if p.Attempts == 0 {
				return domain.HookSet{}, errors.New("attempts must be positive")
			}
			opts := []retry.Option{retry.Attempts(p.Attempts), retry.Delay(p.Delay)}
			switch p.Backoff {
			case "fixed":
				opts = append(opts, retry.DelayType(retry.FixedDelay))
			case "exponential":
				opts = append(opts, retry.DelayType(retry.BackOffDelay))
			default:
				return domain.HookSet{}, fmt.Errorf("unknown backoff %q", p.Backoff)
			}
			if p.MaxDelay > 0 {
				opts = append(opts, retry.MaxDelay(p.MaxDelay))
			}
			return around(advice.Retry(opts...)), nil
		},
		"memoize": func(params map[string]any) (domain.HookSet, error) {
			p := struct {
				Size int `mapstructure:"size"`
			}{Size: 128}
			if err := decode(params, &p); err != nil {
				return domain.HookSet{}, err
			}
			memo, err := advice.NewMemo(p.Size, nil)
			if err != nil {
				return domain.HookSet{}, err
			}
			return around(memo.Around), nil
		},
		"suppress": func(params map[string]any) (domain.HookSet, error) {
			var p struct {
				Fallback any `mapstructure:"fallback"`
			}
			if err := decode(params, &p); err != nil {
				return domain.HookSet{}, err
			}
			return around(advice.Suppress(nil, p.Fallback)), nil
		},
		"recover": func(params map[string]any) (domain.HookSet, error) {
			if err := decode(params, &struct{}{}); err != nil {
				return domain.HookSet{}, err
			}
			return around(advice.Recover()), nil
		},
		"exclusive": func(params map[string]any) (domain.HookSet, error) {
			p := struct {
				Key string        `mapstructure:"key"`
				TTL time.Duration `mapstructure:"ttl"`
			}{TTL: 30 * time.Second}
			if err := decode(params, &p); err != nil {
				return domain.HookSet{}, err
			}
			return around(advice.Exclusive(deps.Locker, p.Key, p.TTL)), nil
		},
	}
}

func around(h domain.Around) domain.HookSet {
	return domain.HookSet{Around: []domain.Around{h}}
}

// decode maps loosely typed params onto out. Durations may be written as
// strings ("250ms") and unknown keys are rejected.
func decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
