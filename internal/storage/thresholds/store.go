// Package thresholds stores the user-editable trading thresholds in a YAML file.
package thresholds

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/momentum/internal/domain"
)

const DefaultPath = "./data/thresholds.yaml"

// FileStore loads and saves thresholds. Loading never fails: a missing or
// malformed file yields defaults plus a warning.
type FileStore struct {
	path     string
	validate *validator.Validate
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &FileStore{path: path, validate: v}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the thresholds and returns them with any validation warnings.
// Fields missing from the file keep their default values.
func (s *FileStore) Load() (domain.ThresholdConfig, []string) {
	cfg := domain.DefaultThresholds()

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			var warnings []string
			if err := s.Save(cfg); err != nil {
				warnings = append(warnings, fmt.Sprintf("could not create default thresholds file: %v", err))
			}
			return cfg, warnings
		}
		return cfg, []string{fmt.Sprintf("read thresholds: %v, using defaults", err)}
	}

	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return domain.DefaultThresholds(), []string{fmt.Sprintf("malformed thresholds file: %v, using defaults", err)}
	}

	return cfg, s.Validate(cfg)
}

// Validate returns warnings for out-of-range or inconsistent values.
func (s *FileStore) Validate(cfg domain.ThresholdConfig) []string {
	var warnings []string
	outOfLimits := make(map[string]bool)

	if err := s.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{fmt.Sprintf("validate thresholds: %v", err)}
		}
		for _, fe := range verrs {
			outOfLimits[fe.Field()] = true
			warnings = append(warnings, limitWarning(fe))
		}
	}

	for _, r := range domain.RecommendedRanges {
		if outOfLimits[r.Field] {
			continue
		}
		v := r.Value(cfg)
		switch {
		case v < r.Min:
			warnings = append(warnings, fmt.Sprintf("%s=%v is below recommended range (%v-%v)", r.Field, v, r.Min, r.Max))
		case v > r.Max:
			warnings = append(warnings, fmt.Sprintf("%s=%v is above recommended range (%v-%v)", r.Field, v, r.Min, r.Max))
		}
	}

	if s.validate.VarWithValue(cfg.RSIBuy, cfg.RSISell, "ltfield") != nil {
		warnings = append(warnings, "rsi_buy_threshold should be less than rsi_sell_threshold")
	}
	if s.validate.VarWithValue(cfg.StopLoss, cfg.StopProfit, "ltfield") != nil {
		warnings = append(warnings, "stop_loss is not below stop_profit, consider adjusting")
	}

	return warnings
}

func limitWarning(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s=%v is below minimum (%s)", fe.Field(), fe.Value(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s=%v is above maximum (%s)", fe.Field(), fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s=%v failed validation: %s", fe.Field(), fe.Value(), fe.Tag())
	}
}

// Save writes the thresholds atomically via a temp file.
func (s *FileStore) Save(cfg domain.ThresholdConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create thresholds dir")
	}

	payload, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode thresholds")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write thresholds temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist thresholds")
	}

	return nil
}
