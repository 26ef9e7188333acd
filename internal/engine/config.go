package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"

	"github.com/tidemark-labs/tidemark/internal/engine/costmodel"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Config controls a single backtest run. StartTime and EndTime restrict the
// simulated period when set; when absent the run covers the full data range.
type Config struct {
	InitialCapital float64                    `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting cash for the run,minimum=0"`
	CommissionRate float64                    `yaml:"commission_rate" json:"commission_rate" validate:"gte=0" jsonschema:"title=Commission Rate,description=Proportional commission charged on fill value,minimum=0"`
	SlippageModel  costmodel.SlippageModel    `yaml:"slippage_model" json:"slippage_model" jsonschema:"title=Slippage Model,description=Slippage model applied to fills"`
	SlippageBps    float64                    `yaml:"slippage_bps" json:"slippage_bps" validate:"gte=0" jsonschema:"title=Slippage Bps,description=Slippage magnitude in basis points,minimum=0"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the simulated period"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the simulated period"`
}

// DefaultConfig returns a config with zero costs, suitable as a baseline for
// tests and for optimizer trials that override only what they sweep.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 10000,
		CommissionRate: 0,
		SlippageModel:  costmodel.SlippageZero,
		SlippageBps:    0,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
	}
}

// UnmarshalYAML implements custom unmarshaling for Config so that absent
// start_time/end_time keys map to None rather than zero times.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		InitialCapital float64                 `yaml:"initial_capital"`
		CommissionRate float64                 `yaml:"commission_rate"`
		SlippageModel  costmodel.SlippageModel `yaml:"slippage_model"`
		SlippageBps    float64                 `yaml:"slippage_bps"`
		StartTime      *time.Time              `yaml:"start_time"`
		EndTime        *time.Time              `yaml:"end_time"`
	}

	var plain plainConfig
	if err := unmarshal(&plain); err != nil {
		return err
	}

	c.InitialCapital = plain.InitialCapital
	c.CommissionRate = plain.CommissionRate
	c.SlippageModel = plain.SlippageModel
	c.SlippageBps = plain.SlippageBps
	if plain.StartTime != nil {
		c.StartTime = optional.Some(*plain.StartTime)
	}
	if plain.EndTime != nil {
		c.EndTime = optional.Some(*plain.EndTime)
	}

	return nil
}

// Validate checks the config before a run starts. Every violation is a
// configuration error, never a mid-run failure.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if c.InitialCapital <= 0 {
			return errors.Wrapf(errors.ErrCodeInvalidCapital, err, "initial capital must be positive, got %v", c.InitialCapital)
		}
		if c.CommissionRate < 0 {
			return errors.Wrapf(errors.ErrCodeInvalidCommission, err, "commission rate must be non-negative, got %v", c.CommissionRate)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine configuration", err)
	}

	if c.SlippageModel == "" {
		c.SlippageModel = costmodel.SlippageZero
	}
	if _, err := costmodel.GetSlippageHandler(c.SlippageModel, c.SlippageBps); err != nil {
		return err
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() {
		start := c.StartTime.Unwrap()
		end := c.EndTime.Unwrap()
		if end.Before(start) {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "end time %s is before start time %s", end, start)
		}
	}

	return nil
}

// GenerateSchema generates a JSON schema for Config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "costmodel.SlippageModel") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: costmodel.AllSlippageModels,
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-engine-config"
	schema.Description = "Configuration schema for the backtest engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
