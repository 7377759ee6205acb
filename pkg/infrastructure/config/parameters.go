package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/domain/repositories"
)

// EnvPrefix prefixes environment overrides of scalar parameters
// (AEROSIM_CARBON_PRICE_SCALAR=... overrides carbon_price_scalar)
const EnvPrefix = "AEROSIM"

// ParameterFile is the numeric side of a scenario: its horizon, every input
// parameter and the reporting metadata of its variables
type ParameterFile struct {
	TimeIndex  entities.TimeIndex
	Parameters map[string]entities.Value
	Info       []entities.VariableInfo
}

// LoadParameterFile reads a YAML or JSON parameter file. A parameter is a
// number (scalar), a string (text), a list of values starting at the
// historic start year, a full series {start_year, values}, or sparse
// reference points {year: value} interpolated over the whole horizon.
func LoadParameterFile(path string) (*ParameterFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read parameter file %s: %w", path, err)
	}

	var ti entities.TimeIndex
	if err := v.UnmarshalKey("time_index", &ti); err != nil {
		return nil, fmt.Errorf("failed to decode time_index: %w", err)
	}
	if err := ti.Validate(); err != nil {
		return nil, fmt.Errorf("invalid time_index: %w", err)
	}

	raw := v.GetStringMap("parameters")
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make(map[string]entities.Value, len(raw))
	for _, name := range names {
		value, err := decodeValue(ti, raw[name])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		if value.Kind() == entities.KindScalar {
			value, err = scalarOverride(v, name, value)
			if err != nil {
				return nil, err
			}
		}
		params[name] = value
	}

	var info []entities.VariableInfo
	if err := v.UnmarshalKey("data_information", &info); err != nil {
		return nil, fmt.Errorf("failed to decode data_information: %w", err)
	}

	return &ParameterFile{TimeIndex: ti, Parameters: params, Info: info}, nil
}

// Apply loads the parameters and their metadata into a repository
func (f *ParameterFile) Apply(repo repositories.ParameterRepository) error {
	if err := repo.LoadParameters(f.Parameters); err != nil {
		return fmt.Errorf("failed to load parameters: %w", err)
	}
	if err := repo.LoadInfo(f.Info); err != nil {
		return fmt.Errorf("failed to load data information: %w", err)
	}
	return nil
}

// scalarOverride replaces a scalar with its environment variable, if set
func scalarOverride(v *viper.Viper, name string, value entities.Value) (entities.Value, error) {
	key := "parameters." + name
	env := EnvPrefix + "_" + strings.ToUpper(name)
	if err := v.BindEnv(key, env); err != nil {
		return value, fmt.Errorf("failed to bind %s: %w", env, err)
	}
	s, ok := v.Get(key).(string)
	if !ok {
		return value, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return value, fmt.Errorf("invalid %s override: %q", env, s)
	}
	return entities.ScalarValue(f), nil
}

func decodeValue(ti entities.TimeIndex, raw interface{}) (entities.Value, error) {
	switch x := raw.(type) {
	case string:
		return entities.TextValue(x), nil
	case []interface{}:
		values, err := toFloats(x)
		if err != nil {
			return entities.Value{}, err
		}
		return entities.SeriesValue(entities.NewTimeSeriesFromValues(ti.HistoricStartYear, values)), nil
	case map[string]interface{}:
		return decodeMap(ti, x)
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = v
		}
		return decodeMap(ti, m)
	default:
		f, err := toFloat(raw)
		if err != nil {
			return entities.Value{}, err
		}
		return entities.ScalarValue(f), nil
	}
}

func decodeMap(ti entities.TimeIndex, m map[string]interface{}) (entities.Value, error) {
	if rawValues, ok := m["values"]; ok {
		list, ok := rawValues.([]interface{})
		if !ok {
			return entities.Value{}, fmt.Errorf("values must be a list, got %T", rawValues)
		}
		values, err := toFloats(list)
		if err != nil {
			return entities.Value{}, err
		}
		start := ti.HistoricStartYear
		if rawStart, ok := m["start_year"]; ok {
			f, err := toFloat(rawStart)
			if err != nil {
				return entities.Value{}, fmt.Errorf("start_year: %w", err)
			}
			start = int(f)
		}
		return entities.SeriesValue(entities.NewTimeSeriesFromValues(start, values)), nil
	}

	points := make(map[int]float64, len(m))
	for k, raw := range m {
		year, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return entities.Value{}, fmt.Errorf("reference point key must be a year, got %q", k)
		}
		f, err := toFloat(raw)
		if err != nil {
			return entities.Value{}, fmt.Errorf("year %d: %w", year, err)
		}
		points[year] = f
	}
	ts, err := entities.InterpolateSeries(ti.HistoricStartYear, ti.EndYear, points)
	if err != nil {
		return entities.Value{}, err
	}
	return entities.SeriesValue(ts), nil
}

func toFloats(list []interface{}) ([]float64, error) {
	values := make([]float64, len(list))
	for i, raw := range list {
		f, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values[i] = f
	}
	return values, nil
}

func toFloat(raw interface{}) (float64, error) {
	switch x := raw.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
}
