package loaders

import (
	"fmt"
	"strconv"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetIntParam extracts an integer parameter from a PBRT statement
func (stmt *PBRTStatement) GetIntParam(name string) (int, bool) {
	values, ok := stmt.GetIntsParam(name)
	if !ok || len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

// GetIntsParam extracts an integer array parameter. It fails if any value
// is not an integer.
func (stmt *PBRTStatement) GetIntsParam(name string) ([]int, bool) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, false
	}
	values := make([]int, len(param.Values))
	for i, s := range param.Values {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// GetBoolParam extracts a bool parameter, accepting quoted or bare true/false
func (stmt *PBRTStatement) GetBoolParam(name string) (bool, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return false, false
	}
	v, err := strconv.ParseBool(unquote(param.Values[0]))
	if err != nil {
		return false, false
	}
	return v, true
}

// GetRGBParam extracts an RGB color parameter from a PBRT statement
func (stmt *PBRTStatement) GetRGBParam(name string) (*core.Vec3, bool) {
	return stmt.getVec3Param(name)
}

// GetPoint3Param extracts a point3 parameter from a PBRT statement
func (stmt *PBRTStatement) GetPoint3Param(name string) (*core.Vec3, bool) {
	return stmt.getVec3Param(name)
}

// GetPoint3sParam extracts a flat point3 array as a list of points
func (stmt *PBRTStatement) GetPoint3sParam(name string) ([]core.Vec3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values)%3 != 0 {
		return nil, false
	}
	floats, err := parseFloats(param.Values)
	if err != nil {
		return nil, false
	}
	points := make([]core.Vec3, 0, len(floats)/3)
	for i := 0; i < len(floats); i += 3 {
		points = append(points, core.NewVec3(floats[i], floats[i+1], floats[i+2]))
	}
	return points, true
}

func (stmt *PBRTStatement) getVec3Param(name string) (*core.Vec3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) < 3 {
		return nil, false
	}
	v, err := parseFloats(param.Values[:3])
	if err != nil {
		return nil, false
	}
	return &core.Vec3{X: v[0], Y: v[1], Z: v[2]}, true
}

// GetStringParam extracts a string parameter from a PBRT statement, without quotes
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return unquote(param.Values[0]), true
}

// IsAreaLight checks if a shape statement was declared under an AreaLightSource
func (stmt *PBRTStatement) IsAreaLight() bool {
	return stmt.AreaLight != nil
}

// vectorValues parses the bare "values" of a LookAt or transform directive
func (stmt *PBRTStatement) vectorValues(n int) ([]float64, error) {
	values := stmt.Parameters["values"].Values
	if len(values) != n {
		return nil, fmt.Errorf("%s requires %d values, got %d", stmt.Type, n, len(values))
	}
	return parseFloats(values)
}

func parseFloats(values []string) ([]float64, error) {
	floats := make([]float64, len(values))
	for i, s := range values {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s': %w", s, err)
		}
		floats[i] = v
	}
	return floats, nil
}
