package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type          string               // Statement type (Camera, Material, Shape, etc.)
	Subtype       string               // Subtype (perspective, diffuse, sphere, etc.)
	Parameters    map[string]PBRTParam // Named parameters
	MaterialIndex int                  // For shapes: index into PBRTScene.Materials (-1 = no material)
	Translation   core.Vec3            // For shapes: accumulated Translate of the graphics state
	AreaLight     *PBRTStatement       // For shapes: active AreaLightSource, nil if none
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, point3, integer, string, bool)
	Values []string // Parameter values as strings, quotes preserved
}

// PBRTLookAt holds the LookAt camera placement
type PBRTLookAt struct {
	Eye, At, Up core.Vec3
}

// PBRTScene contains all parsed PBRT scene data
type PBRTScene struct {
	// Pre-WorldBegin statements
	Camera     *PBRTStatement
	LookAt     *PBRTLookAt
	Film       *PBRTStatement
	Sampler    *PBRTStatement
	Integrator *PBRTStatement

	// World content
	Materials    []PBRTStatement // Material and MakeNamedMaterial, in definition order
	Shapes       []PBRTStatement
	LightSources []PBRTStatement

	// Directives that were parsed but have no effect on the scene
	Ignored []string
}

// graphicsState is the part of the PBRT graphics state the parser tracks
// across AttributeBegin/AttributeEnd
type graphicsState struct {
	materialIndex int
	areaLight     *PBRTStatement
	translation   core.Vec3
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene          *PBRTScene
	state          graphicsState
	stateStack     []graphicsState
	namedMaterials map[string]int
	inWorld        bool
	statementLines []string
}

// statementTypes are the directives that begin a new statement
var statementTypes = []string{
	"Camera", "Film", "Sampler", "Integrator", "LookAt", "PixelFilter", "Accelerator",
	"Material", "MakeNamedMaterial", "NamedMaterial", "Shape", "LightSource", "AreaLightSource",
	"Translate", "Rotate", "Scale", "Transform", "ReverseOrientation", "Attribute",
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTScene, error) {
	parser := NewPBRTParser()

	scanner := bufio.NewScanner(reader)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	if err := parser.flush(); err != nil {
		return nil, fmt.Errorf("at end of file: %w", err)
	}
	return parser.scene, nil
}

// LoadPBRT loads and parses a PBRT scene file
func LoadPBRT(filename string) (*PBRTScene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PBRT file: %w", err)
	}
	defer file.Close()

	return ParsePBRT(file)
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{
		scene:          &PBRTScene{},
		state:          graphicsState{materialIndex: -1},
		namedMaterials: make(map[string]int),
	}
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	if i := commentStart(line); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd", "TransformBegin", "TransformEnd":
		if err := p.flush(); err != nil {
			return err
		}
		p.blockDirective(line)
		return nil
	}

	if isStatementStart(line) {
		if err := p.flush(); err != nil {
			return err
		}
		p.statementLines = []string{line}
		return nil
	}

	// Continuation of a multi-line statement
	if len(p.statementLines) == 0 {
		return fmt.Errorf("unexpected continuation line: %s", line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

func (p *PBRTParser) blockDirective(line string) {
	switch line {
	case "WorldBegin":
		p.inWorld = true
		// WorldBegin resets the transformation
		p.state.translation = core.Vec3{}
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin", "TransformBegin":
		p.stateStack = append(p.stateStack, p.state)
	case "AttributeEnd", "TransformEnd":
		if n := len(p.stateStack); n > 0 {
			restored := p.stateStack[n-1]
			if line == "TransformEnd" {
				// TransformEnd only restores the transformation
				p.state.translation = restored.translation
			} else {
				p.state = restored
			}
			p.stateStack = p.stateStack[:n-1]
		}
	}
}

// flush parses and routes the accumulated statement, if any
func (p *PBRTParser) flush() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("error parsing statement '%s': %w", fullStatement, err)
	}
	return p.routeStatement(stmt)
}

// routeStatement applies a parsed statement to the scene and graphics state
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "LookAt":
		lookAt, err := parseLookAt(stmt)
		if err != nil {
			return fmt.Errorf("error parsing LookAt: %w", err)
		}
		p.scene.LookAt = lookAt
	case "Camera":
		p.scene.Camera = stmt
	case "Film":
		p.scene.Film = stmt
	case "Sampler":
		p.scene.Sampler = stmt
	case "Integrator":
		p.scene.Integrator = stmt
	case "Material":
		p.scene.Materials = append(p.scene.Materials, *stmt)
		p.state.materialIndex = len(p.scene.Materials) - 1
	case "MakeNamedMaterial":
		p.scene.Materials = append(p.scene.Materials, *stmt)
		p.namedMaterials[stmt.Subtype] = len(p.scene.Materials) - 1
	case "NamedMaterial":
		idx, ok := p.namedMaterials[stmt.Subtype]
		if !ok {
			return fmt.Errorf("named material '%s' not defined", stmt.Subtype)
		}
		p.state.materialIndex = idx
	case "Shape":
		stmt.MaterialIndex = p.state.materialIndex
		stmt.Translation = p.state.translation
		stmt.AreaLight = p.state.areaLight
		p.scene.Shapes = append(p.scene.Shapes, *stmt)
	case "LightSource":
		stmt.Translation = p.state.translation
		p.scene.LightSources = append(p.scene.LightSources, *stmt)
	case "AreaLightSource":
		p.state.areaLight = stmt
	case "Translate":
		v, err := stmt.vectorValues(3)
		if err != nil {
			return fmt.Errorf("error parsing Translate: %w", err)
		}
		p.state.translation = p.state.translation.Add(core.NewVec3(v[0], v[1], v[2]))
	default:
		p.scene.Ignored = append(p.scene.Ignored, stmt.Type)
	}
	return nil
}

// validateFilePath rejects paths that cannot name a PBRT scene file
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}
	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}
	if !strings.HasSuffix(strings.ToLower(cleanPath), ".pbrt") {
		return fmt.Errorf("invalid file type: only .pbrt files are allowed")
	}
	return nil
}

// parseLookAt parses the 9 values eye, at and up of a LookAt statement
func parseLookAt(stmt *PBRTStatement) (*PBRTLookAt, error) {
	v, err := stmt.vectorValues(9)
	if err != nil {
		return nil, err
	}
	return &PBRTLookAt{
		Eye: core.NewVec3(v[0], v[1], v[2]),
		At:  core.NewVec3(v[3], v[4], v[5]),
		Up:  core.NewVec3(v[6], v[7], v[8]),
	}, nil
}

// commentStart returns the index of a '#' outside quotes, or -1
func commentStart(line string) int {
	inQuotes := false
	for i, c := range line {
		switch c {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return i
			}
		}
	}
	return -1
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	emit := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"':
			current.WriteRune(char)
			if inBrackets {
				continue
			}
			if inQuotes {
				emit()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			emit()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			emit()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			emit()
		default:
			current.WriteRune(char)
		}
	}
	emit()

	return tokens
}

// parseStatement parses a single PBRT statement
func parseStatement(line string) (*PBRTStatement, error) {
	// Bare-number directives: LookAt and the transforms
	for _, directive := range []string{"LookAt", "Translate", "Rotate", "Scale", "Transform"} {
		if strings.HasPrefix(line, directive) {
			parts := strings.Fields(strings.Trim(line[len(directive):], " []"))
			return &PBRTStatement{
				Type: directive,
				Parameters: map[string]PBRTParam{
					"values": {Type: "float", Values: parts},
				},
			}, nil
		}
	}

	// Regular statements: Type "subtype" "type name" value ...
	parts := tokenizePBRT(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:          parts[0],
		Parameters:    make(map[string]PBRTParam),
		MaterialIndex: -1,
	}
	parts = parts[1:]

	if len(parts) > 0 && isQuoted(parts[0]) && len(strings.Fields(unquote(parts[0]))) == 1 {
		stmt.Subtype = unquote(parts[0])
		parts = parts[1:]
	}

	for i := 0; i < len(parts); i++ {
		if !isQuoted(parts[i]) {
			continue
		}
		paramParts := strings.Fields(unquote(parts[i]))
		if len(paramParts) != 2 {
			continue
		}

		var values []string
		if i+1 < len(parts) {
			next := parts[i+1]
			if strings.HasPrefix(next, "[") && strings.HasSuffix(next, "]") {
				values = splitArray(strings.TrimSpace(next[1 : len(next)-1]))
				i++
			} else if !isQuoted(next) || !looksLikeParamDecl(next) {
				values = []string{next}
				i++
			}
		}

		stmt.Parameters[paramParts[1]] = PBRTParam{
			Type:   paramParts[0],
			Values: values,
		}
	}

	return stmt, nil
}

// splitArray splits the inside of a bracketed array, keeping quoted strings whole
func splitArray(s string) []string {
	var values []string
	for _, tok := range tokenizePBRT(s) {
		if isQuoted(tok) {
			values = append(values, tok)
			continue
		}
		values = append(values, strings.Fields(tok)...)
	}
	return values
}

func isQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")
}

func unquote(s string) string {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// looksLikeParamDecl reports whether a quoted token is a "type name" declaration
func looksLikeParamDecl(s string) bool {
	fields := strings.Fields(unquote(s))
	if len(fields) != 2 {
		return false
	}
	switch fields[0] {
	case "float", "integer", "bool", "string", "rgb", "color", "spectrum",
		"point", "point2", "point3", "normal", "normal3", "vector", "vector2", "vector3", "texture", "blackbody":
		return true
	}
	return false
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || strings.HasPrefix(line, stmt+"\t") || line == stmt {
			return true
		}
	}
	return false
}
