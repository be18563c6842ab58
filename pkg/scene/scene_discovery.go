package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-radiance-estimator/pkg/geometry"
	"github.com/df07/go-radiance-estimator/pkg/log"
)

// SceneInfo describes a scene that can be rendered by name
type SceneInfo struct {
	ID          string // Name accepted by Load
	DisplayName string
	Description string
	Type        string // "builtin" or "pbrt"
	FilePath    string // PBRT scenes only
}

var builtInScenes = []SceneInfo{
	{
		ID:          "cornell-box",
		DisplayName: "Cornell Box",
		Description: "Cornell box with two boxes, a mirror sphere and a medium boundary",
		Type:        "builtin",
	},
	{
		ID:          "default",
		DisplayName: "Default Scene",
		Description: "Spheres on a ground plane under a gradient sky",
		Type:        "builtin",
	},
}

// Load resolves a scene by built-in name, by the name of a .pbrt file in
// scenesDir, or by a direct .pbrt path
func Load(name, scenesDir string, logger log.Logger, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	switch name {
	case "cornell-box", "cornell":
		return NewCornellScene(cameraOverrides...), nil
	case "default":
		return NewDefaultScene(cameraOverrides...), nil
	case "":
		return nil, fmt.Errorf("empty scene name")
	}

	path := name
	if !strings.HasSuffix(name, ".pbrt") {
		path = filepath.Join(scenesDir, name+".pbrt")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("unknown scene %q: %w", name, err)
	}
	return NewPBRTScene(path, logger, cameraOverrides...)
}

// ListScenes returns the built-in scenes followed by the PBRT scenes in
// scenesDir, sorted by display name. A missing directory is not an error.
func ListScenes(scenesDir string) ([]SceneInfo, error) {
	scenes := append([]SceneInfo(nil), builtInScenes...)

	if _, err := os.Stat(scenesDir); err != nil {
		return scenes, nil
	}

	files, err := filepath.Glob(filepath.Join(scenesDir, "*.pbrt"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var pbrtScenes []SceneInfo
	for _, filePath := range files {
		info, err := ParsePBRTMetadata(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metadata for %s: %w", filePath, err)
		}
		pbrtScenes = append(pbrtScenes, info)
	}

	sort.Slice(pbrtScenes, func(i, j int) bool {
		return pbrtScenes[i].DisplayName < pbrtScenes[j].DisplayName
	})
	return append(scenes, pbrtScenes...), nil
}

// ParsePBRTMetadata extracts metadata from PBRT file header comments:
//
//	# Scene: Cornell Box
//	# Description: ...
func ParsePBRTMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	info := SceneInfo{
		ID:          nameWithoutExt,
		DisplayName: titleCase(nameWithoutExt),
		Type:        "pbrt",
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}
		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))

		if v, ok := strings.CutPrefix(content, "Scene:"); ok {
			info.DisplayName = strings.TrimSpace(v)
		} else if v, ok := strings.CutPrefix(content, "Description:"); ok {
			info.Description = strings.TrimSpace(v)
		}
	}

	return info, scanner.Err()
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
