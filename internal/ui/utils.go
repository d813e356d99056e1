package ui

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/geovetas/alteration-mapper-cli/internal/extent"
	"github.com/geovetas/alteration-mapper-cli/internal/properties"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	PrintInfo(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// ReadFloat reads a float from stdin, falling back to a default on empty input
func ReadFloat(prompt string, fallback float64) (float64, error) {
	input := ReadString(fmt.Sprintf("%s [%g]: ", prompt, fallback))
	if input == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return value, nil
}

// ReadRasterPath reads a raster path from stdin and checks it exists
func ReadRasterPath(prompt string) (string, error) {
	path := ReadString(prompt)
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("raster not found: %s", path)
	}
	return path, nil
}

// ReadExtent reads an optional processing extent as xmin,ymin,xmax,ymax.
// An empty input means the run should use the common extent of the bands.
func ReadExtent(prompt string, crs extent.CRS) (*extent.Rect, error) {
	input := ReadString(prompt)
	if input == "" {
		return nil, nil
	}

	parts := strings.Split(input, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid extent format. Please use xmin,ymin,xmax,ymax")
	}

	coords := make([]float64, 4)
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid extent coordinate: %s", part)
		}
		coords[i] = value
	}

	rect := extent.NewRect(coords[0], coords[1], coords[2], coords[3], crs)
	if rect.IsEmpty() {
		return nil, fmt.Errorf("extent is empty: %s", rect.String())
	}
	return &rect, nil
}

// ReadOutputDir reads an output folder, defaulting to the configured one
func ReadOutputDir() string {
	dir := ReadString(fmt.Sprintf("Enter the output folder [%s]: ", properties.OutputDir()))
	if dir == "" {
		return properties.OutputDir()
	}
	return dir
}
