package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// secretTavilyAPIKey is the key looked up in the .secrets file
const secretTavilyAPIKey = "TAVILY_API_KEY"

// secretsPath returns the secrets file path
func secretsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".secrets"), nil
}

// loadSecrets reads KEY=value pairs from the .secrets file.
// The file is optional; when it is missing or unreadable the
// result is an empty map.
func loadSecrets() map[string]string {
	values := make(map[string]string)

	path, err := secretsPath()
	if err != nil {
		return values
	}

	file, err := os.Open(path)
	if err != nil {
		return values
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.TrimSpace(value)
	}

	return values
}

// tavilyKeyFromSecrets returns the Tavily API key stored in .secrets,
// or an empty string when the file has none
func tavilyKeyFromSecrets() string {
	return loadSecrets()[secretTavilyAPIKey]
}
