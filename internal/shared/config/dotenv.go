package config

import (
	"bufio"
	"os"
	"strings"
)

// loadEnvFiles sets KEY=VALUE pairs from the given files into the process
// environment. Purely a local-development convenience: missing files, blank
// lines, and comments are skipped, and nothing is reported on failure.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			applyEnvLine(scanner.Text())
		}
		_ = f.Close()
	}
}

func applyEnvLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	line = strings.TrimPrefix(line, "export ")
	key, val, ok := strings.Cut(line, "=")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	val = strings.TrimSpace(val)
	val = strings.Trim(val, `"'`)
	os.Setenv(key, val)
}
