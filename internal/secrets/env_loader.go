package secrets

import (
	"os"
	"strings"
)

// fileSuffix marks a variable naming a file that holds the secret, the
// convention used for Docker and Kubernetes mounted secrets.
const fileSuffix = "_FILE"

// Lookup returns the value of the environment variable key. When key is
// unset and key_FILE names a readable file, the trimmed file contents are
// returned instead, so a rotated file is picked up on the next lookup.
func Lookup(key string) (string, bool) {
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	path := os.Getenv(key + fileSuffix)
	if path == "" {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(data))
	return v, v != ""
}

// EnvLoader returns a Loader that resolves the given keys with Lookup.
// Missing keys are omitted from the result map.
func EnvLoader(keys ...string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(keys))
		for _, k := range keys {
			if v, ok := Lookup(k); ok {
				vals[k] = v
			}
		}
		return vals, nil
	}
}
